package server

import (
	"net/http"
)

func registerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /chat", handler.ChatHandler)
	mux.HandleFunc("POST /chat/stream", handler.StreamHandler)
}

// NewMux returns the routes of the mock service, ready for http.Server or
// httptest.NewServer.
func NewMux(responder Responder) *http.ServeMux {
	mux := http.NewServeMux()
	registerRoutes(mux, NewHandler(responder))
	return mux
}
