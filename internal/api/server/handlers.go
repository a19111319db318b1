package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bz888/schedchat/internal/logger"
)

type Handler struct {
	responder Responder
	log       *logger.Logger
}

func NewHandler(responder Responder) *Handler {
	return &Handler{
		responder: responder,
		log:       logger.NewLogger("Server"),
	}
}

func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var clientReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	reply, err := h.responder.Reply(r.Context(), clientReq.Message)
	if err != nil {
		h.log.Error("Failed to build reply: ", err)
		http.Error(w, "Failed to process request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ChatResponse{
		Intent:     reply.Intent,
		Parameters: reply.Parameters,
		Result:     reply.Text(),
	}); err != nil {
		h.log.Error("Failed to encode response: ", err)
	}
}

func (h *Handler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	var clientReq ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&clientReq); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	reply, err := h.responder.Reply(r.Context(), clientReq.Message)
	if err != nil {
		h.log.Error("Failed to build reply: ", err)
		http.Error(w, "Failed to process request: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for i, fragment := range reply.Fragments {
		if i > 0 && reply.Delay > 0 {
			select {
			case <-r.Context().Done():
				return
			case <-time.After(reply.Delay):
			}
		}
		if _, err := w.Write([]byte(fragment)); err != nil {
			h.log.Error("Failed to write fragment: ", err)
			return
		}
		flusher.Flush()
	}
	h.log.Info("Streamed ", len(reply.Fragments), " fragments")
}
