package server

import (
	"errors"
	"net/http"

	"github.com/bz888/schedchat/internal/logger"
)

var LocalLogger *logger.Logger

func Init() {
	LocalLogger = logger.NewLogger("Server")
}

// Run serves the mock chat service on address until the process exits.
func Run(address string, responder Responder) error {
	if LocalLogger == nil {
		Init()
	}
	srv := &http.Server{
		Addr:    address,
		Handler: NewMux(responder),
	}

	LocalLogger.Info("Mock chat service started on http://" + address + "/")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		LocalLogger.Error("Error starting server: ", err)
		return err
	}
	return nil
}
