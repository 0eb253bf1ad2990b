package handler

import (
	"net/http"
	"time"

	"github.com/metalagman/paradox/internal/logging"
	"github.com/metalagman/paradox/internal/server"
	"github.com/rs/zerolog/log"
)

var defaultHandler http.Handler

func init() {
	logging.Init(false, logging.FormatJSON)
	defaultHandler = server.AccessLog(log.Logger, server.New(server.Config{
		Client: &http.Client{Timeout: 25 * time.Second},
	}))
}

// Handler is the entry point for Vercel's Go runtime.
func Handler(w http.ResponseWriter, r *http.Request) {
	defaultHandler.ServeHTTP(w, r)
}
