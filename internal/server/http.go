package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

func writeCORS(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
}

// ServeHTTP implements http.Handler. The request method is not inspected.
func (e *Endpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := e.Respond(r.Context(), r.URL.Query())
	writeReply(w, reply)
}

func writeReply(w http.ResponseWriter, reply Reply) {
	body, err := json.Marshal(reply.Body)
	if err != nil {
		reply = errorReply(http.StatusInternalServerError, "encode response")
		body = []byte(`{"error":"encode response"}`)
	}
	writeCORS(w.Header())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	_, _ = w.Write(body)
}

// Register attaches the endpoint and a health check to the provided mux.
func (e *Endpoint) Register(mux *http.ServeMux) {
	mux.Handle(e.path, e)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

// AccessLog wraps next with one log line per request written to logger.
func AccessLog(logger zerolog.Logger, next http.Handler) http.Handler {
	h := hlog.AccessHandler(func(r *http.Request, status, size int, dur time.Duration) {
		hlog.FromRequest(r).Info().
			Int("status", status).
			Int("bytes", size).
			Dur("dur", dur).
			Msg("request")
	})(next)
	h = hlog.URLHandler("url")(h)
	h = hlog.MethodHandler("method")(h)
	h = hlog.RemoteAddrHandler("ip")(h)
	return hlog.NewHandler(logger)(h)
}
