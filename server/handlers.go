package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/swiftchat-web/gateway"
	"github.com/rs/zerolog/log"
)

// SessionAPIHandler exposes the auth context to scripts (GET /api/session)
func (s *Server) SessionAPIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctrl := controllerFrom(r.Context())
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, ctrl.Snapshot(r.Context()))
	}
}

// APIStatusHandler reports whether the backend is reachable (GET /debug/api-status)
func (s *Server) APIStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := gateway.CheckHealth(r.Context(), s.config.GetAPIBaseURL(), s.config.GetHealthCheckTimeout())
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, status)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}
