package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// HealthHandler reports liveness and, when Ping is set, database reachability.
type HealthHandler struct {
	Ping   func(ctx context.Context) error
	Logger *slog.Logger
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			h.Logger.WarnContext(r.Context(), "health check: database unreachable", "err", err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
