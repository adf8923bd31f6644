package api

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 2 * time.Second

// Health reports service liveness and store reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "error", err)
			JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":    "degraded",
				"timestamp": now,
			})
			return
		}
	}
	JSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": now,
	})
}

// Root identifies the API.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]string{"message": "AI Customer Support Bot API"})
}
