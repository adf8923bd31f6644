// Package api provides HTTP handlers for the support API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/go-chi/chi/v5"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

// Pinger reports whether backing storage is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options tunes a Handler.
type Options struct {
	MaxBodyBytes      int64
	RateLimitRequests int
	RateLimitWindow   time.Duration
	// OriginPatterns are passed to the WebSocket upgrader.
	OriginPatterns []string
	Logger         *slog.Logger
}

// Handler serves the session, message and health endpoints.
type Handler struct {
	chat           *agent.Conversations
	pinger         Pinger
	rateLimiter    *RateLimiter
	maxBodySize    int64
	originPatterns []string
	logger         *slog.Logger
}

// NewHandler creates a Handler. Call Close to stop the rate limiter.
func NewHandler(chat *agent.Conversations, pinger Pinger, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxRequestBodySize
	}
	if opts.RateLimitRequests <= 0 {
		opts.RateLimitRequests = 30
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = time.Minute
	}
	if len(opts.OriginPatterns) == 0 {
		opts.OriginPatterns = []string{"*"}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		chat:           chat,
		pinger:         pinger,
		rateLimiter:    NewRateLimiter(opts.RateLimitRequests, opts.RateLimitWindow),
		maxBodySize:    opts.MaxBodyBytes,
		originPatterns: originHosts(opts.OriginPatterns),
		logger:         opts.Logger,
	}
}

// RegisterRoutes registers all API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/message", h.SendMessage)
			r.Get("/history", h.History)
			r.Post("/escalate", h.Escalate)
			r.Get("/ws", h.ServeWS)
		})
	})
}

// Close releases handler resources.
func (h *Handler) Close() {
	h.rateLimiter.Stop()
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// originHosts reduces origins such as "https://app.example.com" to the host
// form the WebSocket upgrader matches against.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		hosts = append(hosts, o)
	}
	return hosts
}
