package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/ashureev/helpdesk-bot/internal/domain"
	"github.com/go-chi/chi/v5"
)

// MessageRequest is the body of POST /sessions/{id}/message.
type MessageRequest struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	SessionID string               `json:"session_id"`
	Status    domain.SessionStatus `json:"status"`
}

type escalateResponse struct {
	Status  domain.SessionStatus `json:"status"`
	Summary string               `json:"summary"`
	Message string               `json:"message"`
}

// CreateSession starts a new conversation.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chat.Start(r.Context())
	if err != nil {
		h.logger.Error("Failed to create session", "error", err)
		Error(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	JSON(w, http.StatusOK, sessionResponse{SessionID: session.ID, Status: session.Status})
}

// SendMessage routes one user message and returns the bot reply.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.rateLimiter.Allow(sessionID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	reply, err := h.chat.Send(r.Context(), sessionID, req.Message)
	if err != nil {
		h.writeChatError(w, sessionID, err)
		return
	}
	JSON(w, http.StatusOK, reply)
}

// History returns every persisted turn of a session.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	history, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		h.writeChatError(w, sessionID, err)
		return
	}
	JSON(w, http.StatusOK, history)
}

// Escalate hands a session to a human agent.
func (h *Handler) Escalate(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	summary, err := h.chat.Escalate(r.Context(), sessionID)
	if err != nil {
		h.writeChatError(w, sessionID, err)
		return
	}
	JSON(w, http.StatusOK, escalateResponse{
		Status:  domain.StatusEscalated,
		Summary: summary,
		Message: "Conversation escalated to human agent",
	})
}

func (h *Handler) writeChatError(w http.ResponseWriter, sessionID string, err error) {
	switch {
	case errors.Is(err, agent.ErrNotFound):
		Error(w, http.StatusNotFound, agent.ErrNotFound.Error())
	case errors.Is(err, agent.ErrInvalidInput):
		Error(w, http.StatusBadRequest, agent.ErrInvalidInput.Error())
	default:
		h.logger.Error("Chat request failed", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
