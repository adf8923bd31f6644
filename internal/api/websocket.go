package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ashureev/helpdesk-bot/internal/agent"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

// wsMessage is one client frame. A frame with Type "ping" is answered with a
// pong; anything else is treated as a chat message.
type wsMessage struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
}

// ServeWS upgrades to a WebSocket and runs the chat loop for one session.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ok, err := h.chat.Exists(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to look up session", "session_id", sessionID, "error", err)
		Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !ok {
		Error(w, http.StatusNotFound, agent.ErrNotFound.Error())
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.logger.Error("Failed to accept WebSocket", "session_id", sessionID, "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			h.logger.Debug("Failed to close websocket", "session_id", sessionID, "error", closeErr)
		}
	}()
	ws.SetReadLimit(h.maxBodySize)

	h.logger.Info("WebSocket chat started", "session_id", sessionID, "ip", r.RemoteAddr)
	h.chatLoop(r.Context(), ws, sessionID)
	h.logger.Info("WebSocket chat ended", "session_id", sessionID)
}

func (h *Handler) chatLoop(ctx context.Context, ws *websocket.Conn, sessionID string) {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled) {
				h.logger.Debug("WebSocket closed by client", "session_id", sessionID)
			} else {
				h.logger.Warn("WebSocket read error", "session_id", sessionID, "error", err)
			}
			return
		}

		var frame any
		switch msg, decodeErr := decodeFrame(typ, data); {
		case decodeErr != nil:
			frame = map[string]string{"error": decodeErr.Error()}
		case msg.Type == "ping":
			frame = map[string]string{"type": "pong"}
		case !h.rateLimiter.Allow(sessionID):
			frame = map[string]string{"error": "rate limit exceeded"}
		default:
			reply, sendErr := h.chat.Send(ctx, sessionID, msg.Message)
			if sendErr != nil {
				frame = map[string]string{"error": h.frameError(sessionID, sendErr)}
			} else {
				frame = reply
			}
		}

		if err := wsjson.Write(ctx, ws, frame); err != nil {
			h.logger.Debug("Failed to write websocket frame", "session_id", sessionID, "error", err)
			return
		}
	}
}

var errBadFrame = errors.New("invalid message frame")

func decodeFrame(typ websocket.MessageType, data []byte) (wsMessage, error) {
	var msg wsMessage
	if typ != websocket.MessageText {
		return msg, errBadFrame
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, errBadFrame
	}
	return msg, nil
}

func (h *Handler) frameError(sessionID string, err error) string {
	switch {
	case errors.Is(err, agent.ErrNotFound):
		return agent.ErrNotFound.Error()
	case errors.Is(err, agent.ErrInvalidInput):
		return agent.ErrInvalidInput.Error()
	default:
		h.logger.Error("Chat request failed", "session_id", sessionID, "error", err)
		return "internal error"
	}
}
