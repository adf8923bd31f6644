package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ashureev/helpdesk-bot/internal/domain"
	"github.com/google/uuid"
)

// SessionStore is the persistence the conversation flow needs.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	SaveMessage(ctx context.Context, sessionID, text string, isUser, requiresEscalation bool) error
	GetHistory(ctx context.Context, sessionID string) ([]domain.Message, error)
	UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error
}

// Reply is what a caller gets back for one user message.
type Reply struct {
	Result
	SessionStatus domain.SessionStatus `json:"session_status"`
}

// Conversations ties the routing service to session persistence.
type Conversations struct {
	agent  *Service
	repo   SessionStore
	log    TranscriptLogger
	logger *slog.Logger
	newID  func() string
}

// NewConversations creates the conversation flow. transcript may be nil.
func NewConversations(svc *Service, repo SessionStore, transcript TranscriptLogger, logger *slog.Logger) *Conversations {
	if transcript == nil {
		transcript = noopTranscriptLogger{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversations{
		agent:  svc,
		repo:   repo,
		log:    transcript,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Start creates a new active session.
func (c *Conversations) Start(ctx context.Context) (*domain.Session, error) {
	id := c.newID()
	session, err := c.repo.CreateSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.logger.Info("Session created", "session_id", id)
	return session, nil
}

// Exists reports whether sessionID is known.
func (c *Conversations) Exists(ctx context.Context, sessionID string) (bool, error) {
	session, err := c.repo.GetSession(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("get session: %w", err)
	}
	return session != nil, nil
}

// Send routes one user message, persists both turns and escalates the
// session when the turn requires it.
func (c *Conversations) Send(ctx context.Context, sessionID, text string) (*Reply, error) {
	session, err := c.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrNotFound
	}
	if text == "" {
		return nil, ErrInvalidInput
	}

	history, err := c.repo.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}

	if err := c.repo.SaveMessage(ctx, sessionID, text, true, false); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	c.logTurn(sessionID, "inbound", text, "", false)

	result := c.agent.Generate(ctx, GenerateRequest{
		SessionID: sessionID,
		Message:   text,
		History:   history,
	})

	if err := c.repo.SaveMessage(ctx, sessionID, result.Response, false, result.RequiresEscalation); err != nil {
		return nil, fmt.Errorf("save bot message: %w", err)
	}
	c.logTurn(sessionID, "outbound", result.Response, result.Source, result.RequiresEscalation)

	status := session.Status
	if result.RequiresEscalation {
		if err := c.repo.UpdateSessionStatus(ctx, sessionID, domain.StatusEscalated); err != nil {
			return nil, fmt.Errorf("escalate session: %w", err)
		}
		status = domain.NextStatus(status, domain.StatusEscalated)
	}

	return &Reply{Result: result, SessionStatus: status}, nil
}

// History returns the persisted turns of a session. Unknown sessions have
// an empty history.
func (c *Conversations) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	history, err := c.repo.GetHistory(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	if history == nil {
		history = []domain.Message{}
	}
	return history, nil
}

// Escalate hands a session to a human and returns a summary for them.
func (c *Conversations) Escalate(ctx context.Context, sessionID string) (string, error) {
	session, err := c.repo.GetSession(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return "", ErrNotFound
	}

	history, err := c.repo.GetHistory(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get history: %w", err)
	}
	summary := Summarize(history)

	if err := c.repo.UpdateSessionStatus(ctx, sessionID, domain.StatusEscalated); err != nil {
		return "", fmt.Errorf("escalate session: %w", err)
	}
	c.logger.Info("Session escalated", "session_id", sessionID, "turns", len(history))
	c.log.Log(TranscriptEvent{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: sessionID,
		Direction: "system",
		EventType: "escalated",
		Content:   summary,
	})
	return summary, nil
}

// Close flushes the transcript log.
func (c *Conversations) Close() error {
	return c.log.Close()
}

func (c *Conversations) logTurn(sessionID, direction, content string, source Source, escalate bool) {
	eventType := "user_message"
	if direction == "outbound" {
		eventType = "bot_message"
	}
	c.log.Log(TranscriptEvent{
		Timestamp:          time.Now().UTC().Format(time.RFC3339Nano),
		SessionID:          sessionID,
		Direction:          direction,
		EventType:          eventType,
		Content:            content,
		Source:             string(source),
		RequiresEscalation: escalate,
	})
}
