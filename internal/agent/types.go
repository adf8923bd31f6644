// Package agent implements the support-chat routing engine: FAQ matching,
// generative fallback, canned replies, escalation detection and hand-off
// summaries.
package agent

import (
	"github.com/ashureev/helpdesk-bot/internal/domain"
)

// NextAction tells the caller what to do after a turn.
type NextAction string

const (
	// ActionContinue means the bot keeps handling the conversation.
	ActionContinue NextAction = "continue"
	// ActionEscalate means a human agent should take over.
	ActionEscalate NextAction = "escalate"
)

// Source records which path produced a reply.
type Source string

const (
	// SourceFAQ indicates a static FAQ answer.
	SourceFAQ Source = "faq"
	// SourceModel indicates generative model output.
	SourceModel Source = "model"
	// SourceFallback indicates a canned reply used while the model is unavailable.
	SourceFallback Source = "fallback"
)

// GenerateRequest carries one user turn into the routing engine.
// SessionID and History are accepted for context but routing only looks at
// Message.
type GenerateRequest struct {
	SessionID string
	Message   string
	History   []domain.Message
}

// Result is the routing decision for a single turn. It is not persisted as
// its own record.
type Result struct {
	Response           string     `json:"response"`
	RequiresEscalation bool       `json:"requires_escalation"`
	NextAction         NextAction `json:"next_action"`
	Source             Source     `json:"-"`
}

func newResult(response string, source Source, escalate bool) Result {
	action := ActionContinue
	if escalate {
		action = ActionEscalate
	}
	return Result{
		Response:           response,
		RequiresEscalation: escalate,
		NextAction:         action,
		Source:             source,
	}
}
