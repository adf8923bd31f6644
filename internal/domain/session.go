// Package domain contains core domain types for the helpdesk backend.
package domain

import (
	"time"
)

// SessionStatus is the lifecycle state of a support session.
type SessionStatus string

const (
	// StatusActive means the bot is still handling the conversation.
	StatusActive SessionStatus = "active"
	// StatusEscalated means the conversation has been handed to a human agent.
	StatusEscalated SessionStatus = "escalated"
)

// Valid reports whether s is a known status.
func (s SessionStatus) Valid() bool {
	return s == StatusActive || s == StatusEscalated
}

// Session represents a single user's ongoing support conversation.
type Session struct {
	ID        string        `json:"session_id"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty"`
}

// IsEscalated returns true once the session has been handed off.
func (s *Session) IsEscalated() bool {
	return s.Status == StatusEscalated
}

// NextStatus returns the status a session moves to when a turn asks for
// status want. Escalation is one-way: an escalated session stays escalated.
func NextStatus(current, want SessionStatus) SessionStatus {
	if current == StatusEscalated {
		return StatusEscalated
	}
	return want
}
