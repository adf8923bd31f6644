package domain

import "time"

// Message is a single persisted turn of a conversation.
type Message struct {
	Text               string    `json:"message"`
	IsUser             bool      `json:"is_user"`
	Timestamp          time.Time `json:"timestamp"`
	RequiresEscalation bool      `json:"requires_escalation"`
}

// UserMessages returns only the user-authored messages, in order.
func UserMessages(history []Message) []Message {
	var out []Message
	for _, m := range history {
		if m.IsUser {
			out = append(out, m)
		}
	}
	return out
}
