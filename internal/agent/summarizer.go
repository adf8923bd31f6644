package agent

import (
	"strings"

	"github.com/ashureev/helpdesk-bot/internal/domain"
)

const (
	summaryLabel    = "User discussed: "
	summaryMaxTurns = 3
)

// Summarize reduces a conversation to its last few user messages for a
// human hand-off.
func Summarize(history []domain.Message) string {
	user := domain.UserMessages(history)
	if len(user) > summaryMaxTurns {
		user = user[len(user)-summaryMaxTurns:]
	}
	texts := make([]string, 0, len(user))
	for _, m := range user {
		texts = append(texts, m.Text)
	}
	return summaryLabel + strings.Join(texts, ", ")
}
