package agent

import (
	"testing"

	"github.com/ashureev/helpdesk-bot/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, "User discussed: ", Summarize(nil))
}

func TestSummarizeKeepsLastThreeUserMessages(t *testing.T) {
	var history []domain.Message
	for _, text := range []string{"one", "two", "three", "four", "five"} {
		history = append(history,
			domain.Message{Text: text, IsUser: true},
			domain.Message{Text: "bot reply to " + text},
		)
	}
	assert.Equal(t, "User discussed: three, four, five", Summarize(history))
}

func TestSummarizeShortHistory(t *testing.T) {
	history := []domain.Message{
		{Text: "hello", IsUser: true},
		{Text: "hi, how can I help?"},
	}
	assert.Equal(t, "User discussed: hello", Summarize(history))
}
