package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatusIsMonotonic(t *testing.T) {
	assert.Equal(t, StatusEscalated, NextStatus(StatusActive, StatusEscalated))
	assert.Equal(t, StatusActive, NextStatus(StatusActive, StatusActive))
	assert.Equal(t, StatusEscalated, NextStatus(StatusEscalated, StatusActive))
}

func TestUserMessagesFiltersBotTurns(t *testing.T) {
	history := []Message{
		{Text: "hi", IsUser: true},
		{Text: "hello there", IsUser: false},
		{Text: "refund please", IsUser: true},
	}

	got := UserMessages(history)
	assert.Len(t, got, 2)
	assert.Equal(t, "hi", got[0].Text)
	assert.Equal(t, "refund please", got[1].Text)
}

func TestStatusValid(t *testing.T) {
	assert.True(t, StatusActive.Valid())
	assert.True(t, StatusEscalated.Valid())
	assert.False(t, SessionStatus("closed").Valid())
}
