package agent

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptLoggerWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTranscriptLogger(TranscriptLogConfig{
		Enabled:   true,
		Dir:       dir,
		QueueSize: 16,
	}, slog.Default())
	require.NoError(t, err)

	logger.Log(TranscriptEvent{
		SessionID: "sess-1",
		Direction: "inbound",
		EventType: "user_message",
		Content:   "I want a refund",
	})
	logger.Log(TranscriptEvent{
		SessionID:          "sess-1",
		Direction:          "outbound",
		EventType:          "bot_message",
		Content:            ReplyRefund,
		Source:             "fallback",
		RequiresEscalation: true,
	})
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(filepath.Join(dir, "sess-1.ndjson"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var got TranscriptEvent
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
	assert.Equal(t, ReplyRefund, got.Content)
	assert.True(t, got.RequiresEscalation)
}

func TestTranscriptLoggerSanitizesFileNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: true, Dir: dir}, nil)
	require.NoError(t, err)

	logger.Log(TranscriptEvent{SessionID: "../escape", Content: "x"})
	require.NoError(t, logger.Close())

	_, err = os.Stat(filepath.Join(dir, ".._escape.ndjson"))
	assert.NoError(t, err)
}

func TestTranscriptLoggerDisabledIsNoop(t *testing.T) {
	logger, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: false}, nil)
	require.NoError(t, err)
	logger.Log(TranscriptEvent{SessionID: "s"})
	assert.NoError(t, logger.Close())
}

func TestTranscriptLoggerIgnoresEventsAfterClose(t *testing.T) {
	logger, err := NewTranscriptLogger(TranscriptLogConfig{Enabled: true, Dir: t.TempDir()}, nil)
	require.NoError(t, err)
	require.NoError(t, logger.Close())

	assert.NotPanics(t, func() { logger.Log(TranscriptEvent{SessionID: "late"}) })
	assert.NoError(t, logger.Close())
}
