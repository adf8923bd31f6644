package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
)

// TranscriptLogConfig controls per-session NDJSON transcripts.
type TranscriptLogConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TranscriptEvent is one line of a session transcript.
type TranscriptEvent struct {
	Timestamp          string `json:"ts"`
	SessionID          string `json:"session_id"`
	Direction          string `json:"direction"`
	EventType          string `json:"event_type"`
	Content            string `json:"content"`
	Source             string `json:"source,omitempty"`
	RequiresEscalation bool   `json:"requires_escalation,omitempty"`
}

// TranscriptLogger records conversation turns for human agents.
type TranscriptLogger interface {
	Log(event TranscriptEvent)
	Close() error
}

type noopTranscriptLogger struct{}

func (noopTranscriptLogger) Log(TranscriptEvent) {}
func (noopTranscriptLogger) Close() error        { return nil }

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

type ndjsonTranscriptLogger struct {
	dir     string
	queue   chan TranscriptEvent
	done    chan struct{}
	logger  *slog.Logger
	dropped atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// NewTranscriptLogger returns an async NDJSON logger writing one file per
// session, or a no-op logger when disabled.
func NewTranscriptLogger(cfg TranscriptLogConfig, logger *slog.Logger) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscriptLogger{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	l := &ndjsonTranscriptLogger{
		dir:    cfg.Dir,
		queue:  make(chan TranscriptEvent, cfg.QueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go l.run()
	return l, nil
}

// Log enqueues an event without blocking. Events are dropped when the queue
// is full.
func (l *ndjsonTranscriptLogger) Log(event TranscriptEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	select {
	case l.queue <- event:
	default:
		n := l.dropped.Add(1)
		l.logger.Warn("transcript queue full, dropping event", "session_id", event.SessionID, "dropped_total", n)
	}
}

// Close drains the queue and stops the writer.
func (l *ndjsonTranscriptLogger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.queue)
	l.mu.Unlock()

	<-l.done
	return nil
}

func (l *ndjsonTranscriptLogger) run() {
	defer close(l.done)
	for event := range l.queue {
		if err := l.write(event); err != nil {
			l.logger.Warn("failed to write transcript event", "session_id", event.SessionID, "error", err)
		}
	}
}

func (l *ndjsonTranscriptLogger) write(event TranscriptEvent) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal transcript event: %w", err)
	}
	f, err := os.OpenFile(l.pathFor(event.SessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open transcript: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append transcript: %w", err)
	}
	return f.Close()
}

func (l *ndjsonTranscriptLogger) pathFor(sessionID string) string {
	name := unsafeFileChars.ReplaceAllString(sessionID, "_")
	if name == "" {
		name = "unknown"
	}
	return filepath.Join(l.dir, name+".ndjson")
}
