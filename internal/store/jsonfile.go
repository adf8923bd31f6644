package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ashureev/helpdesk-bot/internal/domain"
)

// isoLayouts are accepted when reading timestamps; documents written by
// older deployments carry naive local ISO timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

type isoTime struct {
	time.Time
}

func (t isoTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *isoTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", raw)
}

type sessionRecord struct {
	CreatedAt isoTime  `json:"created_at"`
	Status    string   `json:"status"`
	UpdatedAt *isoTime `json:"updated_at,omitempty"`
}

type messageRecord struct {
	Message            string  `json:"message"`
	IsUser             bool    `json:"is_user"`
	Timestamp          isoTime `json:"timestamp"`
	RequiresEscalation bool    `json:"requires_escalation"`
}

type document struct {
	Sessions map[string]sessionRecord   `json:"sessions"`
	Messages map[string][]messageRecord `json:"messages"`
}

func emptyDocument() *document {
	return &document{
		Sessions: make(map[string]sessionRecord),
		Messages: make(map[string][]messageRecord),
	}
}

// JSONFileStore keeps every session and message in a single JSON document.
// Each call reads and rewrites the whole document under a process-wide mutex,
// so it is safe within one process only.
type JSONFileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewJSONFile creates a store backed by the document at path. The file is
// created on first write.
func NewJSONFile(path string, logger *slog.Logger) (*JSONFileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage file path cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	return &JSONFileStore{path: path, logger: logger}, nil
}

// load reads the document. A missing or malformed file yields an empty one.
func (s *JSONFileStore) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return emptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage file: %w", err)
	}

	doc := emptyDocument()
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn("Storage file unreadable, starting empty",
			"path", s.path, "error", fmt.Errorf("%w: %w", ErrStoreCorrupt, err))
		return emptyDocument(), nil
	}
	if doc.Sessions == nil {
		doc.Sessions = make(map[string]sessionRecord)
	}
	if doc.Messages == nil {
		doc.Messages = make(map[string][]messageRecord)
	}
	return doc, nil
}

// save writes the document atomically through a temp file and rename.
func (s *JSONFileStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal storage document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if _, statErr := os.Stat(tmpPath); statErr == nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename storage file: %w", err)
	}
	return nil
}

// update runs fn against the loaded document and saves it when fn reports
// a change.
func (s *JSONFileStore) update(fn func(doc *document) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if !fn(doc) {
		return nil
	}
	return s.save(doc)
}

func (s *JSONFileStore) read() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func ensureSession(doc *document, sessionID string, now time.Time) {
	if _, ok := doc.Sessions[sessionID]; !ok {
		doc.Sessions[sessionID] = sessionRecord{
			CreatedAt: isoTime{now},
			Status:    string(domain.StatusActive),
		}
	}
	if _, ok := doc.Messages[sessionID]; !ok {
		doc.Messages[sessionID] = []messageRecord{}
	}
}

// CreateSession creates an active session.
func (s *JSONFileStore) CreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	err := s.update(func(doc *document) bool {
		ensureSession(doc, sessionID, time.Now())
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s.GetSession(ctx, sessionID)
}

// GetSession retrieves a session by id.
func (s *JSONFileStore) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	rec, ok := doc.Sessions[sessionID]
	if !ok {
		return nil, nil
	}
	session := &domain.Session{
		ID:        sessionID,
		Status:    domain.SessionStatus(rec.Status),
		CreatedAt: rec.CreatedAt.Time,
	}
	if rec.UpdatedAt != nil {
		ts := rec.UpdatedAt.Time
		session.UpdatedAt = &ts
	}
	return session, nil
}

// SaveMessage appends a message, creating the session if needed.
func (s *JSONFileStore) SaveMessage(_ context.Context, sessionID, text string, isUser, requiresEscalation bool) error {
	err := s.update(func(doc *document) bool {
		now := time.Now()
		ensureSession(doc, sessionID, now)
		doc.Messages[sessionID] = append(doc.Messages[sessionID], messageRecord{
			Message:            text,
			IsUser:             isUser,
			Timestamp:          isoTime{now},
			RequiresEscalation: requiresEscalation,
		})
		return true
	})
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// GetHistory returns a session's messages in insertion order.
func (s *JSONFileStore) GetHistory(_ context.Context, sessionID string) ([]domain.Message, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	records := doc.Messages[sessionID]
	messages := make([]domain.Message, 0, len(records))
	for _, r := range records {
		messages = append(messages, domain.Message{
			Text:               r.Message,
			IsUser:             r.IsUser,
			Timestamp:          r.Timestamp.Time,
			RequiresEscalation: r.RequiresEscalation,
		})
	}
	return messages, nil
}

// UpdateSessionStatus sets the status of a known session.
func (s *JSONFileStore) UpdateSessionStatus(_ context.Context, sessionID string, status domain.SessionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid session status %q", status)
	}
	err := s.update(func(doc *document) bool {
		rec, ok := doc.Sessions[sessionID]
		if !ok {
			s.logger.Warn("UpdateSessionStatus on unknown session", "session_id", sessionID)
			return false
		}
		rec.Status = string(domain.NextStatus(domain.SessionStatus(rec.Status), status))
		rec.UpdatedAt = &isoTime{time.Now()}
		doc.Sessions[sessionID] = rec
		return true
	})
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// Ping checks that the storage directory is reachable.
func (s *JSONFileStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("stat storage directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage directory %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

// Close is a no-op; every call already persisted its changes.
func (s *JSONFileStore) Close() error {
	return nil
}

// Ensure JSONFileStore implements Repository.
var _ Repository = (*JSONFileStore)(nil)
