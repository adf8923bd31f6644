package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/helpdesk-bot/internal/domain"
	"github.com/ashureev/helpdesk-bot/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. Each operation touches only
// the rows of one session.
type SQLiteStore struct {
	db    *sql.DB
	retry shared.RetryPolicy
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, retry: shared.DefaultRetryPolicy}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		message TEXT NOT NULL,
		is_user INTEGER NOT NULL,
		requires_escalation INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// CreateSession creates an active session.
func (s *SQLiteStore) CreateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
	INSERT INTO sessions (session_id, status, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(session_id) DO NOTHING`

	now := time.Now()
	err := shared.RetryOnConflict(ctx, s.retry, "create session", func() error {
		_, err := s.db.ExecContext(ctx, query, sessionID, string(domain.StatusActive), now.UnixMilli())
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %s missing after insert", sessionID)
	}
	return session, nil
}

// GetSession retrieves a session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `SELECT session_id, status, created_at, updated_at FROM sessions WHERE session_id = ?`

	var session domain.Session
	var status string
	var createdAt int64
	var updatedAt sql.NullInt64

	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&session.ID, &status, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.Status = domain.SessionStatus(status)
	session.CreatedAt = time.UnixMilli(createdAt)
	if updatedAt.Valid {
		ts := time.UnixMilli(updatedAt.Int64)
		session.UpdatedAt = &ts
	}
	return &session, nil
}

// SaveMessage appends a message, creating the session row if needed.
func (s *SQLiteStore) SaveMessage(ctx context.Context, sessionID, text string, isUser, requiresEscalation bool) error {
	now := time.Now().UnixMilli()
	err := shared.RetryOnConflict(ctx, s.retry, "save message", func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sessions (session_id, status, created_at) VALUES (?, ?, ?) ON CONFLICT(session_id) DO NOTHING`,
			sessionID, string(domain.StatusActive), now,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, message, is_user, requires_escalation, created_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID, text, isUser, requiresEscalation, now,
		); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// GetHistory returns a session's messages in insertion order.
func (s *SQLiteStore) GetHistory(ctx context.Context, sessionID string) ([]domain.Message, error) {
	query := `
		SELECT message, is_user, requires_escalation, created_at
		FROM messages WHERE session_id = ? ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close history rows", "error", closeErr)
		}
	}()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var createdAt int64
		if err := rows.Scan(&m.Text, &m.IsUser, &m.RequiresEscalation, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		m.Timestamp = time.UnixMilli(createdAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return messages, nil
}

// UpdateSessionStatus sets the status of one session. Escalated stays escalated.
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid session status %q", status)
	}
	query := `
	UPDATE sessions
	SET status = CASE WHEN status = ? THEN status ELSE ? END,
	    updated_at = ?
	WHERE session_id = ?`

	var rows int64
	err := shared.RetryOnConflict(ctx, s.retry, "update session status", func() error {
		result, err := s.db.ExecContext(ctx, query,
			string(domain.StatusEscalated), string(status), time.Now().UnixMilli(), sessionID)
		if err != nil {
			return err
		}
		rows, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if rows == 0 {
		slog.Warn("UpdateSessionStatus affected 0 rows", "session_id", sessionID)
	}
	return nil
}

// Ensure SQLiteStore implements Repository.
var _ Repository = (*SQLiteStore)(nil)
