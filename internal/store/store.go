// Package store provides conversation persistence interfaces and implementations.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ashureev/helpdesk-bot/internal/domain"
)

// ErrStoreCorrupt marks a persisted document that could not be read. Stores
// recover from it by starting empty; it is only logged.
var ErrStoreCorrupt = errors.New("conversation store corrupt")

// Repository defines the interface for persisting sessions and messages.
type Repository interface {
	// CreateSession creates an active session. An existing session with the
	// same id is returned unchanged.
	CreateSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// GetSession retrieves a session. It returns nil, nil when absent.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// SaveMessage appends a turn, creating the session if it does not exist.
	SaveMessage(ctx context.Context, sessionID, text string, isUser, requiresEscalation bool) error

	// GetHistory returns the turns of a session in insertion order.
	GetHistory(ctx context.Context, sessionID string) ([]domain.Message, error)

	// UpdateSessionStatus sets a session's status and updated_at. Unknown
	// sessions are ignored. An escalated session never returns to active.
	UpdateSessionStatus(ctx context.Context, sessionID string, status domain.SessionStatus) error

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error

	// Close releases the backing storage.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverJSON   = "json"
)

// Options selects and configures a Repository implementation.
type Options struct {
	Driver      string
	DBPath      string
	StoragePath string
	Logger      *slog.Logger
}

// Open creates the repository named by opts.Driver.
func Open(opts Options) (Repository, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		s, err := NewSQLite(opts.DBPath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverJSON:
		s, err := NewJSONFile(opts.StoragePath, opts.Logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
