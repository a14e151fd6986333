package driven

import (
	"context"
	"errors"
	"time"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
)

// ErrSessionNotFound indicates no session exists for the given token hash.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists issued sessions keyed by token hash.
type SessionStore interface {
	Save(ctx context.Context, session model.Session) error
	// Get returns ErrSessionNotFound if the hash is unknown.
	Get(ctx context.Context, tokenHash string) (*model.Session, error)
	Delete(ctx context.Context, tokenHash string) error
	// DeleteExpired removes every session whose expiry is at or before now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
