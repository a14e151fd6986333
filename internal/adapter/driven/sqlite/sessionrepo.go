package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port
// interface. Rows are keyed by token hash; raw tokens never reach the table.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Save inserts or replaces a session.
func (r *SessionRepo) Save(ctx context.Context, s model.Session) error {
	const query = `INSERT OR REPLACE INTO sessions (token_hash, state, issued_at, expires_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.Writer.ExecContext(ctx, query,
		s.TokenHash, string(s.State), formatTime(s.IssuedAt), formatTime(s.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get returns the session for tokenHash, or driven.ErrSessionNotFound.
func (r *SessionRepo) Get(ctx context.Context, tokenHash string) (*model.Session, error) {
	const query = `SELECT token_hash, state, issued_at, expires_at FROM sessions WHERE token_hash = ?`

	var s model.Session
	var state, issuedAt, expiresAt string
	err := r.db.Reader.QueryRowContext(ctx, query, tokenHash).Scan(&s.TokenHash, &state, &issuedAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, driven.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	s.State = model.SessionState(state)
	if s.IssuedAt, err = parseTime(issuedAt); err != nil {
		return nil, fmt.Errorf("parse issued_at: %w", err)
	}
	if s.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, fmt.Errorf("parse expires_at: %w", err)
	}
	return &s, nil
}

// Delete removes the session. Deleting an unknown hash is not an error.
func (r *SessionRepo) Delete(ctx context.Context, tokenHash string) error {
	const query = `DELETE FROM sessions WHERE token_hash = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions that expired at or before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= ?`

	result, err := r.db.Writer.ExecContext(ctx, query, formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check rows affected: %w", err)
	}
	return n, nil
}
