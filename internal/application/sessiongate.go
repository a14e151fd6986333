package application

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/ericfisherdev/orgvault/internal/domain/model"
	"github.com/ericfisherdev/orgvault/internal/domain/port/driven"
)

const (
	// DefaultSessionTTL is the absolute lifetime of an admin session.
	DefaultSessionTTL = 24 * time.Hour

	sessionIDBytes = 32
	macKeyBytes    = 32
	hkdfInfo       = "orgvault session token mac v1"
)

// SessionGate authenticates the shared admin secret and tracks issued admin
// sessions. Each token is "<id>.<mac>" where mac is an HMAC-SHA256 of id under
// a key derived from the session secret. Only a hash of id is persisted.
type SessionGate struct {
	store       driven.SessionStore
	adminDigest [sha256.Size]byte
	macKey      []byte
	ttl         time.Duration
	now         func() time.Time
	rand        io.Reader
	logger      *slog.Logger
}

// NewSessionGate creates a SessionGate. adminSecret and sessionSecret must be
// non-empty; ttl <= 0 selects DefaultSessionTTL.
func NewSessionGate(
	store driven.SessionStore,
	adminSecret string,
	sessionSecret string,
	ttl time.Duration,
	logger *slog.Logger,
) (*SessionGate, error) {
	if adminSecret == "" {
		return nil, errors.New("admin secret must not be empty")
	}
	if sessionSecret == "" {
		return nil, errors.New("session secret must not be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	macKey := make([]byte, macKeyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(sessionSecret), nil, []byte(hkdfInfo)), macKey); err != nil {
		return nil, fmt.Errorf("derive session mac key: %w", err)
	}

	return &SessionGate{
		store:       store,
		adminDigest: sha256.Sum256([]byte(adminSecret)),
		macKey:      macKey,
		ttl:         ttl,
		now:         time.Now,
		rand:        rand.Reader,
		logger:      logger,
	}, nil
}

// TTL returns the absolute session lifetime.
func (g *SessionGate) TTL() time.Duration {
	return g.ttl
}

// Authenticate compares secret against the configured admin secret in
// constant time and, on a match, issues a new admin session.
func (g *SessionGate) Authenticate(ctx context.Context, secret string) (model.IssuedSession, error) {
	presented := sha256.Sum256([]byte(secret))
	if secret == "" || subtle.ConstantTimeCompare(presented[:], g.adminDigest[:]) != 1 {
		return model.IssuedSession{}, ErrInvalidCredential
	}

	raw := make([]byte, sessionIDBytes)
	if _, err := io.ReadFull(g.rand, raw); err != nil {
		return model.IssuedSession{}, fmt.Errorf("generate session id: %w", err)
	}
	id := base64.RawURLEncoding.EncodeToString(raw)

	issued := g.now().UTC()
	session := model.Session{
		TokenHash: hashSessionID(id),
		State:     model.SessionAuthenticatedAdmin,
		IssuedAt:  issued,
		ExpiresAt: issued.Add(g.ttl),
	}
	if err := g.store.Save(ctx, session); err != nil {
		return model.IssuedSession{}, fmt.Errorf("save session: %w", err)
	}
	g.reapExpired(ctx, issued)

	return model.IssuedSession{
		Token:     id + "." + g.sign(id),
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Check reports whether token belongs to a live admin session. Any failure,
// including a storage error, yields false.
func (g *SessionGate) Check(ctx context.Context, token string) bool {
	id, ok := g.verify(token)
	if !ok {
		return false
	}

	hash := hashSessionID(id)
	session, err := g.store.Get(ctx, hash)
	if err != nil {
		if !errors.Is(err, driven.ErrSessionNotFound) {
			g.logger.Error("session lookup failed", "error", err)
		}
		return false
	}

	if session.IsActiveAdmin(g.now()) {
		return true
	}

	if err := g.store.Delete(ctx, hash); err != nil {
		g.logger.Warn("failed to delete expired session", "error", err)
	}
	return false
}

// reapExpired removes sessions that expired at or before now. Failure only costs
// storage, so it is logged and the login proceeds.
func (g *SessionGate) reapExpired(ctx context.Context, now time.Time) {
	n, err := g.store.DeleteExpired(ctx, now)
	if err != nil {
		g.logger.Warn("failed to delete expired sessions", "error", err)
		return
	}
	if n > 0 {
		g.logger.Info("expired sessions removed", "count", n)
	}
}

// verify checks the token's MAC and returns its id part.
func (g *SessionGate) verify(token string) (string, bool) {
	id, mac, found := strings.Cut(token, ".")
	if !found || id == "" || mac == "" {
		return "", false
	}
	if !hmac.Equal([]byte(mac), []byte(g.sign(id))) {
		return "", false
	}
	return id, true
}

func (g *SessionGate) sign(id string) string {
	h := hmac.New(sha256.New, g.macKey)
	h.Write([]byte(id))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

func hashSessionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}
