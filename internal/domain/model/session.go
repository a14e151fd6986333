package model

import "time"

// SessionState is the authorization state of a caller session.
type SessionState string

const (
	SessionAnonymous          SessionState = "anonymous"
	SessionAuthenticatedAdmin SessionState = "admin"
)

// Session is the persisted form of an issued session token. Only a hash of
// the token is stored.
type Session struct {
	TokenHash string
	State     SessionState
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsActiveAdmin reports whether the session grants admin access at now.
func (s Session) IsActiveAdmin(now time.Time) bool {
	return s.State == SessionAuthenticatedAdmin && now.Before(s.ExpiresAt)
}

// IssuedSession is returned to the caller after a successful login. Token is
// the opaque bearer value the caller presents on later requests.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}
