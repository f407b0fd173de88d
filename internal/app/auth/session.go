// Package auth implements the session-based authentication capability. The
// external OIDC-style provider issues identity tokens; this package verifies
// them, upserts the user profile, and owns the session lifecycle backed by
// the sessions table.
package auth

import (
	"context"
	"time"
)

// Claims is the verified profile subset carried inside a session.
type Claims struct {
	Subject         string `json:"sub"`
	Email           string `json:"email,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	ProfileImageURL string `json:"profile_image_url,omitempty"`
}

// SessionData is the JSON document persisted per session.
type SessionData struct {
	Claims   Claims    `json:"claims"`
	IssuedAt time.Time `json:"issued_at"`
}

// Session is one row of the sessions table.
type Session struct {
	SID    string
	Data   SessionData
	Expire time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return !s.Expire.After(now)
}

// SessionStore persists sessions. Implementations return
// storage.ErrNotFound for unknown session ids.
type SessionStore interface {
	GetSession(ctx context.Context, sid string) (Session, error)
	PutSession(ctx context.Context, s Session) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// Identity is the verified caller attached to a request context.
type Identity struct {
	UserID string
	Claims Claims
}

type contextKey string

const (
	identityKey  contextKey = "auth.identity"
	sessionIDKey contextKey = "auth.session_id"
)

// WithIdentity attaches a verified identity to the context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the verified identity, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// WithSessionID attaches the caller's session id to the context.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sid)
}

// SessionIDFrom returns the caller's session id, if any.
func SessionIDFrom(ctx context.Context) string {
	sid, _ := ctx.Value(sessionIDKey).(string)
	return sid
}
