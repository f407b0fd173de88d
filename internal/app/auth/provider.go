package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ahan30/mindsaidurai-tools/internal/app/domain/user"
	"github.com/ahan30/mindsaidurai-tools/internal/app/storage"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// ErrNoSession is returned when a session id resolves to nothing usable.
var ErrNoSession = errors.New("no active session")

// Provider is the injected authentication capability: it turns identity
// tokens into sessions and sessions into request identities.
type Provider struct {
	sessions   SessionStore
	users      storage.UserStore
	verifier   Verifier
	ttl        time.Duration
	cookieName string
	secure     bool
	log        *logger.Logger
}

// Options configures a Provider.
type Options struct {
	TTL          time.Duration
	CookieName   string
	SecureCookie bool
}

// NewProvider builds a session provider over the given stores.
func NewProvider(sessions SessionStore, users storage.UserStore, verifier Verifier, opts Options, log *logger.Logger) *Provider {
	if log == nil {
		log = logger.NewDefault("auth")
	}
	if opts.TTL <= 0 {
		opts.TTL = 7 * 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "toolshub_session"
	}
	return &Provider{
		sessions:   sessions,
		users:      users,
		verifier:   verifier,
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.SecureCookie,
		log:        log,
	}
}

// CookieName returns the session cookie name.
func (p *Provider) CookieName() string { return p.cookieName }

// Callback completes a login: it verifies the provider-issued token, upserts
// the user profile, and creates a session. The returned cookie must be set
// on the response.
func (p *Provider) Callback(ctx context.Context, token string) (user.User, *http.Cookie, error) {
	claims, err := p.verifier.Verify(ctx, token)
	if err != nil {
		return user.User{}, nil, err
	}

	u, err := p.users.UpsertUser(ctx, user.User{
		ID:              claims.Subject,
		Email:           claims.Email,
		FirstName:       claims.FirstName,
		LastName:        claims.LastName,
		ProfileImageURL: claims.ProfileImageURL,
	})
	if err != nil {
		return user.User{}, nil, fmt.Errorf("upsert user: %w", err)
	}

	now := time.Now().UTC()
	sess := Session{
		SID:    uuid.NewString(),
		Data:   SessionData{Claims: claims, IssuedAt: now},
		Expire: now.Add(p.ttl),
	}
	if err := p.sessions.PutSession(ctx, sess); err != nil {
		return user.User{}, nil, fmt.Errorf("store session: %w", err)
	}

	p.log.WithField("user_id", u.ID).Info("login completed")
	return u, p.cookie(sess.SID, sess.Expire), nil
}

// Resolve maps a session id to a verified identity. Expired sessions are
// deleted on sight.
func (p *Provider) Resolve(ctx context.Context, sid string) (Identity, error) {
	if sid == "" {
		return Identity{}, ErrNoSession
	}

	sess, err := p.sessions.GetSession(ctx, sid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Identity{}, ErrNoSession
		}
		return Identity{}, err
	}
	if sess.Expired(time.Now().UTC()) {
		_ = p.sessions.DeleteSession(ctx, sid)
		return Identity{}, ErrNoSession
	}

	return Identity{UserID: sess.Data.Claims.Subject, Claims: sess.Data.Claims}, nil
}

// Logout destroys the session and returns an expired cookie to clear it.
func (p *Provider) Logout(ctx context.Context, sid string) (*http.Cookie, error) {
	if sid != "" {
		if err := p.sessions.DeleteSession(ctx, sid); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
	}
	return p.cookie("", time.Unix(0, 0)), nil
}

// AnonymousCookie mints a session identifier for an unauthenticated caller
// so usage rows can still be attributed to a session.
func (p *Provider) AnonymousCookie() (string, *http.Cookie) {
	sid := uuid.NewString()
	return sid, p.cookie(sid, time.Now().UTC().Add(p.ttl))
}

func (p *Provider) cookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     p.cookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   p.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
