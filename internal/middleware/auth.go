package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ahan30/mindsaidurai-tools/internal/app/auth"
	"github.com/ahan30/mindsaidurai-tools/pkg/logger"
)

// Authenticator resolves session cookies into request identities.
type Authenticator struct {
	provider *auth.Provider
	log      *logger.Logger
}

// NewAuthenticator creates the session middleware over the auth provider.
func NewAuthenticator(provider *auth.Provider, log *logger.Logger) *Authenticator {
	if log == nil {
		log = logger.NewDefault("authmw")
	}
	return &Authenticator{provider: provider, log: log}
}

// Optional attaches the caller's identity when a valid session cookie is
// present and otherwise lets the request through anonymously. Anonymous
// callers are issued a session id so usage rows can still be correlated.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sid := ""
		if cookie, err := r.Cookie(a.provider.CookieName()); err == nil {
			sid = cookie.Value
		}

		if sid != "" {
			if identity, err := a.provider.Resolve(ctx, sid); err == nil {
				ctx = auth.WithIdentity(ctx, identity)
			}
		} else {
			var cookie *http.Cookie
			sid, cookie = a.provider.AnonymousCookie()
			http.SetCookie(w, cookie)
		}

		ctx = auth.WithSessionID(ctx, sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require rejects requests without a verified identity.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.IdentityFrom(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
