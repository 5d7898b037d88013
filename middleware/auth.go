// ABOUTME: Session authentication middleware for signed session cookies
// ABOUTME: Verifies the cookie token, stores the session in context, anonymous when auth is off

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/agent-dashboard/models"
	"github.com/markalston/agent-dashboard/services"
)

// ErrNoSession is returned when auth is enabled and the request carries no session cookie.
var ErrNoSession = errors.New("no session cookie")

// SessionVerifier verifies a raw session token.
type SessionVerifier interface {
	Verify(token string) (models.Session, error)
}

// AuthConfig holds session authentication settings
type AuthConfig struct {
	Enabled  bool
	Verifier SessionVerifier
	Cookie   services.SessionCookie
}

// contextKey is a private type for context keys to avoid collisions
type contextKey string

const sessionKey contextKey = "session"

// Authenticate returns the request's session. With auth disabled it returns
// (nil, nil): the caller is anonymous and no cookie is required.
func (c AuthConfig) Authenticate(r *http.Request) (*models.Session, error) {
	if !c.Enabled {
		return nil, nil
	}
	if c.Verifier == nil {
		return nil, errors.New("session verifier not configured")
	}

	token := c.Cookie.Read(r)
	if token == "" {
		return nil, ErrNoSession
	}
	session, err := c.Verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// RequireSession returns middleware that rejects requests without a valid
// session when auth is enabled. Failures get a generic 401.
func RequireSession(cfg AuthConfig) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session, err := cfg.Authenticate(r)
			if err != nil {
				slog.Debug("Auth rejected", "path", r.URL.Path, "reason", err.Error())
				WriteJSONError(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if session == nil {
				next(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// GetSession extracts the session from request context.
// Returns nil for anonymous requests.
func GetSession(r *http.Request) *models.Session {
	session, ok := r.Context().Value(sessionKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}
