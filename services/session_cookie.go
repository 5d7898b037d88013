// ABOUTME: Session cookie lifecycle (set, read, clear)
// ABOUTME: HttpOnly cookie whose Max-Age tracks the remaining token validity

package services

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/markalston/agent-dashboard/models"
)

// SessionCookie describes how the session token travels in a cookie.
type SessionCookie struct {
	Name        string
	SameSite    http.SameSite
	ForceSecure bool
}

// Read returns the raw token from the request, or "" when absent.
func (c SessionCookie) Read(r *http.Request) string {
	cookie, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Set writes the token cookie with Max-Age equal to the session's remaining validity.
func (c SessionCookie) Set(w http.ResponseWriter, r *http.Request, token string, s models.Session, now time.Time) {
	maxAge := int(math.Ceil(s.Remaining(now).Seconds()))
	if maxAge <= 0 {
		c.Clear(w, r)
		return
	}
	http.SetCookie(w, c.cookie(r, token, maxAge))
}

// Clear expires the cookie immediately.
func (c SessionCookie) Clear(w http.ResponseWriter, r *http.Request) {
	cookie := c.cookie(r, "", 0)
	// net/http only emits "Max-Age=0" for negative values.
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (c SessionCookie) cookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure(r),
		SameSite: c.SameSite,
		MaxAge:   maxAge,
	}
}

// secure reports whether the cookie needs the Secure flag. Browsers reject
// SameSite=None cookies without it.
func (c SessionCookie) secure(r *http.Request) bool {
	if c.ForceSecure || c.SameSite == http.SameSiteNoneMode {
		return true
	}
	return IsSecureRequest(r)
}

// IsSecureRequest reports whether the client connection is HTTPS, either directly
// or as reported by a TLS-terminating proxy via X-Forwarded-Proto.
func IsSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
