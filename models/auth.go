// ABOUTME: Session and current-user models for signed cookie auth
// ABOUTME: Sessions are immutable values; authenticity lives in the token signature

package models

import "time"

// Session is the identity carried by a signed session token.
// It is never stored server-side.
type Session struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns the validity left at now, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// SessionUser is the public view of a session.
type SessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// MeResponse is returned by GET /api/auth/me. User is null when auth is disabled.
type MeResponse struct {
	User *SessionUser `json:"user"`
}
