// ABOUTME: Stateless signed session tokens for browser operators
// ABOUTME: Encodes, signs and verifies sessions; nothing is stored server-side

package services

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/markalston/agent-dashboard/models"
)

// AuthFailure kinds returned by Verify.
var (
	ErrMalformedToken   = errors.New("malformed session token")
	ErrInvalidSignature = errors.New("invalid session signature")
	ErrTokenExpired     = errors.New("session expired")
)

// ErrEmptySecret is returned when a codec is built without a signing key.
var ErrEmptySecret = errors.New("session secret must not be empty")

const tokenSeparator = "."

var (
	signingMethod = jwt.SigningMethodHS256
	segmentEncode = base64.RawURLEncoding
	segmentDecode = base64.RawURLEncoding.Strict()
)

// sessionPayload is the serialized form of a session inside a token.
// Times are Unix nanoseconds so a verified session equals the issued one.
type sessionPayload struct {
	UserID    string `json:"uid"`
	Username  string `json:"usr"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// SessionCodec issues and verifies tokens of the form
// base64url(payload) "." base64url(HMAC-SHA256(payload)).
// It is safe for concurrent use; all state is immutable after construction.
type SessionCodec struct {
	secret []byte
	now    func() time.Time
}

// CodecOption customizes a SessionCodec.
type CodecOption func(*SessionCodec)

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) CodecOption {
	return func(c *SessionCodec) {
		c.now = now
	}
}

// NewSessionCodec creates a codec keyed with secret.
func NewSessionCodec(secret string, opts ...CodecOption) (*SessionCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &SessionCodec{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Now returns the codec's current time.
func (c *SessionCodec) Now() time.Time {
	return c.now()
}

// Issue serializes and signs a session.
func (c *SessionCodec) Issue(s models.Session) (string, error) {
	if s.UserID == "" {
		return "", fmt.Errorf("issue session: user id is required")
	}
	if s.ExpiresAt.IsZero() || !s.ExpiresAt.After(s.IssuedAt) {
		return "", fmt.Errorf("issue session: expiry must be after issue time")
	}

	payload, err := json.Marshal(sessionPayload{
		UserID:    s.UserID,
		Username:  s.Username,
		IssuedAt:  s.IssuedAt.UnixNano(),
		ExpiresAt: s.ExpiresAt.UnixNano(),
	})
	if err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}

	sig, err := signingMethod.Sign(string(payload), c.secret)
	if err != nil {
		return "", fmt.Errorf("issue session: sign: %w", err)
	}

	return segmentEncode.EncodeToString(payload) + tokenSeparator + segmentEncode.EncodeToString(sig), nil
}

// Verify checks a token's signature and expiry and returns the session it carries.
// Errors are always one of ErrMalformedToken, ErrInvalidSignature or ErrTokenExpired.
func (c *SessionCodec) Verify(token string) (models.Session, error) {
	encodedPayload, encodedSig, ok := strings.Cut(token, tokenSeparator)
	if !ok || encodedPayload == "" || encodedSig == "" {
		return models.Session{}, ErrMalformedToken
	}

	payload, err := segmentDecode.DecodeString(encodedPayload)
	if err != nil {
		return models.Session{}, ErrMalformedToken
	}

	// Once the payload decodes, anything wrong with the signature segment
	// (including a stray separator) cannot match and is a signature failure.
	sig, err := segmentDecode.DecodeString(encodedSig)
	if err != nil {
		return models.Session{}, ErrInvalidSignature
	}

	// HMAC verification compares in constant time.
	if err := signingMethod.Verify(string(payload), sig, c.secret); err != nil {
		return models.Session{}, ErrInvalidSignature
	}

	var p sessionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return models.Session{}, ErrMalformedToken
	}
	if p.UserID == "" || p.ExpiresAt == 0 {
		return models.Session{}, ErrMalformedToken
	}

	session := models.Session{
		UserID:    p.UserID,
		Username:  p.Username,
		IssuedAt:  time.Unix(0, p.IssuedAt).UTC(),
		ExpiresAt: time.Unix(0, p.ExpiresAt).UTC(),
	}
	if c.now().After(session.ExpiresAt) {
		return models.Session{}, ErrTokenExpired
	}

	return session, nil
}
