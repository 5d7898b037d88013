// ABOUTME: Shared-secret authorization for state-changing requests
// ABOUTME: Constant-time comparison of a configured header against the mutation secret

package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

// MutationAuthorizer checks the mutation secret header on write requests.
// It is independent of session auth so non-browser callers must satisfy it too.
type MutationAuthorizer struct {
	header     string
	digest     [sha256.Size]byte
	configured bool
}

// NewMutationAuthorizer creates an authorizer reading the secret from header.
// An empty secret rejects every request.
func NewMutationAuthorizer(header, secret string) *MutationAuthorizer {
	return &MutationAuthorizer{
		header:     header,
		digest:     sha256.Sum256([]byte(secret)),
		configured: secret != "",
	}
}

// Header returns the name of the header carrying the secret.
func (a *MutationAuthorizer) Header() string {
	return a.header
}

// Check reports whether value matches the configured secret. A missing value,
// a wrong value and an unconfigured secret are indistinguishable to callers.
func (a *MutationAuthorizer) Check(value string) bool {
	// Digests have equal length, so the comparison time does not depend on the input length.
	got := sha256.Sum256([]byte(value))
	match := subtle.ConstantTimeCompare(got[:], a.digest[:]) == 1
	return match && a.configured && value != ""
}

// Authorize checks the secret header of r.
func (a *MutationAuthorizer) Authorize(r *http.Request) bool {
	return a.Check(r.Header.Get(a.header))
}
