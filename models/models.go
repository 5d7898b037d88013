// ABOUTME: Shared API response envelopes for errors and validation failures
// ABOUTME: JSON-serializable structures matching dashboard client expectations

package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// FieldError describes one failed validation rule.
// Path is dot-separated ("toStatus", "items.0.id"); empty means the whole body.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationErrorResponse is returned with 400 when a request body or query fails validation.
type ValidationErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details"`
}

// ValidationFailedMessage is the fixed error text of every ValidationErrorResponse.
const ValidationFailedMessage = "Validation failed"

// OKResponse is the body of endpoints that only acknowledge.
type OKResponse struct {
	OK bool `json:"ok"`
}

// RateLimitResponse is returned with 429; RetryAfter mirrors the Retry-After header.
type RateLimitResponse struct {
	Error      string `json:"error"`
	Code       int    `json:"code"`
	RetryAfter int    `json:"retry_after"`
}
