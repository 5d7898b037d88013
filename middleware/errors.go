// ABOUTME: JSON error response helpers shared by middleware, guard and handlers
// ABOUTME: Ensures every error response uses the API's {error, code} shape

package middleware

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/markalston/agent-dashboard/models"
)

// WriteJSONError writes an error response as JSON with the given status code.
func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// WriteValidationError writes a 400 listing every failed field.
func WriteValidationError(w http.ResponseWriter, details []models.FieldError) {
	if details == nil {
		details = []models.FieldError{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(models.ValidationErrorResponse{
		Error:   models.ValidationFailedMessage,
		Details: details,
	})
}

// RetryAfterSeconds rounds a retry hint up to whole seconds, never negative.
func RetryAfterSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}

// WriteRateLimited writes a 429 with a Retry-After header in whole seconds.
func WriteRateLimited(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := RetryAfterSeconds(retryAfter)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(models.RateLimitResponse{
		Error:      "Rate limit exceeded",
		Code:       http.StatusTooManyRequests,
		RetryAfter: seconds,
	})
}
