// ABOUTME: Tagged result of running a mutating request through the guard pipeline
// ABOUTME: Each kind maps to exactly one HTTP response shape

package guard

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/markalston/agent-dashboard/board"
	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
)

// Kind tags an Outcome.
type Kind int

const (
	OK Kind = iota
	Unauthorized
	RateLimited
	ValidationError
	DomainError
	// Internal is an unexpected collaborator fault. Its detail is logged, never returned.
	Internal
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case Unauthorized:
		return "unauthorized"
	case RateLimited:
		return "rate_limited"
	case ValidationError:
		return "validation_error"
	case DomainError:
		return "domain_error"
	default:
		return "internal"
	}
}

// Outcome is the result of Pipeline.Evaluate. Only the fields of its Kind are set.
type Outcome struct {
	Kind Kind

	Result     any                 // OK
	RetryAfter time.Duration       // RateLimited
	Details    []models.FieldError // ValidationError
	NotFound   bool                // DomainError
	Message    string              // DomainError
}

func ok(result any) Outcome { return Outcome{Kind: OK, Result: result} }

func unauthorized() Outcome { return Outcome{Kind: Unauthorized} }

func rateLimited(retryAfter time.Duration) Outcome {
	return Outcome{Kind: RateLimited, RetryAfter: retryAfter}
}

func invalidInput(details ...models.FieldError) Outcome {
	return Outcome{Kind: ValidationError, Details: details}
}

// FromError classifies a collaborator error. Errors other than
// board.DomainError are Internal.
func FromError(err error) Outcome {
	var de *board.DomainError
	if errors.As(err, &de) {
		return Outcome{Kind: DomainError, NotFound: de.Kind == board.KindNotFound, Message: de.Message}
	}
	return Outcome{Kind: Internal}
}

// Status returns the HTTP status code of the outcome.
func (o Outcome) Status() int {
	switch o.Kind {
	case OK:
		return http.StatusOK
	case Unauthorized:
		return http.StatusUnauthorized
	case RateLimited:
		return http.StatusTooManyRequests
	case ValidationError:
		return http.StatusBadRequest
	case DomainError:
		if o.NotFound {
			return http.StatusNotFound
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Write renders the outcome as a JSON response.
func (o Outcome) Write(w http.ResponseWriter) {
	switch o.Kind {
	case OK:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if err := json.NewEncoder(w).Encode(o.Result); err != nil {
			slog.Error("Failed to encode response", "error", err)
		}
	case Unauthorized:
		// Never say whether a secret is configured or which part was wrong.
		middleware.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
	case RateLimited:
		middleware.WriteRateLimited(w, o.RetryAfter)
	case ValidationError:
		middleware.WriteValidationError(w, o.Details)
	case DomainError:
		middleware.WriteJSONError(w, o.Message, o.Status())
	default:
		middleware.WriteJSONError(w, "Internal server error", http.StatusInternalServerError)
	}
}
