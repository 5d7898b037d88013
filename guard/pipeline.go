// ABOUTME: Route guard pipeline shared by every mutating endpoint
// ABOUTME: Secret check, rate limit, body validation, operator resolution, then the collaborator call

package guard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/markalston/agent-dashboard/middleware"
	"github.com/markalston/agent-dashboard/models"
	"github.com/markalston/agent-dashboard/services"
)

// DefaultMaxBodyBytes caps mutation bodies.
const DefaultMaxBodyBytes = 1 << 20

// Request is what a mutation's collaborator call receives once every check passed.
type Request struct {
	HTTP     *http.Request
	Body     []byte // validated JSON; "{}" when the client sent none
	Operator string // never empty
}

// Decode unmarshals the validated body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Mutation describes one guarded endpoint.
type Mutation struct {
	Name     string
	Schema   string // JSON Schema for the body
	Fallback string // operator when neither payload nor header names one
	// Check validates request parts outside the body, such as path parameters.
	// Its failures are reported together with the body's.
	Check  func(r *http.Request) []models.FieldError
	Invoke func(ctx context.Context, req Request) (any, error)
}

// Options configures a Pipeline.
type Options struct {
	Authorizer *middleware.MutationAuthorizer
	Limiter    *middleware.RateLimiter // nil disables rate limiting
	KeyFunc    func(*http.Request) string
	Validator  *services.SchemaValidator
	Operators  middleware.OperatorResolver
	MaxBody    int64
}

// Pipeline runs mutating requests through the guard sequence, stopping at the first failure.
type Pipeline struct {
	authorizer *middleware.MutationAuthorizer
	limiter    *middleware.RateLimiter
	keyFunc    func(*http.Request) string
	validator  *services.SchemaValidator
	operators  middleware.OperatorResolver
	maxBody    int64
}

// New creates a Pipeline. Authorizer and Validator are required.
func New(opts Options) (*Pipeline, error) {
	if opts.Authorizer == nil {
		return nil, errors.New("guard: mutation authorizer is required")
	}
	if opts.Validator == nil {
		return nil, errors.New("guard: schema validator is required")
	}
	p := &Pipeline{
		authorizer: opts.Authorizer,
		limiter:    opts.Limiter,
		keyFunc:    opts.KeyFunc,
		validator:  opts.Validator,
		operators:  opts.Operators,
		maxBody:    opts.MaxBody,
	}
	if p.keyFunc == nil {
		p.keyFunc = middleware.OperatorOrIP(opts.Operators.Header)
	}
	if p.maxBody <= 0 {
		p.maxBody = DefaultMaxBodyBytes
	}
	return p, nil
}

// Precompile compiles the schemas of ms so a broken schema fails at startup.
func (p *Pipeline) Precompile(ms ...Mutation) error {
	for _, m := range ms {
		if err := p.validator.Precompile(m.Schema); err != nil {
			return fmt.Errorf("mutation %s: %w", m.Name, err)
		}
	}
	return nil
}

// Evaluate runs r through the guard sequence and, if every check passes, the
// mutation's collaborator call. Nothing reaches the collaborator on a failed check.
func (p *Pipeline) Evaluate(r *http.Request, m Mutation) Outcome {
	if !p.authorizer.Authorize(r) {
		slog.Debug("Mutation rejected: bad secret", "mutation", m.Name, "path", r.URL.Path)
		return unauthorized()
	}

	if p.limiter != nil {
		key := p.keyFunc(r)
		if allowed, retryAfter := p.limiter.Allow(key); !allowed {
			slog.Warn("Rate limit exceeded",
				"mutation", m.Name,
				"key", key,
				"path", r.URL.Path,
				"retry_after", middleware.RetryAfterSeconds(retryAfter),
			)
			return rateLimited(retryAfter)
		}
	}

	body, failure := p.readBody(r)
	if failure != nil {
		return *failure
	}

	details, err := p.validator.Validate(m.Schema, body)
	if err != nil {
		slog.Error("Schema validation failed to run", "mutation", m.Name, "error", err)
		return Outcome{Kind: Internal}
	}
	if m.Check != nil {
		details = append(details, m.Check(r)...)
		sort.SliceStable(details, func(i, j int) bool { return details[i].Path < details[j].Path })
	}
	if len(details) > 0 {
		slog.Debug("Mutation rejected: validation", "mutation", m.Name, "fields", len(details))
		return invalidInput(details...)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}

	var payload struct {
		Operator string `json:"operator"`
	}
	// Schemas require a JSON object, so this only fails for a non-string operator.
	if err := json.Unmarshal(body, &payload); err != nil {
		return invalidInput(models.FieldError{Path: "operator", Message: "Must be a string"})
	}
	operator := p.operators.Resolve(r, payload.Operator, m.Fallback)

	result, err := m.Invoke(r.Context(), Request{HTTP: r, Body: body, Operator: operator})
	if err != nil {
		outcome := FromError(err)
		if outcome.Kind == Internal {
			slog.Error("Mutation failed", "mutation", m.Name, "operator", operator, "error", err)
		} else {
			slog.Info("Mutation refused", "mutation", m.Name, "operator", operator, "reason", outcome.Message)
		}
		return outcome
	}

	slog.Info("Mutation applied", "mutation", m.Name, "operator", operator)
	return ok(result)
}

// Handler returns an http.HandlerFunc that evaluates m and writes the outcome.
func (p *Pipeline) Handler(m Mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p.Evaluate(r, m).Write(w)
	}
}

func (p *Pipeline) readBody(r *http.Request) ([]byte, *Outcome) {
	if r.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, p.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			o := invalidInput(models.FieldError{Path: "", Message: fmt.Sprintf("Request body exceeds %d bytes", p.maxBody)})
			return nil, &o
		}
		o := invalidInput(models.FieldError{Path: "", Message: "Unable to read request body"})
		return nil, &o
	}
	return body, nil
}
