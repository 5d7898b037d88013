// ABOUTME: Operator attribution for mutations
// ABOUTME: Resolves who performed a write: payload, trusted header, endpoint fallback, then "system"

package middleware

import (
	"net/http"
	"strings"
)

// DefaultOperator is attributed when nothing else names the caller.
const DefaultOperator = "system"

// OperatorResolver determines the identity recorded in the audit trail of a mutation.
type OperatorResolver struct {
	Header string // trusted caller-identity header
}

// Resolve returns the first non-blank of: the payload operator, the identity
// header, the endpoint fallback and DefaultOperator. The result is never empty.
func (o OperatorResolver) Resolve(r *http.Request, payloadOperator, fallback string) string {
	if op := strings.TrimSpace(payloadOperator); op != "" {
		return op
	}
	if o.Header != "" && r != nil {
		if op := strings.TrimSpace(r.Header.Get(o.Header)); op != "" {
			return op
		}
	}
	if op := strings.TrimSpace(fallback); op != "" {
		return op
	}
	return DefaultOperator
}
