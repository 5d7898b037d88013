// ABOUTME: Errors reported by the task board to its callers
// ABOUTME: DomainError carries a kind (not found, invalid) and a client-safe message

package board

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a DomainError.
type ErrorKind int

const (
	// KindInvalid is an illegal operation on existing records.
	KindInvalid ErrorKind = iota
	// KindNotFound is a reference to an unknown record.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	default:
		return "invalid"
	}
}

// DomainError is a failure the board reports about a request. Message is safe
// to return to the caller verbatim.
type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func notFound(format string, args ...any) error {
	return &DomainError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return &DomainError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a DomainError of kind KindNotFound.
func IsNotFound(err error) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == KindNotFound
}
