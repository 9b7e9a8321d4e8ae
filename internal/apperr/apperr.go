// Package apperr defines the error kinds the product API reports to its callers.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	// Unknown is the kind of any error not produced by this package.
	Unknown Kind = iota
	Validation
	NotFound
	InvalidID
	Conflict
	Persistence
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case NotFound:
		return "not_found"
	case InvalidID:
		return "invalid_id"
	case Conflict:
		return "conflict"
	case Persistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a kinded error. Messages holds client-safe text (validation
// violations); Err holds the underlying cause, which is only ever logged.
type Error struct {
	Kind     Kind
	Op       string
	Messages []string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// MessagesOf returns the client-facing messages carried by err, if any.
func MessagesOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Messages
	}
	return nil
}

func NewValidation(messages ...string) *Error {
	return &Error{Kind: Validation, Op: "validate", Messages: messages}
}

func NewNotFound(op, id string) *Error {
	return &Error{Kind: NotFound, Op: op, Err: fmt.Errorf("product with ID %s not found", id)}
}

func NewInvalidID(op, id string, cause error) *Error {
	return &Error{Kind: InvalidID, Op: op, Err: fmt.Errorf("malformed product ID %q: %w", id, cause)}
}

func NewConflict(op, id string, want, got int) *Error {
	return &Error{Kind: Conflict, Op: op, Err: fmt.Errorf("product %s is at version %d, request expected %d", id, got, want)}
}

func NewPersistence(op string, cause error) *Error {
	return &Error{Kind: Persistence, Op: op, Err: cause}
}
