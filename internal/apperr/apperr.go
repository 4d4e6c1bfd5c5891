// Package apperr defines the error taxonomy shared by the assignment engine
// and the HTTP layer.  Every failure the API reports carries a Kind, so the
// gateway chooses a status code from the kind instead of inspecting error
// text.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind int

const (
	// KindInternal is an unexpected failure; details are not shown to callers
	// in production.
	KindInternal Kind = iota
	// KindValidation is malformed or missing input.  Fields lists every
	// violated field.
	KindValidation
	// KindNotFound is a referenced entity that does not exist.
	KindNotFound
	// KindConflict is a uniqueness violation or an unavailable grave.
	KindConflict
	// KindUnavailable is a retryable failure such as pool exhaustion or a
	// unit-of-work deadline.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// FieldError describes one violated input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// Error is the structured error propagated from the engine to the API
// boundary.
type Error struct {
	Kind     Kind
	Resource string // entity involved, e.g. "grave"
	Message  string // caller-facing message
	Fields   []FieldError
	Err      error // underlying cause, never shown in production
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation reports one or more invalid fields.
func Validation(fields ...FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation errors", Fields: fields}
}

// NotFound reports a missing entity with the given caller-facing message.
func NotFound(resource, message string) *Error {
	return &Error{Kind: KindNotFound, Resource: resource, Message: message}
}

// Conflict reports a state or uniqueness conflict.
func Conflict(resource, message string) *Error {
	return &Error{Kind: KindConflict, Resource: resource, Message: message}
}

// Unavailable wraps a retryable store failure.
func Unavailable(err error) *Error {
	return &Error{Kind: KindUnavailable, Message: "Service temporarily unavailable, retry later", Err: err}
}

// Internal wraps an unexpected failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "Internal server error", Err: err}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the Kind of err, KindInternal when err carries none.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}
