// Package apperr defines the error taxonomy shared by services and handlers.
// Every caller-facing error carries a short human-readable reason so the UI
// can distinguish "fix your input", "you are not allowed", "this is no longer
// possible" and "try again later" without inspecting internal codes.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error
type Kind int

const (
	// Validation means the input is malformed; correcting it will succeed.
	Validation Kind = iota
	// Authorization means the principal lacks rights for the operation.
	Authorization
	// Conflict means a state-machine precondition no longer holds.
	Conflict
	// NotFound means the referenced document no longer exists.
	NotFound
	// BackendUnavailable means a collaborator failed transiently; retryable.
	BackendUnavailable
)

// Error is an application error with a classified kind
type Error struct {
	Kind    Kind
	Field   string // first failing field, for Validation
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validationf builds a Validation error naming the failing field.
func Validationf(field, format string, args ...any) *Error {
	return &Error{Kind: Validation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// Authorizationf builds an Authorization error.
func Authorizationf(format string, args ...any) *Error {
	return &Error{Kind: Authorization, Message: fmt.Sprintf(format, args...)}
}

// Conflictf builds a Conflict error.
func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: Conflict, Message: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFound error.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf(format, args...)}
}

// Unavailable wraps a transient collaborator failure. It is not retried
// internally; the caller decides whether to retry.
func Unavailable(err error) *Error {
	return &Error{Kind: BackendUnavailable, Message: "service temporarily unavailable, please try again later", Err: err}
}

// KindOf extracts the Kind of err, defaulting to BackendUnavailable for
// errors that did not come from this package.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return BackendUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}
