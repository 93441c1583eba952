package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports an absent stored entity or an unresolvable external identity.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized reports an actor lacking the identity or capability an action requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is the sentinel wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyGreeted reports a repeated greeting by the same greeter.
	ErrAlreadyGreeted = errors.New("already greeted")
)

// ValidationError describes malformed user input caught before any state change.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with a formatted message.
func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// ExternalError wraps a platform, network or database failure that happened after
// a decision was taken, so the user knows which action to retry.
type ExternalError struct {
	Op  string
	Err error
}

// NewExternalError wraps err with the operation that failed.
func NewExternalError(op string, err error) *ExternalError {
	return &ExternalError{Op: op, Err: err}
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}
