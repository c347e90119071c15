// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidFormat is returned when data is not in the expected format.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")
)

// Entity-specific validation errors. Each wraps ErrValidation so callers can
// test for the whole class with errors.Is(err, ErrValidation).
var (
	ErrEmptyTaskText          = fmt.Errorf("%w: task text is empty", ErrValidation)
	ErrEmptyListName          = fmt.Errorf("%w: list name is empty", ErrValidation)
	ErrInvalidPriority        = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidDate            = fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	ErrInvalidTime            = fmt.Errorf("%w: time must be HH:MM or HH:MM:SS", ErrValidation)
	ErrInvalidCompletionState = fmt.Errorf("%w: invalid completion state", ErrValidation)
	ErrInvalidRepeatRule      = fmt.Errorf("%w: invalid repeat rule", ErrValidation)
)

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}

// IsValidationError reports whether err is any kind of domain validation failure.
func IsValidationError(err error) bool {
	var vErr *ValidationError
	return errors.Is(err, ErrValidation) || errors.As(err, &vErr)
}
