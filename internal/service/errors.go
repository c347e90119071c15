package service

import (
	"errors"
	"fmt"

	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/store"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrTaskNotFound indicates that the task does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrTaskNotFound = errors.New("task not found")

	// ErrListNotFound indicates that a list does not exist, either as the
	// target of a list operation or as the list a task refers to.
	ErrListNotFound = errors.New("list not found")
)

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "set_done")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel and validation errors directly without wrapping.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if known := knownError(err); known != nil {
		return known
	}
	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ListServiceError wraps errors from the list service with context.
type ListServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ListServiceError.
func (e *ListServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("list service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("list service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ListServiceError) Unwrap() error {
	return e.Err
}

// NewListServiceError creates a new ListServiceError.
// It returns known sentinel and validation errors directly without wrapping.
func NewListServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}
	if known := knownError(err); known != nil {
		return known
	}
	return &ListServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// knownError maps store sentinels to service sentinels and passes
// validation errors through. It returns nil for anything else.
func knownError(err error) error {
	switch {
	case errors.Is(err, ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return ErrTaskNotFound
	case errors.Is(err, ErrListNotFound), errors.Is(err, store.ErrListNotFound):
		return ErrListNotFound
	case errors.Is(err, store.ErrInvalidEntity):
		// The only foreign key is tasks.list_id.
		return ErrListNotFound
	case domain.IsValidationError(err):
		return err
	}
	return nil
}
