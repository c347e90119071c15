package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adeotasks/adeo-api/internal/api/shared"
	"github.com/adeotasks/adeo-api/internal/domain"
	"github.com/adeotasks/adeo-api/internal/service"
	"github.com/adeotasks/adeo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, service.ErrTaskNotFound),
		errors.Is(err, service.ErrListNotFound),
		errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrListNotFound):
		return http.StatusNotFound

	// Bad request errors
	case domain.IsValidationError(err),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, service.ErrListNotFound), errors.Is(err, store.ErrListNotFound):
		return "List not found"

	case errors.Is(err, domain.ErrEmptyTaskText):
		return "Task text must not be empty"
	case errors.Is(err, domain.ErrEmptyListName):
		return "List name must not be empty"
	case errors.Is(err, domain.ErrInvalidPriority):
		return "Priority must be one of none, low, medium, high"
	case errors.Is(err, domain.ErrInvalidDate):
		return "Date must be YYYY-MM-DD"
	case errors.Is(err, domain.ErrInvalidTime):
		return "Time must be HH:MM or HH:MM:SS"
	case errors.Is(err, domain.ErrInvalidRepeatRule):
		return "Invalid repeat rule"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID"
	case domain.IsValidationError(err):
		return "Validation error"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps err to a status code and writes a sanitized error
// response. defaultMsg, when set, replaces the generic message for 5xx errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		message = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'CreateTaskRequest.Text' Error:Field validation for 'Text' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "unique":
		return "duplicate values"
	default:
		return "validation failed"
	}
}
