package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mnemoapp/mnemo-api/internal/domain"
	"github.com/mnemoapp/mnemo-api/internal/domain/fsrs"
	"github.com/mnemoapp/mnemo-api/internal/service/insights"
	"github.com/mnemoapp/mnemo-api/internal/service/review"
	"github.com/mnemoapp/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, review.ErrCardNotFound),
		errors.Is(err, insights.ErrNoHistory),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, review.ErrCardExists),
		errors.Is(err, domain.ErrCardSuspended):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, review.ErrInvalidAnswer),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, fsrs.ErrInvalidDays),
		errors.Is(err, fsrs.ErrDegenerateParameters):
		return http.StatusBadRequest

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
	// Not found errors
	case errors.Is(err, review.ErrCardNotFound):
		return "Card not found"

	case errors.Is(err, insights.ErrNoHistory):
		return "No review history for this card"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, review.ErrCardExists):
		return "Card already exists"

	case errors.Is(err, domain.ErrCardSuspended):
		return "Card is suspended"

	// Bad request errors
	case errors.Is(err, review.ErrInvalidAnswer):
		return "Invalid answer"

	case errors.Is(err, domain.ErrInvalidRating):
		return "Invalid rating"

	case errors.Is(err, fsrs.ErrInvalidDays):
		return "Postpone days must be at least 1"

	case errors.Is(err, fsrs.ErrDegenerateParameters):
		return "Invalid parameter vector"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Default case for unknown errors
	default:
		var svcErr *review.ServiceError
		if errors.As(err, &svcErr) {
			return "Failed to " + strings.ReplaceAll(svcErr.Operation, "_", " ")
		}
		var insErr *insights.ServiceError
		if errors.As(err, &insErr) {
			return "Failed to " + strings.ReplaceAll(insErr.Operation, "_", " ")
		}
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'SubmitAnswerRequest.Rating' Error:Field
		// validation for 'Rating' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}
				return validationMessage(field, tag)
			}
		}
	}

	return "validation failed"
}

// validationMessage maps a field and validator tag onto a client-safe message.
func validationMessage(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "min", "gte":
		return field + " is too small"
	case "max", "lte", "lt":
		return field + " is too large"
	case "oneof":
		return field + " has an unsupported value"
	default:
		return field + ": invalid value"
	}
}
