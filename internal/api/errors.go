package api

import (
	"errors"
	"net/http"

	"github.com/studyhub/studyhub-api/internal/api/shared"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/service/analytics"
	"github.com/studyhub/studyhub-api/internal/service/auth"
	"github.com/studyhub/studyhub-api/internal/service/progress"
	"github.com/studyhub/studyhub-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, progress.ErrMaterialNotFound),
		errors.Is(err, progress.ErrProgressNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Concurrency conflicts after the retry budget
	case errors.Is(err, progress.ErrConcurrentUpdate),
		errors.Is(err, store.ErrConflict):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, analytics.ErrInvalidTimeRange),
		errors.Is(err, analytics.ErrInvalidLimit),
		errors.Is(err, analytics.ErrInvalidSortKey):
		return http.StatusBadRequest

	// Storage outages are retryable by the caller
	case errors.Is(err, store.ErrStorageFailure):
		return http.StatusServiceUnavailable

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

	// A ValidationError carries its own client-safe field message.
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Error()
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, progress.ErrMaterialNotFound):
		return "Material not found"

	case errors.Is(err, progress.ErrProgressNotFound):
		return "Progress not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, progress.ErrConcurrentUpdate),
		errors.Is(err, store.ErrConflict):
		return "The progress was updated concurrently, please retry"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid identifier format"

	case errors.Is(err, analytics.ErrInvalidTimeRange):
		return "Invalid time range"

	case errors.Is(err, analytics.ErrInvalidLimit):
		return "Limit must be a positive number"

	case errors.Is(err, analytics.ErrInvalidSortKey):
		return "Unknown sort key"

	case errors.Is(err, store.ErrStorageFailure):
		return "Storage temporarily unavailable"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and sanitized message and
// writes the response. An empty overrideMessage uses the mapped message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, overrideMessage string) {
	status := MapErrorToStatusCode(err)
	message := overrideMessage
	if message == "" {
		message = GetSafeErrorMessage(err)
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}
