package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/api/shared"
	"github.com/studyhub/studyhub-api/internal/domain"
)

// getUserIDFromContext extracts the authenticated user's UUID from the
// request context, where the authentication middleware placed it.
func getUserIDFromContext(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// requireUserID extracts the authenticated user ID or writes a 401.
// Returns false when the response has already been written.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathSubject extracts the subject label from the URL path.
func getPathSubject(r *http.Request) (string, error) {
	subject := chi.URLParam(r, "subject")
	if subject == "" {
		return "", domain.NewValidationError("subject", "is required", domain.ErrValidation)
	}
	return subject, nil
}

// getQueryUUID parses an optional UUID query parameter. A missing parameter
// returns (nil, nil); a malformed one returns an error.
func getQueryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, domain.NewValidationError(name, "has invalid format", domain.ErrInvalidID)
	}
	return &id, nil
}

// getQueryTimeRange parses required start and end query parameters as
// RFC 3339 timestamps and checks the range is not empty or inverted.
func getQueryTimeRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	start, err := parseQueryTime(query.Get("start"), "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseQueryTime(query.Get("end"), "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError(
			"end", "must be after start", domain.ErrValidation)
	}
	return start, end, nil
}

func parseQueryTime(raw, name string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, domain.NewValidationError(name, "must be an RFC 3339 timestamp", domain.ErrInvalidFormat)
	}
	return t, nil
}

// getQueryLimit parses the limit query parameter, defaulting when absent.
func getQueryLimit(r *http.Request, fallback int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, domain.NewValidationError("limit", "must be a positive number", domain.ErrValidation)
	}
	return limit, nil
}
