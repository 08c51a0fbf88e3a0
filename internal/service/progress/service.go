// Package progress implements the write side of the learning progress
// engine: study sessions enter as immutable records and fold into per-user,
// per-subject aggregates.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
)

// Common service errors. The API layer maps these to HTTP status codes.
var (
	// ErrMaterialNotFound indicates the session referenced a material the
	// catalog does not know. API layer should map this to HTTP 404.
	ErrMaterialNotFound = errors.New("material not found")

	// ErrProgressNotFound indicates no aggregate exists for the requested
	// (user, subject) pair. API layer should map this to HTTP 404.
	ErrProgressNotFound = errors.New("progress not found")

	// ErrConcurrentUpdate indicates the fold lost the optimistic concurrency
	// race on every attempt of its retry budget. API layer should map this
	// to HTTP 409; the client may simply resubmit.
	ErrConcurrentUpdate = errors.New("progress was updated concurrently")
)

// SessionInput carries the caller-reported facts of one finished study
// session. DurationSeconds is authoritative; it is not derived from the
// start and end times.
type SessionInput struct {
	MaterialID      uuid.UUID
	StartTime       time.Time
	EndTime         time.Time
	DurationSeconds int
	ProgressPercent float64
}

// SubmitResult is the outcome of a successful fold: the appended record and
// the aggregate state after the fold.
type SubmitResult struct {
	Record   *domain.StudyRecord
	Progress *domain.Progress
}

// Service provides operations on study sessions and progress aggregates.
type Service interface {
	// SubmitSession validates the session, resolves the material's subject,
	// appends a study record and folds it into the (user, subject) aggregate
	// in one transaction. The aggregate is created on the first session for
	// the pair.
	//
	// Returns:
	//   - (*SubmitResult, nil): the appended record and the folded aggregate
	//   - (nil, ErrMaterialNotFound): the material is unknown to the catalog
	//   - (nil, ErrConcurrentUpdate): the fold retry budget was exhausted
	//   - (nil, error): validation errors from the domain, or storage errors
	SubmitSession(ctx context.Context, userID uuid.UUID, input SessionInput) (*SubmitResult, error)

	// SetGoal sets the weekly goal hours on an existing aggregate. Percent
	// and accumulated study time are untouched.
	//
	// Returns ErrProgressNotFound if no aggregate exists for the pair, and
	// a validation error if hours is negative.
	SetGoal(ctx context.Context, userID uuid.UUID, subject string, hours int) (*domain.Progress, error)

	// GetProgress retrieves the aggregate for a (user, subject) pair.
	// Returns ErrProgressNotFound if no aggregate exists yet.
	GetProgress(ctx context.Context, userID uuid.UUID, subject string) (*domain.Progress, error)

	// ListProgress retrieves all aggregates for a user, ordered by subject.
	ListProgress(ctx context.Context, userID uuid.UUID) ([]*domain.Progress, error)
}
