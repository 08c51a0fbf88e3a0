package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
)

// StudyRecordStore defines the interface for the append-only event log of
// study sessions. No update or delete operations exist: once written, a
// record is immutable, which keeps the log a replayable source of truth for
// the progress aggregates.
type StudyRecordStore interface {
	// Append saves a new study record to the log and is the only mutating
	// operation on the store. The record must be valid according to domain
	// validation rules; validation failures are returned before any write.
	// Returns ErrDuplicate if a record with the same ID already exists.
	Append(ctx context.Context, record *domain.StudyRecord) error

	// GetByID retrieves a study record by its unique ID.
	// Returns ErrStudyRecordNotFound if the record does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error)

	// ListByUser retrieves all study records for a user, ordered by start
	// time ascending. Returns an empty slice when the user has no records.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.StudyRecord, error)

	// ListByMaterial retrieves all study records for a material, ordered by
	// start time ascending.
	ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]*domain.StudyRecord, error)

	// ListByTimeRange retrieves all study records whose start time falls in
	// [start, end), ordered by start time ascending.
	ListByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.StudyRecord, error)

	// ListByUserAndTimeRange is ListByTimeRange narrowed to a single user.
	ListByUserAndTimeRange(
		ctx context.Context,
		userID uuid.UUID,
		start, end time.Time,
	) ([]*domain.StudyRecord, error)

	// WithTx returns a StudyRecordStore bound to the given transaction so
	// the append can commit or roll back together with the progress fold.
	WithTx(tx *sql.Tx) StudyRecordStore
}
