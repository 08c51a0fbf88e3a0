package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for StudyRecord
var (
	ErrEmptyRecordUserID     = errors.New("study record user ID cannot be empty")
	ErrEmptyRecordMaterialID = errors.New("study record material ID cannot be empty")
	ErrInvalidTimeSpan       = errors.New("study record end time must be after start time")
	ErrNegativeDuration      = errors.New("study record duration cannot be negative")
	ErrPercentOutOfRange     = errors.New("progress percent must be between 0 and 100")
)

// StudyRecord is an immutable event describing one completed study session.
// Records are appended once when a session ends and are never updated or
// deleted, which keeps the event log replayable.
type StudyRecord struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	MaterialID      uuid.UUID `json:"material_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"` // Caller-supplied, authoritative within the session span
	ProgressPercent float64   `json:"progress_percent"` // 0-100, two decimal places
	CreatedAt       time.Time `json:"created_at"`
}

// NewStudyRecord creates a study record for a finished session.
// The duration is accepted as reported by the caller; only negative values
// are rejected. ProgressPercent is normalized to two decimal places.
func NewStudyRecord(
	userID, materialID uuid.UUID,
	startTime, endTime time.Time,
	durationSeconds int,
	progressPercent float64,
) (*StudyRecord, error) {
	record := &StudyRecord{
		ID:              uuid.New(),
		UserID:          userID,
		MaterialID:      materialID,
		StartTime:       startTime.UTC(),
		EndTime:         endTime.UTC(),
		DurationSeconds: durationSeconds,
		ProgressPercent: RoundPercent(progressPercent),
		CreatedAt:       time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return record, nil
}

// Validate checks whether the StudyRecord satisfies the event invariants.
func (r *StudyRecord) Validate() error {
	if r.UserID == uuid.Nil {
		return ErrEmptyRecordUserID
	}

	if r.MaterialID == uuid.Nil {
		return ErrEmptyRecordMaterialID
	}

	if !r.EndTime.After(r.StartTime) {
		return ErrInvalidTimeSpan
	}

	if r.DurationSeconds < 0 {
		return ErrNegativeDuration
	}

	if r.ProgressPercent < 0 || r.ProgressPercent > 100 {
		return ErrPercentOutOfRange
	}

	return nil
}

// DurationMinutes returns the session duration in whole minutes,
// rounded half-up. Aggregates accumulate this per-session rounding,
// not a single rounding of the grand total.
func (r *StudyRecord) DurationMinutes() int {
	return int(math.Round(float64(r.DurationSeconds) / 60.0))
}

// RoundPercent normalizes a percent value to two decimal places,
// matching the fixed precision of stored progress columns.
func RoundPercent(v float64) float64 {
	return math.Round(v*100) / 100
}
