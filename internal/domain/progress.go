package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Progress
var (
	ErrEmptyProgressUserID = errors.New("progress user ID cannot be empty")
	ErrEmptySubject        = errors.New("progress subject cannot be empty")
	ErrNegativeStudyTime   = errors.New("total study time cannot be negative")
	ErrNegativeGoalHours   = errors.New("goal hours cannot be negative")
)

// Progress is the aggregate summarizing all study sessions a user has folded
// in for one subject. Exactly one row exists per (UserID, Subject) pair.
//
// Percent follows high-water-mark semantics: it only ever increases, so a
// replayed or out-of-order session reporting lower completion never regresses
// the aggregate. UpdatedAt doubles as the optimistic concurrency token for
// compare-and-swap updates.
type Progress struct {
	UserID         uuid.UUID `json:"user_id"`
	Subject        string    `json:"subject"`
	Percent        float64   `json:"percent"`          // 0-100, two decimal places, monotonic non-decreasing
	TotalStudyTime int       `json:"total_study_time"` // Cumulative minutes across all folded sessions
	GoalHours      int       `json:"goal_hours"`       // User-set target, only changed by explicit goal updates
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewProgressFromRecord creates the initial aggregate for a (user, subject)
// pair from its first folded session.
func NewProgressFromRecord(record *StudyRecord, subject string, now time.Time) (*Progress, error) {
	progress := &Progress{
		UserID:         record.UserID,
		Subject:        subject,
		Percent:        record.ProgressPercent,
		TotalStudyTime: record.DurationMinutes(),
		GoalHours:      0,
		UpdatedAt:      now.UTC(),
	}

	if err := progress.Validate(); err != nil {
		return nil, err
	}

	return progress, nil
}

// Validate checks if the Progress aggregate has valid data.
func (p *Progress) Validate() error {
	if p.UserID == uuid.Nil {
		return ErrEmptyProgressUserID
	}

	if p.Subject == "" {
		return ErrEmptySubject
	}

	if p.Percent < 0 || p.Percent > 100 {
		return ErrPercentOutOfRange
	}

	if p.TotalStudyTime < 0 {
		return ErrNegativeStudyTime
	}

	if p.GoalHours < 0 {
		return ErrNegativeGoalHours
	}

	return nil
}

// WithRecord returns a new Progress with the given session folded in.
// The receiver is not modified; folds produce fresh instances so callers can
// retry a lost compare-and-swap from the re-read state.
func (p *Progress) WithRecord(record *StudyRecord, now time.Time) *Progress {
	next := *p
	if record.ProgressPercent > next.Percent {
		next.Percent = record.ProgressPercent
	}
	next.TotalStudyTime += record.DurationMinutes()
	next.UpdatedAt = now.UTC()
	return &next
}

// WithGoal returns a new Progress with the goal target replaced.
// Only GoalHours and UpdatedAt change; session folding never touches the goal.
func (p *Progress) WithGoal(hours int, now time.Time) *Progress {
	next := *p
	next.GoalHours = hours
	next.UpdatedAt = now.UTC()
	return &next
}

// GoalCompletionRatio reports studied-hours divided by goal-hours.
// The second return value is false when no goal is set; such aggregates are
// excluded from goal ranking rather than treated as an error.
func (p *Progress) GoalCompletionRatio() (float64, bool) {
	if p.GoalHours <= 0 {
		return 0, false
	}
	return float64(p.TotalStudyTime) / 60.0 / float64(p.GoalHours), true
}
