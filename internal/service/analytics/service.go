// Package analytics implements the read side of the learning progress
// engine: pure computations over progress aggregates and study records.
// Nothing in this package mutates state.
package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
)

// Common analytics errors. The API layer maps these to HTTP status codes.
var (
	// ErrInvalidTimeRange indicates an empty or inverted time range.
	ErrInvalidTimeRange = errors.New("invalid time range")

	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("limit must be positive")

	// ErrInvalidSortKey indicates an unknown sort key.
	ErrInvalidSortKey = errors.New("unknown sort key")
)

// SortKey selects the ordering for TopProgress.
type SortKey string

const (
	// SortByPercent orders by completion percent.
	SortByPercent SortKey = "percent"

	// SortByStudyTime orders by accumulated study minutes.
	SortByStudyTime SortKey = "study_time"
)

// Valid reports whether the sort key is one of the known values.
func (k SortKey) Valid() bool {
	return k == SortByPercent || k == SortByStudyTime
}

// Filter narrows an aggregate computation to one user, one subject, or
// both. The zero value means the whole population.
type Filter struct {
	UserID  *uuid.UUID
	Subject string
}

// global reports whether the filter selects the whole population.
func (f Filter) global() bool {
	return f.UserID == nil && f.Subject == ""
}

// DistributionBucket is one band of the completion distribution. Buckets
// are half-open except the last, which includes 100.
type DistributionBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// RankingEntry is one row of the goal completion ranking.
type RankingEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Subject        string    `json:"subject"`
	Ratio          float64   `json:"ratio"`
	TotalStudyTime int       `json:"total_study_time"`
	GoalHours      int       `json:"goal_hours"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DailyActivity is the studied total for one calendar day. Days without
// sessions do not appear in the series.
type DailyActivity struct {
	Day           string `json:"day"` // YYYY-MM-DD in the reporting zone
	TotalDuration int    `json:"total_duration_seconds"`
	SessionCount  int    `json:"session_count"`
}

// SubjectOverview summarizes one subject across all users.
type SubjectOverview struct {
	Subject        string  `json:"subject"`
	AveragePercent float64 `json:"average_percent"`
	Learners       int     `json:"learners"`
}

// Service provides read-only analytics over progress aggregates and the
// study record log. All computations honor context cancellation and return
// ctx.Err() with no partial result when cancelled.
type Service interface {
	// Distribution buckets matching aggregates into four fixed completion
	// bands: 0-25, 25-50, 50-75 and 75-100. Counts sum to the number of
	// matching rows.
	Distribution(ctx context.Context, filter Filter) ([]DistributionBucket, error)

	// GoalCompletionRanking ranks aggregates with a goal set by
	// TotalStudyTime/60/GoalHours, descending. Rows without a goal are
	// excluded rather than ranked at zero. Ties order by UpdatedAt
	// descending so repeated queries agree.
	GoalCompletionRanking(ctx context.Context, filter Filter) ([]RankingEntry, error)

	// TopProgress returns up to limit aggregates ordered by the sort key,
	// descending, ties by UpdatedAt descending.
	TopProgress(ctx context.Context, filter Filter, by SortKey, limit int) ([]*domain.Progress, error)

	// DailyActivity groups a user's study records whose start time falls in
	// [start, end) by calendar day of the reporting zone, summing duration.
	DailyActivity(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]DailyActivity, error)

	// AverageProgress averages Percent over matching aggregates.
	// Returns nil, not zero, when nothing matches.
	AverageProgress(ctx context.Context, filter Filter) (*float64, error)

	// SumStudyTime totals TotalStudyTime minutes over matching aggregates.
	// Returns nil when nothing matches.
	SumStudyTime(ctx context.Context, filter Filter) (*int, error)

	// AverageSessionDuration averages DurationSeconds over a user's records
	// in [start, end). Returns nil when the user has no sessions there.
	AverageSessionDuration(ctx context.Context, userID uuid.UUID, start, end time.Time) (*float64, error)

	// SumDuration totals DurationSeconds over a user's records in
	// [start, end). Returns nil when the user has no sessions there.
	SumDuration(ctx context.Context, userID uuid.UUID, start, end time.Time) (*int, error)

	// SubjectOverview reports per-subject average percent and learner
	// count across all users, ordered by average descending.
	SubjectOverview(ctx context.Context) ([]SubjectOverview, error)

	// GoalReminders returns aggregates that have a goal set but sit below
	// 50 percent completion, optionally narrowed to one user.
	GoalReminders(ctx context.Context, userID *uuid.UUID) ([]*domain.Progress, error)
}
