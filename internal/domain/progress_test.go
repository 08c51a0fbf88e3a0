package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-api/internal/domain"
)

func newTestRecord(t *testing.T, userID uuid.UUID, durationSeconds int, percent float64) *domain.StudyRecord {
	t.Helper()

	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	record, err := domain.NewStudyRecord(
		userID,
		uuid.New(),
		start,
		start.Add(time.Duration(durationSeconds)*time.Second+time.Second),
		durationSeconds,
		percent,
	)
	require.NoError(t, err)
	return record
}

func TestNewProgressFromRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	record := newTestRecord(t, userID, 3600, 75.0)
	progress, err := domain.NewProgressFromRecord(record, "Math", now)
	require.NoError(t, err)

	assert.Equal(t, userID, progress.UserID)
	assert.Equal(t, "Math", progress.Subject)
	assert.Equal(t, 75.0, progress.Percent)
	assert.Equal(t, 60, progress.TotalStudyTime)
	assert.Equal(t, 0, progress.GoalHours)
	assert.Equal(t, now, progress.UpdatedAt)
}

func TestNewProgressFromRecordEmptySubject(t *testing.T) {
	t.Parallel()

	record := newTestRecord(t, uuid.New(), 3600, 75.0)
	_, err := domain.NewProgressFromRecord(record, "", time.Now().UTC())
	assert.ErrorIs(t, err, domain.ErrEmptySubject)
}

func TestProgressWithRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	first := newTestRecord(t, userID, 3600, 75.0)
	progress, err := domain.NewProgressFromRecord(first, "Math", now)
	require.NoError(t, err)

	t.Run("lower percent never regresses the aggregate", func(t *testing.T) {
		t.Parallel()

		second := newTestRecord(t, userID, 1800, 60.0)
		next := progress.WithRecord(second, later)

		assert.Equal(t, 75.0, next.Percent)
		assert.Equal(t, 90, next.TotalStudyTime)
		assert.Equal(t, later, next.UpdatedAt)

		// Receiver is untouched.
		assert.Equal(t, 60, progress.TotalStudyTime)
		assert.Equal(t, now, progress.UpdatedAt)
	})

	t.Run("higher percent raises the high-water mark", func(t *testing.T) {
		t.Parallel()

		second := newTestRecord(t, userID, 600, 90.0)
		next := progress.WithRecord(second, later)

		assert.Equal(t, 90.0, next.Percent)
		assert.Equal(t, 70, next.TotalStudyTime)
	})

	t.Run("rounding is applied per session", func(t *testing.T) {
		t.Parallel()

		// Two 90-second sessions each round to 2 minutes; a single rounding
		// of the 180-second total would give 3.
		next := progress.WithRecord(newTestRecord(t, userID, 90, 10.0), later)
		next = next.WithRecord(newTestRecord(t, userID, 90, 10.0), later)

		assert.Equal(t, 60+2+2, next.TotalStudyTime)
	})
}

func TestProgressWithGoal(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	record := newTestRecord(t, userID, 3600, 75.0)
	progress, err := domain.NewProgressFromRecord(record, "Math", now)
	require.NoError(t, err)

	next := progress.WithGoal(10, later)

	assert.Equal(t, 10, next.GoalHours)
	assert.Equal(t, later, next.UpdatedAt)
	// Folded state is untouched by goal updates.
	assert.Equal(t, 75.0, next.Percent)
	assert.Equal(t, 60, next.TotalStudyTime)
	assert.Equal(t, 0, progress.GoalHours)
}

func TestProgressGoalCompletionRatio(t *testing.T) {
	t.Parallel()

	t.Run("no goal set", func(t *testing.T) {
		t.Parallel()

		progress := &domain.Progress{TotalStudyTime: 120, GoalHours: 0}
		_, ok := progress.GoalCompletionRatio()
		assert.False(t, ok)
	})

	t.Run("ratio of studied hours over goal hours", func(t *testing.T) {
		t.Parallel()

		progress := &domain.Progress{TotalStudyTime: 300, GoalHours: 10}
		ratio, ok := progress.GoalCompletionRatio()
		require.True(t, ok)
		assert.InDelta(t, 0.5, ratio, 1e-9)
	})
}

func TestProgressValidate(t *testing.T) {
	t.Parallel()

	valid := domain.Progress{
		UserID:         uuid.New(),
		Subject:        "Math",
		Percent:        50,
		TotalStudyTime: 10,
		GoalHours:      2,
		UpdatedAt:      time.Now().UTC(),
	}

	tests := []struct {
		name    string
		mutate  func(p *domain.Progress)
		wantErr error
	}{
		{"valid", func(p *domain.Progress) {}, nil},
		{"empty user", func(p *domain.Progress) { p.UserID = uuid.Nil }, domain.ErrEmptyProgressUserID},
		{"empty subject", func(p *domain.Progress) { p.Subject = "" }, domain.ErrEmptySubject},
		{"percent too high", func(p *domain.Progress) { p.Percent = 100.01 }, domain.ErrPercentOutOfRange},
		{"negative study time", func(p *domain.Progress) { p.TotalStudyTime = -1 }, domain.ErrNegativeStudyTime},
		{"negative goal", func(p *domain.Progress) { p.GoalHours = -1 }, domain.ErrNegativeGoalHours},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := valid
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
