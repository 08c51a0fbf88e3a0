package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-api/internal/domain"
)

func TestNewStudyRecord(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	materialID := uuid.New()
	start := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(1 * time.Hour)

	t.Run("valid record", func(t *testing.T) {
		t.Parallel()

		record, err := domain.NewStudyRecord(userID, materialID, start, end, 3600, 75.0)
		require.NoError(t, err)

		assert.NotEqual(t, uuid.Nil, record.ID)
		assert.Equal(t, userID, record.UserID)
		assert.Equal(t, materialID, record.MaterialID)
		assert.Equal(t, 3600, record.DurationSeconds)
		assert.Equal(t, 75.0, record.ProgressPercent)
		assert.False(t, record.CreatedAt.IsZero())
	})

	t.Run("percent is normalized to two decimal places", func(t *testing.T) {
		t.Parallel()

		record, err := domain.NewStudyRecord(userID, materialID, start, end, 3600, 66.666)
		require.NoError(t, err)
		assert.Equal(t, 66.67, record.ProgressPercent)
	})

	t.Run("rejects end time before start time", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, materialID, end, start, 3600, 50.0)
		assert.ErrorIs(t, err, domain.ErrInvalidTimeSpan)
	})

	t.Run("rejects end time equal to start time", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, materialID, start, start, 0, 50.0)
		assert.ErrorIs(t, err, domain.ErrInvalidTimeSpan)
	})

	t.Run("rejects negative duration", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, materialID, start, end, -1, 50.0)
		assert.ErrorIs(t, err, domain.ErrNegativeDuration)
	})

	t.Run("rejects percent above 100", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, materialID, start, end, 3600, 100.01)
		assert.ErrorIs(t, err, domain.ErrPercentOutOfRange)
	})

	t.Run("rejects negative percent", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, materialID, start, end, 3600, -0.01)
		assert.ErrorIs(t, err, domain.ErrPercentOutOfRange)
	})

	t.Run("rejects empty user ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(uuid.Nil, materialID, start, end, 3600, 50.0)
		assert.ErrorIs(t, err, domain.ErrEmptyRecordUserID)
	})

	t.Run("rejects empty material ID", func(t *testing.T) {
		t.Parallel()

		_, err := domain.NewStudyRecord(userID, uuid.Nil, start, end, 3600, 50.0)
		assert.ErrorIs(t, err, domain.ErrEmptyRecordMaterialID)
	})
}

func TestStudyRecordDurationMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds int
		want    int
	}{
		{"exact hour", 3600, 60},
		{"half hour", 1800, 30},
		{"ten minutes", 600, 10},
		{"fifteen minutes", 900, 15},
		{"rounds half up", 90, 2},
		{"rounds down below half", 89, 1},
		{"sub-minute session rounds to one", 45, 1},
		{"short session rounds to zero", 20, 0},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := &domain.StudyRecord{DurationSeconds: tt.seconds}
			assert.Equal(t, tt.want, record.DurationMinutes())
		})
	}
}

func TestRoundPercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 75.0, domain.RoundPercent(75.0))
	assert.Equal(t, 33.33, domain.RoundPercent(33.3333))
	assert.Equal(t, 66.67, domain.RoundPercent(66.666))
	assert.Equal(t, 0.0, domain.RoundPercent(0))
}
