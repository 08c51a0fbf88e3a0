package mocks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/store"
)

func validRecord() *domain.StudyRecord {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return &domain.StudyRecord{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		MaterialID:      uuid.New(),
		StartTime:       start,
		EndTime:         start.Add(time.Hour),
		DurationSeconds: 3600,
		ProgressPercent: 50,
		CreatedAt:       start.Add(time.Hour),
	}
}

func validProgress() *domain.Progress {
	return &domain.Progress{
		UserID:         uuid.New(),
		Subject:        "mathematics",
		Percent:        50,
		TotalStudyTime: 60,
		UpdatedAt:      time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC),
	}
}

func TestMockStudyRecordStoreValidatesOnAppend(t *testing.T) {
	t.Parallel()

	recordStore := NewMockStudyRecordStore()

	record := validRecord()
	record.UserID = uuid.Nil

	err := recordStore.Append(context.Background(), record)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "study_record", storeErr.Entity)
	assert.Equal(t, "append", storeErr.Operation)

	_, getErr := recordStore.GetByID(context.Background(), record.ID)
	assert.ErrorIs(t, getErr, store.ErrStudyRecordNotFound)
}

func TestMockProgressStoreValidatesOnCreate(t *testing.T) {
	t.Parallel()

	progressStore := NewMockProgressStore()

	progress := validProgress()
	progress.Percent = 150

	err := progressStore.Create(context.Background(), progress)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "progress", storeErr.Entity)
	assert.Equal(t, "create", storeErr.Operation)
}

func TestMockProgressStoreValidatesOnUpdate(t *testing.T) {
	t.Parallel()

	progressStore := NewMockProgressStore()

	seeded := validProgress()
	progressStore.Seed(seeded)

	updated := *seeded
	updated.TotalStudyTime = -1

	err := progressStore.Update(context.Background(), &updated, seeded.UpdatedAt)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	var storeErr *store.StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "progress", storeErr.Entity)
	assert.Equal(t, "update", storeErr.Operation)

	// The invalid write must not replace the seeded aggregate.
	stored, getErr := progressStore.Get(context.Background(), seeded.UserID, seeded.Subject)
	require.NoError(t, getErr)
	assert.Equal(t, seeded.TotalStudyTime, stored.TotalStudyTime)
}
