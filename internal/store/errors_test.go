package store_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/studyhub/studyhub-api/internal/store"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsNotFoundError(store.ErrNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrProgressNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrStudyRecordNotFound))
	assert.True(t, store.IsNotFoundError(store.ErrMaterialNotFound))
	assert.True(t, store.IsNotFoundError(fmt.Errorf("lookup failed: %w", store.ErrProgressNotFound)))

	assert.False(t, store.IsNotFoundError(store.ErrDuplicate))
	assert.False(t, store.IsNotFoundError(store.ErrConflict))
	assert.False(t, store.IsNotFoundError(errors.New("something else")))
	assert.False(t, store.IsNotFoundError(nil))
}

func TestIsConflictError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsConflictError(store.ErrConflict))
	assert.True(t, store.IsConflictError(fmt.Errorf("fold failed: %w", store.ErrConflict)))
	assert.False(t, store.IsConflictError(store.ErrNotFound))
	assert.False(t, store.IsConflictError(nil))
}

func TestIsStorageError(t *testing.T) {
	t.Parallel()

	assert.True(t, store.IsStorageError(store.ErrStorageFailure))
	assert.True(t, store.IsStorageError(fmt.Errorf("append: %w", store.ErrStorageFailure)))
	assert.False(t, store.IsStorageError(store.ErrConflict))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		t.Parallel()

		inner := store.ErrConflict
		err := store.NewStoreError("progress", "update", "cas check failed", inner)

		assert.Contains(t, err.Error(), "update operation on progress failed")
		assert.Contains(t, err.Error(), "cas check failed")
		assert.ErrorIs(t, err, store.ErrConflict)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		t.Parallel()

		err := store.NewStoreError("study_record", "append", "write rejected", nil)
		assert.Equal(t, "append operation on study_record failed: write rejected", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})
}
