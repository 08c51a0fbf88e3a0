package mocks

import (
	"context"
	"sync"

	"github.com/studyhub/studyhub-api/internal/store"
)

// MockTransactioner implements store.Transactioner over mock stores. A
// single mutex serializes callbacks, standing in for the atomicity a real
// database transaction provides. Rollback is not simulated: a callback that
// fails may leave partial writes behind, which is acceptable for the unit
// tests this backs.
type MockTransactioner struct {
	// InTransactionFn overrides the default serialization when set.
	InTransactionFn func(
		ctx context.Context,
		fn func(ctx context.Context, records store.StudyRecordStore, progress store.ProgressStore) error,
	) error

	Records  *MockStudyRecordStore
	Progress *MockProgressStore

	mu sync.Mutex
}

var _ store.Transactioner = (*MockTransactioner)(nil)

// NewMockTransactioner creates a transactioner over fresh mock stores.
func NewMockTransactioner() *MockTransactioner {
	return &MockTransactioner{
		Records:  NewMockStudyRecordStore(),
		Progress: NewMockProgressStore(),
	}
}

// InTransaction implements the Transactioner interface.
func (m *MockTransactioner) InTransaction(
	ctx context.Context,
	fn func(ctx context.Context, records store.StudyRecordStore, progress store.ProgressStore) error,
) error {
	if m.InTransactionFn != nil {
		return m.InTransactionFn(ctx, fn)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(ctx, m.Records, m.Progress)
}
