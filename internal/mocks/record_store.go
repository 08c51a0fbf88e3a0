package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/store"
)

// MockStudyRecordStore implements store.StudyRecordStore for testing.
type MockStudyRecordStore struct {
	// Function fields for customizable behavior
	AppendFn                 func(ctx context.Context, record *domain.StudyRecord) error
	GetByIDFn                func(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error)
	ListByUserFn             func(ctx context.Context, userID uuid.UUID) ([]*domain.StudyRecord, error)
	ListByMaterialFn         func(ctx context.Context, materialID uuid.UUID) ([]*domain.StudyRecord, error)
	ListByTimeRangeFn        func(ctx context.Context, start, end time.Time) ([]*domain.StudyRecord, error)
	ListByUserAndTimeRangeFn func(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*domain.StudyRecord, error)

	mu      sync.Mutex
	records map[uuid.UUID]*domain.StudyRecord
}

var _ store.StudyRecordStore = (*MockStudyRecordStore)(nil)

// NewMockStudyRecordStore creates a new mock store with initialized defaults.
func NewMockStudyRecordStore() *MockStudyRecordStore {
	return &MockStudyRecordStore{
		records: make(map[uuid.UUID]*domain.StudyRecord),
	}
}

// Append implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) Append(ctx context.Context, record *domain.StudyRecord) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, record)
	}

	if err := record.Validate(); err != nil {
		return store.NewStoreError("study_record", "append", err.Error(), store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[record.ID]; exists {
		return store.ErrDuplicate
	}
	copied := *record
	m.records[record.ID] = &copied
	return nil
}

// GetByID implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.records[id]
	if !exists {
		return nil, store.ErrStudyRecordNotFound
	}
	copied := *record
	return &copied, nil
}

// ListByUser implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.StudyRecord, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	return m.collect(func(r *domain.StudyRecord) bool {
		return r.UserID == userID
	}), nil
}

// ListByMaterial implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) ListByMaterial(ctx context.Context, materialID uuid.UUID) ([]*domain.StudyRecord, error) {
	if m.ListByMaterialFn != nil {
		return m.ListByMaterialFn(ctx, materialID)
	}

	return m.collect(func(r *domain.StudyRecord) bool {
		return r.MaterialID == materialID
	}), nil
}

// ListByTimeRange implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) ListByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.StudyRecord, error) {
	if m.ListByTimeRangeFn != nil {
		return m.ListByTimeRangeFn(ctx, start, end)
	}

	return m.collect(func(r *domain.StudyRecord) bool {
		return inRange(r.StartTime, start, end)
	}), nil
}

// ListByUserAndTimeRange implements the StudyRecordStore interface.
func (m *MockStudyRecordStore) ListByUserAndTimeRange(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*domain.StudyRecord, error) {
	if m.ListByUserAndTimeRangeFn != nil {
		return m.ListByUserAndTimeRangeFn(ctx, userID, start, end)
	}

	return m.collect(func(r *domain.StudyRecord) bool {
		return r.UserID == userID && inRange(r.StartTime, start, end)
	}), nil
}

// WithTx implements the StudyRecordStore interface. The mock has no real
// transactions, so the same store is returned.
func (m *MockStudyRecordStore) WithTx(tx *sql.Tx) store.StudyRecordStore {
	return m
}

// Len reports how many records the default implementation holds.
func (m *MockStudyRecordStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func (m *MockStudyRecordStore) collect(keep func(*domain.StudyRecord) bool) []*domain.StudyRecord {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.StudyRecord, 0)
	for _, record := range m.records {
		if keep(record) {
			copied := *record
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result
}

// inRange reports whether t falls in the half-open interval [start, end).
func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
