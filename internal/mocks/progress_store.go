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

// MockProgressStore implements store.ProgressStore for testing. The default
// implementation enforces the same optimistic concurrency contract as the
// postgres store: Update compares the stored UpdatedAt against the expected
// value and returns store.ErrConflict on mismatch.
type MockProgressStore struct {
	// Function fields for customizable behavior
	GetFn           func(ctx context.Context, userID uuid.UUID, subject string) (*domain.Progress, error)
	ListByUserFn    func(ctx context.Context, userID uuid.UUID) ([]*domain.Progress, error)
	ListBySubjectFn func(ctx context.Context, subject string) ([]*domain.Progress, error)
	ListFn          func(ctx context.Context) ([]*domain.Progress, error)
	CreateFn        func(ctx context.Context, progress *domain.Progress) error
	UpdateFn        func(ctx context.Context, progress *domain.Progress, expectedUpdatedAt time.Time) error

	mu    sync.Mutex
	byKey map[progressKey]*domain.Progress

	// UpdateCalls counts Update invocations, including scripted ones.
	UpdateCalls int
}

type progressKey struct {
	userID  uuid.UUID
	subject string
}

var _ store.ProgressStore = (*MockProgressStore)(nil)

// NewMockProgressStore creates a new mock store with initialized defaults.
func NewMockProgressStore() *MockProgressStore {
	return &MockProgressStore{
		byKey: make(map[progressKey]*domain.Progress),
	}
}

// Seed inserts an aggregate directly, bypassing the Create contract. Tests
// use it to arrange existing state.
func (m *MockProgressStore) Seed(progress *domain.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *progress
	m.byKey[progressKey{progress.UserID, progress.Subject}] = &copied
}

// Get implements the ProgressStore interface.
func (m *MockProgressStore) Get(ctx context.Context, userID uuid.UUID, subject string) (*domain.Progress, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, userID, subject)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	progress, exists := m.byKey[progressKey{userID, subject}]
	if !exists {
		return nil, store.ErrProgressNotFound
	}
	copied := *progress
	return &copied, nil
}

// ListByUser implements the ProgressStore interface.
func (m *MockProgressStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Progress, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID)
	}

	return m.collect(func(p *domain.Progress) bool {
		return p.UserID == userID
	}), nil
}

// ListBySubject implements the ProgressStore interface.
func (m *MockProgressStore) ListBySubject(ctx context.Context, subject string) ([]*domain.Progress, error) {
	if m.ListBySubjectFn != nil {
		return m.ListBySubjectFn(ctx, subject)
	}

	return m.collect(func(p *domain.Progress) bool {
		return p.Subject == subject
	}), nil
}

// List implements the ProgressStore interface.
func (m *MockProgressStore) List(ctx context.Context) ([]*domain.Progress, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}

	return m.collect(func(*domain.Progress) bool { return true }), nil
}

// Create implements the ProgressStore interface.
func (m *MockProgressStore) Create(ctx context.Context, progress *domain.Progress) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, progress)
	}

	if err := progress.Validate(); err != nil {
		return store.NewStoreError("progress", "create", err.Error(), store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey{progress.UserID, progress.Subject}
	if _, exists := m.byKey[key]; exists {
		return store.ErrDuplicate
	}
	copied := *progress
	m.byKey[key] = &copied
	return nil
}

// Update implements the ProgressStore interface.
func (m *MockProgressStore) Update(
	ctx context.Context,
	progress *domain.Progress,
	expectedUpdatedAt time.Time,
) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, progress, expectedUpdatedAt)
	}

	if err := progress.Validate(); err != nil {
		return store.NewStoreError("progress", "update", err.Error(), store.ErrInvalidEntity)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := progressKey{progress.UserID, progress.Subject}
	current, exists := m.byKey[key]
	if !exists {
		return store.ErrProgressNotFound
	}
	if !current.UpdatedAt.Equal(expectedUpdatedAt) {
		return store.ErrConflict
	}
	copied := *progress
	m.byKey[key] = &copied
	return nil
}

// WithTx implements the ProgressStore interface. The mock has no real
// transactions, so the same store is returned.
func (m *MockProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return m
}

func (m *MockProgressStore) collect(keep func(*domain.Progress) bool) []*domain.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*domain.Progress, 0)
	for _, progress := range m.byKey {
		if keep(progress) {
			copied := *progress
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].UserID != result[j].UserID {
			return result[i].UserID.String() < result[j].UserID.String()
		}
		return result[i].Subject < result[j].Subject
	})
	return result
}
