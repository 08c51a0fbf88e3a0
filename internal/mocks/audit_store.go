package mocks

import (
	"context"
	"sync"

	"github.com/studyhub/studyhub-api/internal/store"
)

// MockAuditLogStore implements store.AuditLogStore for testing.
type MockAuditLogStore struct {
	// AppendFn overrides the default in-memory append when set.
	AppendFn func(ctx context.Context, entry *store.AuditEntry) error

	mu      sync.Mutex
	entries []*store.AuditEntry
}

var _ store.AuditLogStore = (*MockAuditLogStore)(nil)

// NewMockAuditLogStore creates a new mock store with initialized defaults.
func NewMockAuditLogStore() *MockAuditLogStore {
	return &MockAuditLogStore{}
}

// Append implements the AuditLogStore interface.
func (m *MockAuditLogStore) Append(ctx context.Context, entry *store.AuditEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, entry)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

// Entries returns a snapshot of everything appended so far.
func (m *MockAuditLogStore) Entries() []*store.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make([]*store.AuditEntry, len(m.entries))
	copy(snapshot, m.entries)
	return snapshot
}
