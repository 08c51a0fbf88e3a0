package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/store"
)

// MockMaterialCatalog implements store.MaterialCatalog for testing.
type MockMaterialCatalog struct {
	// SubjectOfFn overrides the default map lookup when set.
	SubjectOfFn func(ctx context.Context, materialID uuid.UUID) (string, error)

	mu       sync.Mutex
	subjects map[uuid.UUID]string
}

var _ store.MaterialCatalog = (*MockMaterialCatalog)(nil)

// NewMockMaterialCatalog creates a new mock catalog with initialized defaults.
func NewMockMaterialCatalog() *MockMaterialCatalog {
	return &MockMaterialCatalog{
		subjects: make(map[uuid.UUID]string),
	}
}

// Register maps a material ID to a subject label.
func (m *MockMaterialCatalog) Register(materialID uuid.UUID, subject string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[materialID] = subject
}

// SubjectOf implements the MaterialCatalog interface.
func (m *MockMaterialCatalog) SubjectOf(ctx context.Context, materialID uuid.UUID) (string, error) {
	if m.SubjectOfFn != nil {
		return m.SubjectOfFn(ctx, materialID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	subject, exists := m.subjects[materialID]
	if !exists {
		return "", store.ErrMaterialNotFound
	}
	return subject, nil
}
