package store

import (
	"context"

	"github.com/google/uuid"
)

// MaterialCatalog is the boundary to the material collaborator. The progress
// engine only needs the subject label of a material to key the aggregate; it
// never dereferences material content, storage paths, or approval state.
type MaterialCatalog interface {
	// SubjectOf resolves a material ID to its subject label.
	// Returns ErrMaterialNotFound if the material does not exist.
	SubjectOf(ctx context.Context, materialID uuid.UUID) (string, error)
}
