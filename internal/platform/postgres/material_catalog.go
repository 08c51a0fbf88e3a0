package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// MaterialCatalog implements store.MaterialCatalog against the material
// table owned by the upload subsystem. Only the subject column is read;
// everything else about a material belongs to that collaborator.
type MaterialCatalog struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewMaterialCatalog creates a PostgreSQL-backed material catalog lookup.
func NewMaterialCatalog(db store.DBTX, logger *slog.Logger) *MaterialCatalog {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &MaterialCatalog{
		db:     db,
		logger: logger.With(slog.String("component", "material_catalog")),
	}
}

// Ensure MaterialCatalog implements store.MaterialCatalog interface
var _ store.MaterialCatalog = (*MaterialCatalog)(nil)

// SubjectOf implements store.MaterialCatalog.SubjectOf
// Returns store.ErrMaterialNotFound if the material does not exist.
func (c *MaterialCatalog) SubjectOf(ctx context.Context, materialID uuid.UUID) (string, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	var subject string
	err := c.db.QueryRowContext(
		ctx,
		`SELECT subject FROM material WHERE id = $1`,
		materialID,
	).Scan(&subject)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("material not found", slog.String("material_id", materialID.String()))
			return "", store.ErrMaterialNotFound
		}
		log.Error("failed to resolve material subject",
			slog.String("error", err.Error()),
			slog.String("material_id", materialID.String()))
		return "", MapError(err)
	}

	return subject, nil
}
