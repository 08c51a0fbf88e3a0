package postgres

import (
	"context"
	"log/slog"

	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// AuditLogStore implements store.AuditLogStore against the system_log
// table. Callers treat failures as non-fatal; this store still reports them
// so the audit recorder can log the miss.
type AuditLogStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAuditLogStore creates a PostgreSQL-backed audit log.
func NewAuditLogStore(db store.DBTX, logger *slog.Logger) *AuditLogStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &AuditLogStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_log_store")),
	}
}

// Ensure AuditLogStore implements store.AuditLogStore interface
var _ store.AuditLogStore = (*AuditLogStore)(nil)

// Append implements store.AuditLogStore.Append
func (s *AuditLogStore) Append(ctx context.Context, entry *store.AuditEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO system_log (id, user_id, operation, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.Operation,
		entry.Detail,
		entry.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append audit entry",
			slog.String("error", err.Error()),
			slog.String("operation", entry.Operation))
		return MapError(err)
	}

	return nil
}
