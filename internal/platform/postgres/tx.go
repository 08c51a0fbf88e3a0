package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/studyhub/studyhub-api/internal/store"
)

// TxManager implements store.Transactioner over a real database. Each fold
// runs its record append and aggregate write inside one transaction, so a
// failed fold leaves both stores exactly as they were.
type TxManager struct {
	db       *sql.DB
	records  *StudyRecordStore
	progress *ProgressStore
}

// NewTxManager creates a TxManager that hands transaction-bound store
// instances to fold callbacks.
func NewTxManager(db *sql.DB, logger *slog.Logger) *TxManager {
	if db == nil {
		panic("db cannot be nil")
	}

	return &TxManager{
		db:       db,
		records:  NewStudyRecordStore(db, logger),
		progress: NewProgressStore(db, logger),
	}
}

// Ensure TxManager implements store.Transactioner interface
var _ store.Transactioner = (*TxManager)(nil)

// InTransaction implements store.Transactioner.InTransaction
func (m *TxManager) InTransaction(
	ctx context.Context,
	fn func(ctx context.Context, records store.StudyRecordStore, progress store.ProgressStore) error,
) error {
	return store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, m.records.WithTx(tx), m.progress.WithTx(tx))
	})
}
