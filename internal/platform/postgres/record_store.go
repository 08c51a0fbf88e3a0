package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// StudyRecordStore implements the store.StudyRecordStore interface using a
// PostgreSQL database as the storage backend. The study_record table has no
// UPDATE or DELETE path in this package.
type StudyRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewStudyRecordStore creates a new PostgreSQL implementation of the
// StudyRecordStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewStudyRecordStore(db store.DBTX, logger *slog.Logger) *StudyRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &StudyRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_record_store")),
	}
}

// Ensure StudyRecordStore implements store.StudyRecordStore interface
var _ store.StudyRecordStore = (*StudyRecordStore)(nil)

// WithTx implements store.StudyRecordStore.WithTx
func (s *StudyRecordStore) WithTx(tx *sql.Tx) store.StudyRecordStore {
	return &StudyRecordStore{
		db:     tx,
		logger: s.logger,
	}
}

// Append implements store.StudyRecordStore.Append
// It validates the record and inserts it; the event log accepts no other
// kind of write.
func (s *StudyRecordStore) Append(ctx context.Context, record *domain.StudyRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("study record validation failed during append",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	query := `
		INSERT INTO study_record (id, user_id, material_id, start_time, end_time, duration_seconds, progress_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.MaterialID,
		record.StartTime,
		record.EndTime,
		record.DurationSeconds,
		record.ProgressPercent,
		record.CreatedAt,
	)

	if err != nil {
		log.Error("failed to append study record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()),
			slog.String("user_id", record.UserID.String()))
		return MapError(err)
	}

	log.Debug("study record appended",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", record.UserID.String()),
		slog.Int("duration_seconds", record.DurationSeconds))
	return nil
}

// GetByID implements store.StudyRecordStore.GetByID
// Returns store.ErrStudyRecordNotFound if the record does not exist.
func (s *StudyRecordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudyRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectRecordColumns + ` WHERE id = $1`

	record, err := s.scanRecord(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrStudyRecordNotFound
		}
		log.Error("failed to get study record by ID",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return nil, MapError(err)
	}

	return record, nil
}

// ListByUser implements store.StudyRecordStore.ListByUser
func (s *StudyRecordStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.StudyRecord, error) {
	query := selectRecordColumns + ` WHERE user_id = $1 ORDER BY start_time ASC`
	return s.listRecords(ctx, query, userID)
}

// ListByMaterial implements store.StudyRecordStore.ListByMaterial
func (s *StudyRecordStore) ListByMaterial(
	ctx context.Context,
	materialID uuid.UUID,
) ([]*domain.StudyRecord, error) {
	query := selectRecordColumns + ` WHERE material_id = $1 ORDER BY start_time ASC`
	return s.listRecords(ctx, query, materialID)
}

// ListByTimeRange implements store.StudyRecordStore.ListByTimeRange
// The range is half-open: records with start_time in [start, end).
func (s *StudyRecordStore) ListByTimeRange(
	ctx context.Context,
	start, end time.Time,
) ([]*domain.StudyRecord, error) {
	query := selectRecordColumns + ` WHERE start_time >= $1 AND start_time < $2 ORDER BY start_time ASC`
	return s.listRecords(ctx, query, start, end)
}

// ListByUserAndTimeRange implements store.StudyRecordStore.ListByUserAndTimeRange
func (s *StudyRecordStore) ListByUserAndTimeRange(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*domain.StudyRecord, error) {
	query := selectRecordColumns + ` WHERE user_id = $1 AND start_time >= $2 AND start_time < $3 ORDER BY start_time ASC`
	return s.listRecords(ctx, query, userID, start, end)
}

const selectRecordColumns = `
	SELECT id, user_id, material_id, start_time, end_time, duration_seconds, progress_percent, created_at
	FROM study_record`

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func (s *StudyRecordStore) scanRecord(row rowScanner) (*domain.StudyRecord, error) {
	var record domain.StudyRecord
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.MaterialID,
		&record.StartTime,
		&record.EndTime,
		&record.DurationSeconds,
		&record.ProgressPercent,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *StudyRecordStore) listRecords(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.StudyRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query study records", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	records := []*domain.StudyRecord{}
	for rows.Next() {
		record, err := s.scanRecord(rows)
		if err != nil {
			log.Error("failed to scan study record row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning study record rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return records, nil
}
