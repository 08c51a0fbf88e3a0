package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// ProgressStore implements the store.ProgressStore interface using a
// PostgreSQL database as the storage backend. The progress table carries a
// unique constraint on (user_id, subject); updates are guarded by
// compare-and-swap on updated_at so concurrent folds on one key cannot
// overwrite each other's contribution.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. If logger is nil, a default logger will be used.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure ProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*ProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx
func (s *ProgressStore) WithTx(tx *sql.Tx) store.ProgressStore {
	return &ProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

const selectProgressColumns = `
	SELECT user_id, subject, percent, total_study_time, goal_hours, updated_at
	FROM progress`

// Get implements store.ProgressStore.Get
// Returns store.ErrProgressNotFound if no aggregate exists for the pair.
func (s *ProgressStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := selectProgressColumns + ` WHERE user_id = $1 AND subject = $2`

	var progress domain.Progress
	err := s.db.QueryRowContext(ctx, query, userID, subject).Scan(
		&progress.UserID,
		&progress.Subject,
		&progress.Percent,
		&progress.TotalStudyTime,
		&progress.GoalHours,
		&progress.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("subject", subject))
		return nil, MapError(err)
	}

	return &progress, nil
}

// ListByUser implements store.ProgressStore.ListByUser
func (s *ProgressStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Progress, error) {
	query := selectProgressColumns + ` WHERE user_id = $1 ORDER BY subject ASC`
	return s.listProgress(ctx, query, userID)
}

// ListBySubject implements store.ProgressStore.ListBySubject
func (s *ProgressStore) ListBySubject(
	ctx context.Context,
	subject string,
) ([]*domain.Progress, error) {
	query := selectProgressColumns + ` WHERE subject = $1 ORDER BY user_id ASC`
	return s.listProgress(ctx, query, subject)
}

// List implements store.ProgressStore.List
func (s *ProgressStore) List(ctx context.Context) ([]*domain.Progress, error) {
	query := selectProgressColumns + ` ORDER BY user_id ASC, subject ASC`
	return s.listProgress(ctx, query)
}

// Create implements store.ProgressStore.Create
// A unique violation on (user_id, subject) maps to store.ErrDuplicate; the
// fold treats that as a lost creation race and retries as an update.
func (s *ProgressStore) Create(ctx context.Context, progress *domain.Progress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("subject", progress.Subject))
		return err
	}

	query := `
		INSERT INTO progress (user_id, subject, percent, total_study_time, goal_hours, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.UserID,
		progress.Subject,
		progress.Percent,
		progress.TotalStudyTime,
		progress.GoalHours,
		progress.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("progress already exists for key",
				slog.String("user_id", progress.UserID.String()),
				slog.String("subject", progress.Subject))
			return store.ErrDuplicate
		}
		log.Error("failed to create progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("subject", progress.Subject))
		return MapError(err)
	}

	log.Info("progress created",
		slog.String("user_id", progress.UserID.String()),
		slog.String("subject", progress.Subject),
		slog.Float64("percent", progress.Percent))
	return nil
}

// Update implements store.ProgressStore.Update
// The WHERE clause carries the expected updated_at; zero affected rows with
// an existing row means another fold won the race, which surfaces as
// store.ErrConflict so the caller can re-read and retry.
func (s *ProgressStore) Update(
	ctx context.Context,
	progress *domain.Progress,
	expectedUpdatedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("progress validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("subject", progress.Subject))
		return err
	}

	query := `
		UPDATE progress
		SET percent = $1, total_study_time = $2, goal_hours = $3, updated_at = $4
		WHERE user_id = $5 AND subject = $6 AND updated_at = $7
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		progress.Percent,
		progress.TotalStudyTime,
		progress.GoalHours,
		progress.UpdatedAt,
		progress.UserID,
		progress.Subject,
		expectedUpdatedAt,
	)

	if err != nil {
		log.Error("failed to update progress",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()),
			slog.String("subject", progress.Subject))
		return MapError(err)
	}

	rowsAffected, err := affectedRows(result)
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("user_id", progress.UserID.String()))
		return err
	}

	if rowsAffected == 0 {
		// Either the row is gone or another fold moved updated_at.
		// Distinguish the two so callers retry only real conflicts.
		_, getErr := s.Get(ctx, progress.UserID, progress.Subject)
		if errors.Is(getErr, store.ErrProgressNotFound) {
			return store.ErrProgressNotFound
		}
		log.Debug("progress update lost optimistic concurrency race",
			slog.String("user_id", progress.UserID.String()),
			slog.String("subject", progress.Subject))
		return store.ErrConflict
	}

	log.Debug("progress updated",
		slog.String("user_id", progress.UserID.String()),
		slog.String("subject", progress.Subject),
		slog.Float64("percent", progress.Percent),
		slog.Int("total_study_time", progress.TotalStudyTime))
	return nil
}

func (s *ProgressStore) listProgress(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query progress rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	result := []*domain.Progress{}
	for rows.Next() {
		var progress domain.Progress
		err := rows.Scan(
			&progress.UserID,
			&progress.Subject,
			&progress.Percent,
			&progress.TotalStudyTime,
			&progress.GoalHours,
			&progress.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan progress row", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		result = append(result, &progress)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning progress rows", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return result, nil
}
