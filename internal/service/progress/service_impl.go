package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/events"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// maxFoldAttempts bounds the optimistic concurrency retry loop. Each retry
// re-reads the aggregate, so losing the race once costs one extra round trip.
const maxFoldAttempts = 3

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	catalog       store.MaterialCatalog
	progressStore store.ProgressStore
	txManager     store.Transactioner
	emitter       events.EventEmitter
	logger        *slog.Logger
	timeFunc      func() time.Time // Injectable for testing
}

// NewService creates a progress Service. The emitter may be nil, in which
// case no audit events are published.
func NewService(
	catalog store.MaterialCatalog,
	progressStore store.ProgressStore,
	txManager store.Transactioner,
	emitter events.EventEmitter,
	log *slog.Logger,
) Service {
	if catalog == nil {
		panic("catalog cannot be nil")
	}
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if txManager == nil {
		panic("txManager cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		catalog:       catalog,
		progressStore: progressStore,
		txManager:     txManager,
		emitter:       emitter,
		logger:        log.With(slog.String("component", "progress_service")),
		timeFunc:      func() time.Time { return time.Now().UTC() },
	}
}

// SubmitSession implements Service.SubmitSession.
func (s *serviceImpl) SubmitSession(
	ctx context.Context,
	userID uuid.UUID,
	input SessionInput,
) (*SubmitResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	record, err := domain.NewStudyRecord(
		userID,
		input.MaterialID,
		input.StartTime,
		input.EndTime,
		input.DurationSeconds,
		input.ProgressPercent,
	)
	if err != nil {
		log.Warn("rejected invalid study session",
			slog.String("user_id", userID.String()),
			slog.String("material_id", input.MaterialID.String()),
			slog.String("error", err.Error()))
		return nil, err
	}

	subject, err := s.catalog.SubjectOf(ctx, input.MaterialID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Warn("session references unknown material",
				slog.String("user_id", userID.String()),
				slog.String("material_id", input.MaterialID.String()))
			return nil, ErrMaterialNotFound
		}
		log.Error("failed to resolve material subject",
			slog.String("material_id", input.MaterialID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to resolve material subject: %w", err)
	}

	var folded *domain.Progress
	for attempt := 1; attempt <= maxFoldAttempts; attempt++ {
		err = s.txManager.InTransaction(
			ctx,
			func(ctx context.Context, records store.StudyRecordStore, progressStore store.ProgressStore) error {
				if appendErr := records.Append(ctx, record); appendErr != nil {
					// A duplicate on retry is our own record from an
					// attempt whose aggregate write lost the race under a
					// backend that does not roll partial writes back.
					if !(attempt > 1 && errors.Is(appendErr, store.ErrDuplicate)) {
						return fmt.Errorf("failed to append study record: %w", appendErr)
					}
				}

				next, foldErr := s.foldRecord(ctx, progressStore, userID, subject, record)
				if foldErr != nil {
					return foldErr
				}
				folded = next
				return nil
			},
		)
		if err == nil {
			break
		}
		if store.IsConflictError(err) && attempt < maxFoldAttempts {
			log.Debug("fold lost concurrency race, retrying",
				slog.String("user_id", userID.String()),
				slog.String("subject", subject),
				slog.Int("attempt", attempt))
			continue
		}
		break
	}

	if err != nil {
		if store.IsConflictError(err) {
			log.Warn("fold retry budget exhausted",
				slog.String("user_id", userID.String()),
				slog.String("subject", subject))
			return nil, ErrConcurrentUpdate
		}
		log.Error("failed to submit study session",
			slog.String("user_id", userID.String()),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to submit study session: %w", err)
	}

	log.Info("study session folded into progress",
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Float64("percent", folded.Percent),
		slog.Int("total_study_time", folded.TotalStudyTime))

	s.emitProgressUpdate(ctx, userID, record, folded)

	return &SubmitResult{Record: record, Progress: folded}, nil
}

// foldRecord applies one study record to the (userID, subject) aggregate,
// creating it when absent. Conflicts surface as store.ErrConflict for the
// caller's retry loop.
func (s *serviceImpl) foldRecord(
	ctx context.Context,
	progressStore store.ProgressStore,
	userID uuid.UUID,
	subject string,
	record *domain.StudyRecord,
) (*domain.Progress, error) {
	now := s.timeFunc()

	current, err := progressStore.Get(ctx, userID, subject)
	if err != nil {
		if !store.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to read progress: %w", err)
		}

		created, newErr := domain.NewProgressFromRecord(record, subject, now)
		if newErr != nil {
			return nil, fmt.Errorf("failed to build progress from record: %w", newErr)
		}
		if createErr := progressStore.Create(ctx, created); createErr != nil {
			// Losing the creation race means another fold inserted the row
			// first; retry as an update against the winner's state.
			if errors.Is(createErr, store.ErrDuplicate) {
				return nil, store.ErrConflict
			}
			return nil, fmt.Errorf("failed to create progress: %w", createErr)
		}
		return created, nil
	}

	next := current.WithRecord(record, now)
	if updateErr := progressStore.Update(ctx, next, current.UpdatedAt); updateErr != nil {
		if store.IsConflictError(updateErr) {
			return nil, updateErr
		}
		return nil, fmt.Errorf("failed to update progress: %w", updateErr)
	}
	return next, nil
}

// SetGoal implements Service.SetGoal.
func (s *serviceImpl) SetGoal(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
	hours int,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if hours < 0 {
		return nil, fmt.Errorf("%w: goal hours cannot be negative", domain.ErrValidation)
	}
	if subject == "" {
		return nil, fmt.Errorf("%w: subject cannot be empty", domain.ErrValidation)
	}

	var updated *domain.Progress
	var err error
	for attempt := 1; attempt <= maxFoldAttempts; attempt++ {
		var current *domain.Progress
		current, err = s.progressStore.Get(ctx, userID, subject)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, ErrProgressNotFound
			}
			return nil, fmt.Errorf("failed to read progress: %w", err)
		}

		next := current.WithGoal(hours, s.timeFunc())
		err = s.progressStore.Update(ctx, next, current.UpdatedAt)
		if err == nil {
			updated = next
			break
		}
		if store.IsConflictError(err) && attempt < maxFoldAttempts {
			log.Debug("goal update lost concurrency race, retrying",
				slog.String("user_id", userID.String()),
				slog.String("subject", subject),
				slog.Int("attempt", attempt))
			continue
		}
		break
	}

	if err != nil {
		if store.IsConflictError(err) {
			return nil, ErrConcurrentUpdate
		}
		if store.IsNotFoundError(err) {
			return nil, ErrProgressNotFound
		}
		log.Error("failed to set goal",
			slog.String("user_id", userID.String()),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to set goal: %w", err)
	}

	log.Info("goal updated",
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Int("goal_hours", hours))

	s.emitGoalUpdate(ctx, userID, updated)

	return updated, nil
}

// GetProgress implements Service.GetProgress.
func (s *serviceImpl) GetProgress(
	ctx context.Context,
	userID uuid.UUID,
	subject string,
) (*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	current, err := s.progressStore.Get(ctx, userID, subject)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrProgressNotFound
		}
		log.Error("failed to get progress",
			slog.String("user_id", userID.String()),
			slog.String("subject", subject),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return current, nil
}

// ListProgress implements Service.ListProgress.
func (s *serviceImpl) ListProgress(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	list, err := s.progressStore.ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list progress",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	return list, nil
}

// emitProgressUpdate publishes the audit event for a completed fold.
// Emission is best-effort; failures are logged and never propagate.
func (s *serviceImpl) emitProgressUpdate(
	ctx context.Context,
	userID uuid.UUID,
	record *domain.StudyRecord,
	folded *domain.Progress,
) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewAuditEvent(events.TypeProgressUpdate, userID, events.ProgressUpdatePayload{
		Subject:        folded.Subject,
		Percent:        folded.Percent,
		TotalStudyTime: folded.TotalStudyTime,
		RecordID:       record.ID.String(),
	})
	if err != nil {
		log.Warn("failed to build progress update event",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit progress update event",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}

// emitGoalUpdate publishes the audit event for a goal change, best-effort.
func (s *serviceImpl) emitGoalUpdate(ctx context.Context, userID uuid.UUID, updated *domain.Progress) {
	if s.emitter == nil {
		return
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewAuditEvent(events.TypeGoalUpdate, userID, events.GoalUpdatePayload{
		Subject:   updated.Subject,
		GoalHours: updated.GoalHours,
	})
	if err != nil {
		log.Warn("failed to build goal update event",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return
	}
	if err := s.emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit goal update event",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
	}
}
