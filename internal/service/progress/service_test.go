package progress_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyhub/studyhub-api/internal/audit"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/events"
	"github.com/studyhub/studyhub-api/internal/mocks"
	"github.com/studyhub/studyhub-api/internal/service/progress"
	"github.com/studyhub/studyhub-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixture bundles a service with the mock backends it runs on.
type fixture struct {
	svc      progress.Service
	tx       *mocks.MockTransactioner
	catalog  *mocks.MockMaterialCatalog
	auditLog *mocks.MockAuditLogStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tx := mocks.NewMockTransactioner()
	catalog := mocks.NewMockMaterialCatalog()
	auditLog := mocks.NewMockAuditLogStore()

	emitter := events.NewInMemoryEventEmitter(testLogger())
	emitter.RegisterHandler(audit.NewRecorder(auditLog, testLogger()))

	svc := progress.NewService(catalog, tx.Progress, tx, emitter, testLogger())
	return &fixture{svc: svc, tx: tx, catalog: catalog, auditLog: auditLog}
}

func session(materialID uuid.UUID, durationSeconds int, percent float64) progress.SessionInput {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	return progress.SessionInput{
		MaterialID:      materialID,
		StartTime:       start,
		EndTime:         start.Add(time.Duration(durationSeconds)*time.Second + time.Second),
		DurationSeconds: durationSeconds,
		ProgressPercent: percent,
	}
}

func TestSubmitSessionCreatesAggregate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 3600, 75))
	require.NoError(t, err)

	assert.Equal(t, userID, result.Record.UserID)
	assert.Equal(t, "math", result.Progress.Subject)
	assert.Equal(t, 75.0, result.Progress.Percent)
	assert.Equal(t, 60, result.Progress.TotalStudyTime)
	assert.Equal(t, 0, result.Progress.GoalHours)

	// The record landed in the event log.
	assert.Equal(t, 1, f.tx.Records.Len())

	// The fold was audited.
	entries := f.auditLog.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, events.TypeProgressUpdate, entries[0].Operation)
	assert.Equal(t, userID, entries[0].UserID)
}

func TestSubmitSessionFoldsIntoExistingAggregate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	_, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 3600, 75))
	require.NoError(t, err)

	// Percent is a high-water mark: a later session reporting less keeps 75.
	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 1800, 60))
	require.NoError(t, err)

	assert.Equal(t, 75.0, result.Progress.Percent)
	assert.Equal(t, 90, result.Progress.TotalStudyTime)
	assert.Equal(t, 2, f.tx.Records.Len())
}

func TestSubmitSessionRoundsDurationPerSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	// Two 90 second sessions round to 2 minutes each, not 3 in total.
	_, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 90, 10))
	require.NoError(t, err)
	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 90, 20))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Progress.TotalStudyTime)
}

func TestSubmitSessionUnknownMaterial(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.SubmitSession(context.Background(), uuid.New(), session(uuid.New(), 600, 50))
	assert.ErrorIs(t, err, progress.ErrMaterialNotFound)
	assert.Equal(t, 0, f.tx.Records.Len())
}

func TestSubmitSessionInvalidInput(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	t.Run("end before start", func(t *testing.T) {
		input := session(materialID, 600, 50)
		input.EndTime = input.StartTime.Add(-time.Minute)
		_, err := f.svc.SubmitSession(context.Background(), uuid.New(), input)
		assert.ErrorIs(t, err, domain.ErrInvalidTimeSpan)
	})

	t.Run("negative duration", func(t *testing.T) {
		input := session(materialID, 600, 50)
		input.DurationSeconds = -1
		_, err := f.svc.SubmitSession(context.Background(), uuid.New(), input)
		assert.ErrorIs(t, err, domain.ErrNegativeDuration)
	})

	t.Run("percent above hundred", func(t *testing.T) {
		_, err := f.svc.SubmitSession(context.Background(), uuid.New(), session(materialID, 600, 100.5))
		assert.ErrorIs(t, err, domain.ErrPercentOutOfRange)
	})

	// Nothing reached the log.
	assert.Equal(t, 0, f.tx.Records.Len())
}

func TestSubmitSessionRetriesOnConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	// Seed an existing aggregate so the fold takes the update path.
	seeded, err := domain.NewProgressFromRecord(mustRecord(t, userID, materialID, 600, 40), "math", time.Now().UTC())
	require.NoError(t, err)
	f.tx.Progress.Seed(seeded)

	// First update attempt loses the race, the retry goes through.
	calls := 0
	f.tx.Progress.UpdateFn = func(ctx context.Context, p *domain.Progress, expected time.Time) error {
		calls++
		if calls == 1 {
			return store.ErrConflict
		}
		f.tx.Progress.UpdateFn = nil
		return f.tx.Progress.Update(ctx, p, expected)
	}

	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 900, 80))
	require.NoError(t, err)

	assert.Equal(t, 80.0, result.Progress.Percent)
	assert.Equal(t, 25, result.Progress.TotalStudyTime)
	// The record is appended exactly once despite the retried transaction.
	assert.Equal(t, 1, f.tx.Records.Len())
}

func TestSubmitSessionConflictBudgetExhausted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	seeded, err := domain.NewProgressFromRecord(mustRecord(t, userID, materialID, 600, 40), "math", time.Now().UTC())
	require.NoError(t, err)
	f.tx.Progress.Seed(seeded)

	f.tx.Progress.UpdateFn = func(ctx context.Context, p *domain.Progress, expected time.Time) error {
		return store.ErrConflict
	}

	_, err = f.svc.SubmitSession(context.Background(), userID, session(materialID, 900, 80))
	assert.ErrorIs(t, err, progress.ErrConcurrentUpdate)
	assert.Equal(t, 3, f.tx.Progress.UpdateCalls)
}

func TestSubmitSessionCreationRaceRetriesAsUpdate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	// Simulate losing the creation race: the first Create hits the unique
	// constraint because a concurrent fold inserted the row in between.
	f.tx.Progress.CreateFn = func(ctx context.Context, p *domain.Progress) error {
		seeded, err := domain.NewProgressFromRecord(mustRecord(t, userID, materialID, 600, 40), "math", time.Now().UTC())
		require.NoError(t, err)
		f.tx.Progress.Seed(seeded)
		f.tx.Progress.CreateFn = nil
		return store.ErrDuplicate
	}

	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 900, 80))
	require.NoError(t, err)

	// The retry folded into the row the winner wrote.
	assert.Equal(t, 80.0, result.Progress.Percent)
	assert.Equal(t, 25, result.Progress.TotalStudyTime)
}

func TestSubmitSessionAuditFailureDoesNotFailFold(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	f.auditLog.AppendFn = func(ctx context.Context, entry *store.AuditEntry) error {
		return store.ErrStorageFailure
	}

	result, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 3600, 75))
	require.NoError(t, err)
	assert.Equal(t, 75.0, result.Progress.Percent)
}

func TestSubmitSessionConcurrentFoldsLoseNothing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	var wg sync.WaitGroup
	for _, durationSeconds := range []int{600, 900} {
		durationSeconds := durationSeconds
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, durationSeconds, 50))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := f.svc.GetProgress(context.Background(), userID, "math")
	require.NoError(t, err)
	assert.Equal(t, 25, final.TotalStudyTime)
	assert.Equal(t, 50.0, final.Percent)
	assert.Equal(t, 2, f.tx.Records.Len())
}

func TestSetGoal(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	materialID := uuid.New()
	f.catalog.Register(materialID, "math")

	_, err := f.svc.SubmitSession(context.Background(), userID, session(materialID, 3600, 75))
	require.NoError(t, err)

	updated, err := f.svc.SetGoal(context.Background(), userID, "math", 10)
	require.NoError(t, err)

	assert.Equal(t, 10, updated.GoalHours)
	// Percent and accumulated time are untouched.
	assert.Equal(t, 75.0, updated.Percent)
	assert.Equal(t, 60, updated.TotalStudyTime)

	// A goal change is audited alongside the fold.
	entries := f.auditLog.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, events.TypeGoalUpdate, entries[1].Operation)
}

func TestSetGoalValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.SetGoal(context.Background(), uuid.New(), "math", -1)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.SetGoal(context.Background(), uuid.New(), "", 5)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSetGoalMissingAggregate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.SetGoal(context.Background(), uuid.New(), "math", 5)
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
}

func TestGetProgressNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.svc.GetProgress(context.Background(), uuid.New(), "math")
	assert.ErrorIs(t, err, progress.ErrProgressNotFound)
}

func TestListProgress(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	userID := uuid.New()
	mathID, historyID := uuid.New(), uuid.New()
	f.catalog.Register(mathID, "math")
	f.catalog.Register(historyID, "history")

	_, err := f.svc.SubmitSession(context.Background(), userID, session(mathID, 3600, 75))
	require.NoError(t, err)
	_, err = f.svc.SubmitSession(context.Background(), userID, session(historyID, 1800, 30))
	require.NoError(t, err)

	list, err := f.svc.ListProgress(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	subjects := []string{list[0].Subject, list[1].Subject}
	assert.ElementsMatch(t, []string{"math", "history"}, subjects)
}

func TestNewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	tx := mocks.NewMockTransactioner()
	catalog := mocks.NewMockMaterialCatalog()

	assert.Panics(t, func() { progress.NewService(nil, tx.Progress, tx, nil, testLogger()) })
	assert.Panics(t, func() { progress.NewService(catalog, nil, tx, nil, testLogger()) })
	assert.Panics(t, func() { progress.NewService(catalog, tx.Progress, nil, nil, testLogger()) })
}

// mustRecord builds a valid study record for seeding aggregates.
func mustRecord(t *testing.T, userID, materialID uuid.UUID, durationSeconds int, percent float64) *domain.StudyRecord {
	t.Helper()
	start := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	record, err := domain.NewStudyRecord(
		userID, materialID,
		start, start.Add(time.Duration(durationSeconds)*time.Second+time.Second),
		durationSeconds, percent,
	)
	require.NoError(t, err)
	return record
}
