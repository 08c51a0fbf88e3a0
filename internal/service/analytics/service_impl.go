package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/store"
)

// Cache is the optional read-through cache in front of the global variants
// of Distribution and TopProgress. Any cache error degrades to a recompute.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Cache keys for the global query variants.
const (
	cacheKeyDistribution = "analytics:distribution:global"
	cacheKeyTopFormat    = "analytics:top:%s:%d"
)

// distributionLabels fixes the bucket order of Distribution results.
var distributionLabels = [4]string{"0-25", "25-50", "50-75", "75-100"}

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	progressStore store.ProgressStore
	recordStore   store.StudyRecordStore
	location      *time.Location
	cache         Cache
	cacheTTL      time.Duration
	logger        *slog.Logger
}

// NewService creates an analytics Service. The reporting location buckets
// daily activity; nil falls back to UTC. The cache may be nil, and a
// non-positive TTL disables it as well.
func NewService(
	progressStore store.ProgressStore,
	recordStore store.StudyRecordStore,
	location *time.Location,
	cache Cache,
	cacheTTL time.Duration,
	log *slog.Logger,
) Service {
	if progressStore == nil {
		panic("progressStore cannot be nil")
	}
	if recordStore == nil {
		panic("recordStore cannot be nil")
	}
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}

	return &serviceImpl{
		progressStore: progressStore,
		recordStore:   recordStore,
		location:      location,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        log.With(slog.String("component", "analytics_service")),
	}
}

func (s *serviceImpl) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// Distribution implements Service.Distribution.
func (s *serviceImpl) Distribution(ctx context.Context, filter Filter) ([]DistributionBucket, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	useCache := s.cacheEnabled() && filter.global()
	if useCache {
		var cached []DistributionBucket
		if err := s.cache.Get(ctx, cacheKeyDistribution, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	buckets := make([]DistributionBucket, len(distributionLabels))
	for i, label := range distributionLabels {
		buckets[i] = DistributionBucket{Label: label}
	}
	for _, row := range rows {
		buckets[bucketIndex(row.Percent)].Count++
	}

	if useCache {
		if err := s.cache.Set(ctx, cacheKeyDistribution, buckets, s.cacheTTL); err != nil {
			log.Debug("failed to cache distribution", slog.String("error", err.Error()))
		}
	}
	return buckets, nil
}

// bucketIndex places a percent into its distribution band. The last band
// is closed so 100 lands in 75-100.
func bucketIndex(percent float64) int {
	switch {
	case percent < 25:
		return 0
	case percent < 50:
		return 1
	case percent < 75:
		return 2
	default:
		return 3
	}
}

// GoalCompletionRanking implements Service.GoalCompletionRanking.
func (s *serviceImpl) GoalCompletionRanking(ctx context.Context, filter Filter) ([]RankingEntry, error) {
	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make([]RankingEntry, 0, len(rows))
	for _, row := range rows {
		ratio, ok := row.GoalCompletionRatio()
		if !ok {
			continue
		}
		entries = append(entries, RankingEntry{
			UserID:         row.UserID,
			Subject:        row.Subject,
			Ratio:          ratio,
			TotalStudyTime: row.TotalStudyTime,
			GoalHours:      row.GoalHours,
			UpdatedAt:      row.UpdatedAt,
		})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Ratio != entries[j].Ratio {
			return entries[i].Ratio > entries[j].Ratio
		}
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})
	return entries, nil
}

// TopProgress implements Service.TopProgress.
func (s *serviceImpl) TopProgress(
	ctx context.Context,
	filter Filter,
	by SortKey,
	limit int,
) ([]*domain.Progress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !by.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSortKey, string(by))
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	cacheKey := fmt.Sprintf(cacheKeyTopFormat, by, limit)
	useCache := s.cacheEnabled() && filter.global()
	if useCache {
		var cached []*domain.Progress
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(rows, func(i, j int) bool {
		var a, b float64
		switch by {
		case SortByStudyTime:
			a, b = float64(rows[i].TotalStudyTime), float64(rows[j].TotalStudyTime)
		default:
			a, b = rows[i].Percent, rows[j].Percent
		}
		if a != b {
			return a > b
		}
		return rows[i].UpdatedAt.After(rows[j].UpdatedAt)
	})

	if len(rows) > limit {
		rows = rows[:limit]
	}

	if useCache {
		if err := s.cache.Set(ctx, cacheKey, rows, s.cacheTTL); err != nil {
			log.Debug("failed to cache top progress", slog.String("error", err.Error()))
		}
	}
	return rows, nil
}

// DailyActivity implements Service.DailyActivity.
func (s *serviceImpl) DailyActivity(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]DailyActivity, error) {
	records, err := s.loadRecords(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byDay := make(map[string]*DailyActivity)
	for _, record := range records {
		day := record.StartTime.In(s.location).Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DailyActivity{Day: day}
			byDay[day] = entry
		}
		entry.TotalDuration += record.DurationSeconds
		entry.SessionCount++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	series := make([]DailyActivity, 0, len(byDay))
	for _, entry := range byDay {
		series = append(series, *entry)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Day < series[j].Day
	})
	return series, nil
}

// AverageProgress implements Service.AverageProgress.
func (s *serviceImpl) AverageProgress(ctx context.Context, filter Filter) (*float64, error) {
	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var sum float64
	for _, row := range rows {
		sum += row.Percent
	}
	avg := sum / float64(len(rows))
	return &avg, nil
}

// SumStudyTime implements Service.SumStudyTime.
func (s *serviceImpl) SumStudyTime(ctx context.Context, filter Filter) (*int, error) {
	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var total int
	for _, row := range rows {
		total += row.TotalStudyTime
	}
	return &total, nil
}

// AverageSessionDuration implements Service.AverageSessionDuration.
func (s *serviceImpl) AverageSessionDuration(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) (*float64, error) {
	records, err := s.loadRecords(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	var sum int
	for _, record := range records {
		sum += record.DurationSeconds
	}
	avg := float64(sum) / float64(len(records))
	return &avg, nil
}

// SumDuration implements Service.SumDuration.
func (s *serviceImpl) SumDuration(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) (*int, error) {
	records, err := s.loadRecords(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}

	var total int
	for _, record := range records {
		total += record.DurationSeconds
	}
	return &total, nil
}

// SubjectOverview implements Service.SubjectOverview.
func (s *serviceImpl) SubjectOverview(ctx context.Context) ([]SubjectOverview, error) {
	rows, err := s.progressStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type acc struct {
		sum   float64
		count int
	}
	bySubject := make(map[string]*acc)
	for _, row := range rows {
		a, ok := bySubject[row.Subject]
		if !ok {
			a = &acc{}
			bySubject[row.Subject] = a
		}
		a.sum += row.Percent
		a.count++
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	overview := make([]SubjectOverview, 0, len(bySubject))
	for subject, a := range bySubject {
		overview = append(overview, SubjectOverview{
			Subject:        subject,
			AveragePercent: a.sum / float64(a.count),
			Learners:       a.count,
		})
	}
	sort.Slice(overview, func(i, j int) bool {
		if overview[i].AveragePercent != overview[j].AveragePercent {
			return overview[i].AveragePercent > overview[j].AveragePercent
		}
		return overview[i].Subject < overview[j].Subject
	})
	return overview, nil
}

// GoalReminders implements Service.GoalReminders.
func (s *serviceImpl) GoalReminders(ctx context.Context, userID *uuid.UUID) ([]*domain.Progress, error) {
	filter := Filter{UserID: userID}
	rows, err := s.loadAggregates(ctx, filter)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	behind := make([]*domain.Progress, 0)
	for _, row := range rows {
		if row.GoalHours > 0 && row.Percent < 50 {
			behind = append(behind, row)
		}
	}
	sort.SliceStable(behind, func(i, j int) bool {
		if behind[i].Percent != behind[j].Percent {
			return behind[i].Percent < behind[j].Percent
		}
		return behind[i].UpdatedAt.After(behind[j].UpdatedAt)
	})
	return behind, nil
}

// loadAggregates reads the progress rows a filter selects.
func (s *serviceImpl) loadAggregates(ctx context.Context, filter Filter) ([]*domain.Progress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		rows []*domain.Progress
		err  error
	)
	switch {
	case filter.UserID != nil:
		rows, err = s.progressStore.ListByUser(ctx, *filter.UserID)
	case filter.Subject != "":
		rows, err = s.progressStore.ListBySubject(ctx, filter.Subject)
	default:
		rows, err = s.progressStore.List(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	if filter.UserID != nil && filter.Subject != "" {
		narrowed := rows[:0]
		for _, row := range rows {
			if row.Subject == filter.Subject {
				narrowed = append(narrowed, row)
			}
		}
		rows = narrowed
	}
	return rows, nil
}

// loadRecords reads a user's study records in [start, end).
func (s *serviceImpl) loadRecords(
	ctx context.Context,
	userID uuid.UUID,
	start, end time.Time,
) ([]*domain.StudyRecord, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := s.recordStore.ListByUserAndTimeRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list study records: %w", err)
	}
	return records, nil
}
