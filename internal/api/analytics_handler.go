package api

import (
	"log/slog"
	"net/http"

	"github.com/studyhub/studyhub-api/internal/api/shared"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/service/analytics"
)

// defaultTopLimit applies when a top progress query names no limit.
const defaultTopLimit = 10

// AnalyticsHandler handles read-side analytics requests.
type AnalyticsHandler struct {
	analyticsService analytics.Service
	logger           *slog.Logger
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService analytics.Service, log *slog.Logger) *AnalyticsHandler {
	if analyticsService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("analyticsService cannot be nil for AnalyticsHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AnalyticsHandler")
	}

	return &AnalyticsHandler{
		analyticsService: analyticsService,
		logger:           log.With(slog.String("component", "analytics_handler")),
	}
}

// filterFromQuery builds an analytics filter from the optional user_id and
// subject query parameters.
func filterFromQuery(r *http.Request) (analytics.Filter, error) {
	userID, err := getQueryUUID(r, "user_id")
	if err != nil {
		return analytics.Filter{}, err
	}
	return analytics.Filter{
		UserID:  userID,
		Subject: r.URL.Query().Get("subject"),
	}, nil
}

// GetDistribution handles GET /analytics/distribution requests. It returns
// the four-band completion distribution, optionally narrowed by user_id and
// subject query parameters.
func (h *AnalyticsHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	buckets, err := h.analyticsService.Distribution(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute distribution")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, buckets)
}

// GetGoalRanking handles GET /analytics/goal-ranking requests.
func (h *AnalyticsHandler) GetGoalRanking(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	ranking, err := h.analyticsService.GoalCompletionRanking(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute goal ranking")
		return
	}
	if ranking == nil {
		ranking = []analytics.RankingEntry{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ranking)
}

// GetTopProgress handles GET /analytics/top requests. The sort key comes from
// the by query parameter (percent or study_time, default percent) and the
// result size from limit.
func (h *AnalyticsHandler) GetTopProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	filter, err := filterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	by := analytics.SortKey(r.URL.Query().Get("by"))
	if by == "" {
		by = analytics.SortByPercent
	}

	limit, err := getQueryLimit(r, defaultTopLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	top, err := h.analyticsService.TopProgress(r.Context(), filter, by, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("top progress computed",
		slog.String("by", string(by)),
		slog.Int("limit", limit),
		slog.Int("count", len(top)))
	shared.RespondWithJSON(w, r, http.StatusOK, progressListToResponse(top))
}

// GetDailyActivity handles GET /analytics/activity requests. It returns the
// authenticated user's per-day study totals over [start, end).
func (h *AnalyticsHandler) GetDailyActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	start, end, err := getQueryTimeRange(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	activity, err := h.analyticsService.DailyActivity(r.Context(), userID, start, end)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute daily activity")
		return
	}
	if activity == nil {
		activity = []analytics.DailyActivity{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, activity)
}

// GetSummary handles GET /analytics/summary requests. It reports the average
// completion percent and total study minutes over matching aggregates; both
// fields are null when nothing matches the filter.
func (h *AnalyticsHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	avg, err := h.analyticsService.AverageProgress(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute summary")
		return
	}
	total, err := h.analyticsService.SumStudyTime(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SummaryResponse{
		AveragePercent: avg,
		TotalStudyTime: total,
	})
}

// GetActivitySummary handles GET /analytics/activity/summary requests. It
// reports the authenticated user's total and average session duration over
// [start, end); both fields are null when the user has no sessions there.
func (h *AnalyticsHandler) GetActivitySummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	start, end, err := getQueryTimeRange(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	total, err := h.analyticsService.SumDuration(r.Context(), userID, start, end)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute activity summary")
		return
	}
	avg, err := h.analyticsService.AverageSessionDuration(r.Context(), userID, start, end)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute activity summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ActivitySummaryResponse{
		TotalDurationSeconds:  total,
		AverageSessionSeconds: avg,
	})
}

// GetSubjectOverview handles GET /analytics/subjects requests.
func (h *AnalyticsHandler) GetSubjectOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.analyticsService.SubjectOverview(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute subject overview")
		return
	}
	if overview == nil {
		overview = []analytics.SubjectOverview{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, overview)
}

// GetGoalReminders handles GET /analytics/reminders requests. It returns
// aggregates with a goal set that sit below half completion, optionally
// narrowed by the user_id query parameter.
func (h *AnalyticsHandler) GetGoalReminders(w http.ResponseWriter, r *http.Request) {
	userID, err := getQueryUUID(r, "user_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	reminders, err := h.analyticsService.GoalReminders(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute goal reminders")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressListToResponse(reminders))
}
