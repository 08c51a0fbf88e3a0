package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/api/shared"
	"github.com/studyhub/studyhub-api/internal/platform/logger"
	"github.com/studyhub/studyhub-api/internal/service/progress"
)

// ProgressHandler handles study session and progress aggregate requests.
type ProgressHandler struct {
	progressService progress.Service
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler
func NewProgressHandler(progressService progress.Service, log *slog.Logger) *ProgressHandler {
	if progressService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progressService cannot be nil for ProgressHandler")
	}
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          log.With(slog.String("component", "progress_handler")),
	}
}

// SubmitSession handles POST /study-sessions requests. It records a finished
// study session for the authenticated user and returns the folded aggregate.
func (h *ProgressHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req SubmitSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode session request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("session request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	// Format is covered by the uuid validation tag above.
	materialID, err := uuid.Parse(req.MaterialID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid material ID format")
		return
	}

	input := progress.SessionInput{
		MaterialID:      materialID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		DurationSeconds: req.DurationSeconds,
		ProgressPercent: req.ProgressPercent,
	}

	result, err := h.progressService.SubmitSession(r.Context(), userID, input)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("study session recorded",
		slog.String("user_id", userID.String()),
		slog.String("record_id", result.Record.ID.String()),
		slog.String("subject", result.Progress.Subject))
	shared.RespondWithJSON(w, r, http.StatusCreated, submitResultToResponse(result))
}

// ListProgress handles GET /progress requests. It returns every progress
// aggregate of the authenticated user, ordered by subject.
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	list, err := h.progressService.ListProgress(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list progress")
		return
	}

	log.Debug("listed progress",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(list)))
	shared.RespondWithJSON(w, r, http.StatusOK, progressListToResponse(list))
}

// GetProgress handles GET /progress/{subject} requests.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	subject, err := getPathSubject(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	p, err := h.progressService.GetProgress(r.Context(), userID, subject)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(p))
}

// SetGoal handles PUT /progress/{subject}/goal requests. The aggregate must
// already exist; a goal cannot create one.
func (h *ProgressHandler) SetGoal(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	subject, err := getPathSubject(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SetGoalRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode goal request", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		log.Debug("goal request failed validation", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	p, err := h.progressService.SetGoal(r.Context(), userID, subject, req.GoalHours)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("goal updated",
		slog.String("user_id", userID.String()),
		slog.String("subject", subject),
		slog.Int("goal_hours", req.GoalHours))
	shared.RespondWithJSON(w, r, http.StatusOK, progressToResponse(p))
}
