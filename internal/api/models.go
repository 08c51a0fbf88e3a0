package api

import (
	"time"

	"github.com/studyhub/studyhub-api/internal/domain"
	"github.com/studyhub/studyhub-api/internal/service/progress"
)

// Common request/response structures

// SubmitSessionRequest defines the payload for the study session endpoint.
// Duration is reported by the client in seconds; progress is the percent
// the learner reached at the end of the session.
type SubmitSessionRequest struct {
	MaterialID      string    `json:"material_id"      validate:"required,uuid"`
	StartTime       time.Time `json:"start_time"       validate:"required"`
	EndTime         time.Time `json:"end_time"         validate:"required"`
	DurationSeconds int       `json:"duration_seconds" validate:"gte=0"`
	ProgressPercent float64   `json:"progress_percent" validate:"gte=0,lte=100"`
}

// SetGoalRequest defines the payload for the goal endpoint.
type SetGoalRequest struct {
	GoalHours int `json:"goal_hours" validate:"gte=0"`
}

// StudyRecordResponse represents one immutable study session record.
type StudyRecordResponse struct {
	ID              string    `json:"id"`
	MaterialID      string    `json:"material_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int       `json:"duration_seconds"`
	ProgressPercent float64   `json:"progress_percent"`
}

// ProgressResponse represents one progress aggregate.
type ProgressResponse struct {
	UserID         string    `json:"user_id"`
	Subject        string    `json:"subject"`
	Percent        float64   `json:"percent"`
	TotalStudyTime int       `json:"total_study_time"`
	GoalHours      int       `json:"goal_hours"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SubmitSessionResponse bundles the stored record with the aggregate state
// after the fold.
type SubmitSessionResponse struct {
	Record   StudyRecordResponse `json:"record"`
	Progress ProgressResponse    `json:"progress"`
}

// SummaryResponse carries the aggregate statistics for a filter. Nil fields
// mean the filter matched nothing, which is distinct from zero.
type SummaryResponse struct {
	AveragePercent *float64 `json:"average_percent"`
	TotalStudyTime *int     `json:"total_study_time"`
}

// ActivitySummaryResponse carries session statistics over a time range.
type ActivitySummaryResponse struct {
	TotalDurationSeconds  *int     `json:"total_duration_seconds"`
	AverageSessionSeconds *float64 `json:"average_session_seconds"`
}

func recordToResponse(record *domain.StudyRecord) StudyRecordResponse {
	return StudyRecordResponse{
		ID:              record.ID.String(),
		MaterialID:      record.MaterialID.String(),
		StartTime:       record.StartTime,
		EndTime:         record.EndTime,
		DurationSeconds: record.DurationSeconds,
		ProgressPercent: record.ProgressPercent,
	}
}

func progressToResponse(p *domain.Progress) ProgressResponse {
	return ProgressResponse{
		UserID:         p.UserID.String(),
		Subject:        p.Subject,
		Percent:        p.Percent,
		TotalStudyTime: p.TotalStudyTime,
		GoalHours:      p.GoalHours,
		UpdatedAt:      p.UpdatedAt,
	}
}

func progressListToResponse(list []*domain.Progress) []ProgressResponse {
	responses := make([]ProgressResponse, 0, len(list))
	for _, p := range list {
		responses = append(responses, progressToResponse(p))
	}
	return responses
}

func submitResultToResponse(result *progress.SubmitResult) SubmitSessionResponse {
	return SubmitSessionResponse{
		Record:   recordToResponse(result.Record),
		Progress: progressToResponse(result.Progress),
	}
}
