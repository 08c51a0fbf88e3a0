package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types recorded in the system log.
const (
	// TypeProgressUpdate is emitted after a study session folds into a
	// progress aggregate.
	TypeProgressUpdate = "PROGRESS_UPDATE"

	// TypeGoalUpdate is emitted after a goal change on an aggregate.
	TypeGoalUpdate = "GOAL_UPDATE"
)

// AuditEvent represents a domain operation worth recording in the system
// log. It carries the acting user and an operation-specific payload without
// direct dependencies on the audit package.
type AuditEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates the operation that occurred
	Type string `json:"type"`

	// UserID identifies the user the operation acted on
	UserID uuid.UUID `json:"user_id"`

	// Payload contains the operation-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *AuditEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewAuditEvent creates a new AuditEvent with the specified type, user and payload.
func NewAuditEvent(eventType string, userID uuid.UUID, payload interface{}) (*AuditEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &AuditEvent{
		ID:        uuid.New(),
		Type:      eventType,
		UserID:    userID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// ProgressUpdatePayload is the payload attached to a TypeProgressUpdate event.
type ProgressUpdatePayload struct {
	Subject        string  `json:"subject"`
	Percent        float64 `json:"percent"`
	TotalStudyTime int     `json:"total_study_time"`
	RecordID       string  `json:"record_id"`
}

// GoalUpdatePayload is the payload attached to a TypeGoalUpdate event.
type GoalUpdatePayload struct {
	Subject   string `json:"subject"`
	GoalHours int    `json:"goal_hours"`
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *AuditEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *AuditEvent) error
}
