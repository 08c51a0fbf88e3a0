// Package audit persists domain events into the append-only system log.
package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/studyhub/studyhub-api/internal/events"
	"github.com/studyhub/studyhub-api/internal/store"
)

// Recorder subscribes to audit events and writes one system log entry per
// event. It is registered on the event emitter at startup.
type Recorder struct {
	logStore store.AuditLogStore
	logger   *slog.Logger
}

var _ events.EventHandler = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to the given audit log store.
func NewRecorder(logStore store.AuditLogStore, logger *slog.Logger) *Recorder {
	if logStore == nil {
		panic("logStore cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Recorder{
		logStore: logStore,
		logger:   logger.With(slog.String("component", "audit_recorder")),
	}
}

// HandleEvent implements events.EventHandler. The event payload is stored
// verbatim as the entry detail.
func (r *Recorder) HandleEvent(ctx context.Context, event *events.AuditEvent) error {
	entry := &store.AuditEntry{
		ID:        event.ID,
		UserID:    event.UserID,
		Operation: event.Type,
		Detail:    string(event.Payload),
		CreatedAt: event.CreatedAt,
	}

	if err := r.logStore.Append(ctx, entry); err != nil {
		r.logger.Error("failed to append audit entry",
			slog.String("event_id", event.ID.String()),
			slog.String("operation", event.Type),
			slog.String("error", err.Error()))
		return fmt.Errorf("append audit entry: %w", err)
	}

	r.logger.Debug("recorded audit entry",
		slog.String("event_id", event.ID.String()),
		slog.String("operation", event.Type))
	return nil
}
