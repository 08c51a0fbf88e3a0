package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is one row in the system log. Audit writes are best-effort:
// a failure to record an entry never fails the operation being audited.
type AuditEntry struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Operation string
	Detail    string
	CreatedAt time.Time
}

// AuditLogStore defines the interface for the append-only system log.
type AuditLogStore interface {
	// Append writes one audit entry.
	Append(ctx context.Context, entry *AuditEntry) error
}
