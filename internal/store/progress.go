package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyhub/studyhub-api/internal/domain"
)

// ProgressStore defines the interface for the keyed store of progress
// aggregates. Exactly one row exists per (userID, subject) pair; the unique
// constraint is enforced by the implementation.
//
// Update uses optimistic concurrency: the caller passes the UpdatedAt value
// it read, and the write succeeds only if the row still carries it. This
// keeps folds on different keys fully parallel while serializing the
// read-modify-write on a single key without any global lock.
type ProgressStore interface {
	// Get retrieves the aggregate for a (user, subject) pair.
	// Returns ErrProgressNotFound if no aggregate exists yet.
	Get(ctx context.Context, userID uuid.UUID, subject string) (*domain.Progress, error)

	// ListByUser retrieves all aggregates for a user, ordered by subject.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Progress, error)

	// ListBySubject retrieves all aggregates for a subject across users.
	ListBySubject(ctx context.Context, subject string) ([]*domain.Progress, error)

	// List retrieves every aggregate in the store. Analytics computations
	// operate on the snapshot this returns.
	List(ctx context.Context) ([]*domain.Progress, error)

	// Create inserts a new aggregate. Returns ErrDuplicate if an aggregate
	// for the (user, subject) pair already exists; a fold losing the
	// creation race treats that as a conflict and retries against the row
	// the winner wrote.
	Create(ctx context.Context, progress *domain.Progress) error

	// Update writes the aggregate using compare-and-swap on UpdatedAt.
	// expectedUpdatedAt must be the value read before computing the fold;
	// if the row no longer carries it, nothing is written and ErrConflict
	// is returned. Returns ErrProgressNotFound if the row does not exist.
	Update(ctx context.Context, progress *domain.Progress, expectedUpdatedAt time.Time) error

	// WithTx returns a ProgressStore bound to the given transaction.
	WithTx(tx *sql.Tx) ProgressStore
}
