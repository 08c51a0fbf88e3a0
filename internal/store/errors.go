package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is the generic version of the entity-specific not found
	// errors (e.g., ErrProgressNotFound, ErrMaterialNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a second progress row for the same user and
	// subject).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrConflict is returned when an optimistic concurrency check fails:
	// the aggregate changed between read and write, so the caller must
	// re-read and retry the fold.
	ErrConflict = errors.New("concurrent update conflict")

	// ErrStorageFailure is returned when the durable store itself fails.
	// Callers may retry with backoff; the store does not mask outages by
	// retrying indefinitely on its own.
	ErrStorageFailure = errors.New("storage failure")

	// Entity-specific "not found" errors

	// ErrProgressNotFound indicates that no progress aggregate exists for the
	// requested (user, subject) pair.
	ErrProgressNotFound = fmt.Errorf("%w: progress", ErrNotFound)

	// ErrStudyRecordNotFound indicates that the requested study record does
	// not exist in the store.
	ErrStudyRecordNotFound = fmt.Errorf("%w: study record", ErrNotFound)

	// ErrMaterialNotFound indicates that a material ID could not be resolved
	// to a subject by the material catalog.
	ErrMaterialNotFound = fmt.Errorf("%w: material", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflictError checks if the error represents a lost optimistic
// concurrency race on an aggregate update.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsStorageError checks if the error represents a durable-store failure
// that a caller may retry with backoff.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "progress", "study_record")
	Operation string // The operation that failed (e.g., "append", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
