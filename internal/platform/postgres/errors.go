package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/studyhub/studyhub-api/internal/store"
)

// PostgreSQL error codes
const (
	// uniqueViolationCode is the PostgreSQL error code for unique constraint violations
	uniqueViolationCode = "23505"

	// foreignKeyViolationCode is the PostgreSQL error code for foreign key violations
	foreignKeyViolationCode = "23503"

	// checkViolationCode is the PostgreSQL error code for check constraint violations
	checkViolationCode = "23514"

	// notNullViolationCode is the PostgreSQL error code for not null violations
	notNullViolationCode = "23502"

	// serializationFailureCode is the PostgreSQL error code for serialization
	// failures between concurrent transactions
	serializationFailureCode = "40001"
)

// MapError maps a database error to the store-level error taxonomy.
// It wraps the original error to preserve context for debugging.
// All database operations in this package route errors through here so
// callers can classify failures with errors.Is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case serializationFailureCode:
			return fmt.Errorf("%w: %v", store.ErrConflict, err)
		case foreignKeyViolationCode:
			return fmt.Errorf(
				"%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case checkViolationCode:
			return fmt.Errorf(
				"%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ConstraintName,
				err,
			)
		case notNullViolationCode:
			return fmt.Errorf(
				"%w: not null violation (%s): %v",
				store.ErrInvalidEntity,
				pgErr.ColumnName,
				err,
			)
		}
	}

	// Anything else from the driver is a durable-store failure the caller
	// may retry with backoff.
	return fmt.Errorf("%w: %v", store.ErrStorageFailure, err)
}

// IsUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation, used to detect a lost aggregate-creation race.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// affectedRows extracts the row count from an exec result, mapping driver
// failures into the store taxonomy. Callers interpret a zero count
// themselves since its meaning depends on the statement.
func affectedRows(result sql.Result) (int64, error) {
	if result == nil {
		return 0, fmt.Errorf("%w: nil exec result", store.ErrStorageFailure)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, MapError(err)
	}

	return rowsAffected, nil
}
