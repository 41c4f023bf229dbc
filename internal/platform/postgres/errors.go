package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/studyhall/internal/store"
)

// PostgreSQL error codes
const (
	// undefinedTableCode is returned when migrations have not been applied
	undefinedTableCode = "42P01"

	// invalidTextRepresentationCode is returned when a value is not valid JSON
	invalidTextRepresentationCode = "22P02"
)

// ErrSchemaMissing is returned when the library table does not exist yet.
var ErrSchemaMissing = errors.New("library schema missing; run migrations")

// MapError maps a database error to an appropriate store error, wrapping
// the original error to preserve context.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrKeyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case undefinedTableCode:
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		case invalidTextRepresentationCode:
			return fmt.Errorf("%w: invalid collection encoding: %v", store.ErrInvalidEntity, err)
		}
	}

	return err
}
