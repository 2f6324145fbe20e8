package rowstore

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Postgres error codes the client reacts to.
const (
	pgCodeUniqueViolation = "23505"
	pgCodeUndefinedTable  = "42P01"
)

var (
	// ErrNotFound reports that no row matched the filters.
	ErrNotFound = errors.New("rowstore: row not found")

	// ErrUniqueViolation reports an insert that hit a uniqueness
	// constraint. Callers racing to create the same row handle this
	// inline with a read-then-update fallback.
	ErrUniqueViolation = errors.New("rowstore: unique constraint violation")

	// ErrSchemaMissing reports that an expected table does not exist in
	// the row store. Surfaced with setup guidance rather than as a
	// generic failure.
	ErrSchemaMissing = errors.New("rowstore: expected table does not exist; run the schema migrations against the row store")
)

// classify maps driver errors onto the client's error taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeUniqueViolation:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
		case pgCodeUndefinedTable:
			return fmt.Errorf("%w (%s)", ErrSchemaMissing, pgErr.Message)
		}
	}

	// Some pooled drivers flatten the error; fall back to the message
	// pattern the store is known to emit.
	if msg := err.Error(); strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist") {
		return fmt.Errorf("%w (%s)", ErrSchemaMissing, msg)
	}

	return err
}

// IsNotFound reports whether err means no matching row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUniqueViolation reports whether err is a uniqueness conflict.
func IsUniqueViolation(err error) bool {
	return errors.Is(err, ErrUniqueViolation)
}

// IsSchemaMissing reports whether err means the schema has not been set up.
func IsSchemaMissing(err error) bool {
	return errors.Is(err, ErrSchemaMissing)
}
