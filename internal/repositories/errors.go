// Package repositories holds the bun queries behind the importer and the
// query API. Functions take bun.IDB so they run inside or outside a
// transaction.
package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrUnresolved means an upsert returned no id and the natural-key
	// lookup found nothing either.
	ErrUnresolved = errors.New("entity could not be resolved")
	// ErrConstraint wraps integrity violations reported by the database.
	ErrConstraint = errors.New("constraint violation")
	// ErrUnknownSessionType rejects session codes outside the vocabulary.
	ErrUnknownSessionType = errors.New("unknown session type")
	// ErrNotFound is returned by single-row reads.
	ErrNotFound = errors.New("not found")
)

// classify maps driver-specific integrity errors onto ErrConstraint.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}
	// sqliteshim hides the driver error type; both SQLite drivers report
	// "... constraint failed".
	if strings.Contains(err.Error(), "constraint failed") {
		return fmt.Errorf("%s: %w: %w", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
