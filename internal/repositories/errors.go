package repositories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/sbilibin2017/gw-marketplace/internal/logger"
)

var (
	// ErrConflict is returned when an insert or update violates a unique constraint.
	ErrConflict = errors.New("unique constraint violation")
	// ErrReferenceNotFound is returned when a foreign key points at a missing row.
	ErrReferenceNotFound = errors.New("referenced row does not exist")
)

// Foreign keys of the favorites table, named in schema.sql.
const (
	FavoritesPlaceConstraint = "favorites_place_id_fkey"
	FavoritesUserConstraint  = "favorites_user_id_fkey"
)

// ReferenceError is a foreign key violation. It matches ErrReferenceNotFound.
type ReferenceError struct {
	Constraint string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s", ErrReferenceNotFound, e.Constraint)
}

func (e *ReferenceError) Is(target error) bool {
	return target == ErrReferenceNotFound
}

// PostgreSQL error codes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var dialect = goqu.Dialect("postgres")

// translateError maps driver errors onto the package sentinels.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	case pgForeignKeyViolation:
		return &ReferenceError{Constraint: pgErr.ConstraintName}
	}
	return err
}

// logQuery logs a statement on a single line together with its outcome.
func logQuery(query string, args []any, result any, err error) {
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"result", result,
		"error", err,
	)
}

// stringArray converts nil to an empty array so NOT NULL text[] columns accept it.
func stringArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

// nullable unwraps an optional value for use as a query argument.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
