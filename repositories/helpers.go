package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx so repositories can
// join a transaction owned by the service layer.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ConstraintViolationError identifies the relationship behind a uniqueness
// or restrict-delete breach. Never swallowed: services either translate it
// to their own sentinel or pass it through.
type ConstraintViolationError struct {
	Relationship string // e.g. "tenants.activity_id"
	Constraint   string // DB constraint name, if known
}

func (e *ConstraintViolationError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("constraint violation on %s (%s)", e.Relationship, e.Constraint)
	}
	return fmt.Sprintf("constraint violation on %s", e.Relationship)
}

func constraintViolation(relationship, constraint string) error {
	return &ConstraintViolationError{Relationship: relationship, Constraint: constraint}
}

// IsConstraintViolation reports whether err carries a ConstraintViolationError.
func IsConstraintViolation(err error) bool {
	var cv *ConstraintViolationError
	return errors.As(err, &cv)
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// pqConstraint returns the violated constraint name when err is a pq
// unique/foreign-key violation, empty string otherwise.
func pqConstraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation, pqForeignKeyViolation:
			return pqErr.Constraint
		}
	}
	return ""
}

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError
	}
	return nil
}
