package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLExecutor is satisfied by both *sql.DB and *sql.Tx, so repository
// methods can run inside or outside a caller-owned transaction.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
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

// constraintMessage returns the SQLite error text when err is a
// constraint violation, masking the extended result code down to the
// primary SQLITE_CONSTRAINT code.
func constraintMessage(err error) (string, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return "", false
	}
	if se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return "", false
	}
	return se.Error(), true
}

// isUniqueViolation reports whether err is a UNIQUE violation involving
// the given column (qualified as "table.column" in the SQLite message).
func isUniqueViolation(err error, column string) bool {
	msg, ok := constraintMessage(err)
	return ok && strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, column)
}

// isForeignKeyViolation reports whether err is a FOREIGN KEY violation.
// SQLite does not identify which reference failed, so callers map this
// per operation.
func isForeignKeyViolation(err error) bool {
	msg, ok := constraintMessage(err)
	return ok && strings.Contains(msg, "FOREIGN KEY constraint failed")
}

// isCheckViolation reports whether err is a violation of the named CHECK
// constraint.
func isCheckViolation(err error, constraint string) bool {
	msg, ok := constraintMessage(err)
	return ok && strings.Contains(msg, "CHECK constraint failed") && strings.Contains(msg, constraint)
}
