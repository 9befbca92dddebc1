package citadel

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = sql.ErrNoRows

// ValidationError reports missing or malformed input on a create/update.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func missingField(field string) error {
	return &ValidationError{Msg: fmt.Sprintf("Missing required field: %s", field)}
}

// errNoFields rejects a partial update that names no recognized field.
var errNoFields = &ValidationError{Msg: "No fields to update"}

// isUniqueViolation reports whether err is a unique or primary-key
// constraint failure from the store.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
