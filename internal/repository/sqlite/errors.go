package sqlite

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// isUniqueConstraintError reports whether err is a SQLite UNIQUE (or primary
// key) constraint violation.
func isUniqueConstraintError(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY) ||
		(err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed"))
}

// isForeignKeyError reports whether err is a SQLite FOREIGN KEY constraint violation.
func isForeignKeyError(err error) bool {
	return hasCode(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) ||
		(err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed"))
}

func hasCode(err error, codes ...int) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.Code() == c {
			return true
		}
	}
	return false
}
