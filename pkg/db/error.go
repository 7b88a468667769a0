package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// IsDuplicateKeyErr reports whether err is a unique-constraint violation,
// across the supported dialects.
func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	// PostgreSQL (error code 23505)
	if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
		return true
	}

	// MySQL (error code 1062)
	if strings.Contains(err.Error(), "Error 1062") {
		return true
	}

	// SQLite (error code 2067)
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return true
	}

	return false
}

// IsBusyErr reports whether err indicates a locked or contended store.
// Callers translate this into a retryable condition rather than retrying
// internally.
func IsBusyErr(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "database is locked"), // SQLite
		strings.Contains(msg, "database table is locked"),
		strings.Contains(msg, "Lock wait timeout exceeded"), // MySQL
		strings.Contains(msg, "deadlock detected"),          // PostgreSQL
		strings.Contains(msg, "could not obtain lock"):
		return true
	}
	return false
}
