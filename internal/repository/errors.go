package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrVersionConflict means an optimistic-concurrency check failed.
	ErrVersionConflict = errors.New("version conflict")
	// ErrDuplicateKey means a unique index rejected the write.
	ErrDuplicateKey = errors.New("duplicate key")
)

// isUniqueViolation detects unique-index violations for both backends:
// pg error 23505 in production, string match for the sqlite dev driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed")
}
