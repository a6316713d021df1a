package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrSlotTaken is returned when the (date, time) pair is already held by
	// a live appointment at insert/reschedule time.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrStaleState is returned when a guarded transactional update matched
	// no row because another writer moved the record first.
	ErrStaleState = errors.New("record changed concurrently")

	// ErrQueueConflict is returned when two concurrent accepts computed the
	// same queue number and the unique index failed the loser.
	ErrQueueConflict = errors.New("queue number assigned concurrently")
)

// lockForUpdate appends a row lock on dialects that support it. SQLite has
// no FOR UPDATE; its writes are serialized by the connection anyway.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isUniqueViolation recognises duplicate-key failures on both postgres
// (pgconn error or SQLSTATE in the message) and sqlite.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	s := err.Error()
	return strings.Contains(s, "SQLSTATE 23505") ||
		strings.Contains(s, "duplicate key value violates unique constraint") ||
		strings.Contains(s, "UNIQUE constraint failed")
}
