// Package repository provides the MySQL persistence layer behind the
// admission engine's store interfaces.  Sentinel values here let higher
// layers distinguish failure scenarios without inspecting driver errors;
// anything that is not a sentinel should be treated as a transient
// storage failure, which the engine retries with backoff — the uniqueness
// constraints on attendance and waitlist rows make retries idempotent.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// isDuplicateKey reports whether err is a MySQL duplicate-entry violation
// (error 1062).  The unique keys on attendance_records and
// waitlist_entries turn lost insert races into this error instead of
// duplicate rows.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
