// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow the service layer to tell
// storage-level outcomes apart without inspecting driver errors itself.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrShowNotFound indicates that a show was not located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrAccountNotFound indicates that an account was not located in the DB.
var ErrAccountNotFound = errors.New("account not found")

// ErrReservationNotFound indicates that a reservation was not located in the DB.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrSlotTaken is returned when inserting an active reservation violates
// the unique key on (show_id, slot_id) for active rows.  The key is the
// authority on slot ownership; callers must not treat a passing pre-check
// as a guarantee.
var ErrSlotTaken = errors.New("slot already reserved")

// ErrStatusMismatch is returned by a status transition when the row exists
// but is not in the expected prior status.
var ErrStatusMismatch = errors.New("reservation status mismatch")

// ErrInsufficientPoints is returned when a ledger delta would take a
// balance below zero.  The guarded UPDATE leaves the row untouched.
var ErrInsufficientPoints = errors.New("insufficient points")

// ErrDuplicateRequest is returned when an idempotency key is already claimed.
var ErrDuplicateRequest = errors.New("duplicate checkout request")

// MySQL server error numbers.
const (
	mysqlDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlLockDeadlock   = 1213 // ER_LOCK_DEADLOCK
)

// isDuplicateKey reports whether err is a MySQL duplicate key violation.
func isDuplicateKey(err error) bool {
	return isMySQLError(err, mysqlDuplicateEntry)
}

// isDeadlock reports whether InnoDB chose this transaction as a deadlock
// victim.  The transaction has already been rolled back by the server.
func isDeadlock(err error) bool {
	return isMySQLError(err, mysqlLockDeadlock)
}

func isMySQLError(err error, number uint16) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == number
}
