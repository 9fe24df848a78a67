// Package repository defines the data access layer for actors, movies, the
// casting relation and the gender lookup table.  The sentinel values below
// let handlers distinguish a missing row from a failed write without
// inspecting driver errors themselves.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrActorNotFound is returned when no actor has the requested id.
	ErrActorNotFound = errors.New("actor not found")
	// ErrMovieNotFound is returned when no movie has the requested id.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrGenderNotFound is returned when a gender label has no row.
	ErrGenderNotFound = errors.New("gender not found")
	// ErrDuplicate signals a unique key violation (actor name, movie title).
	ErrDuplicate = errors.New("duplicate key")
	// ErrPersistence wraps any other failure while writing.  Handlers
	// translate it into HTTP 422 and never surface the cause.
	ErrPersistence = errors.New("persistence failure")
)

// mysqlDuplicateEntry is the server error number for ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// writeErr classifies an error raised by a mutating statement.
func writeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w: %v", op, ErrPersistence, err)
}
