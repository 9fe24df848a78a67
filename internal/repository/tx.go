package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// withTx runs fn inside a transaction.  The transaction commits when fn
// returns nil and rolls back otherwise, so a multi-statement write either
// lands completely or not at all.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return writeErr("begin tx", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = writeErr("commit", cerr)
		}
	}()
	return fn(tx)
}
