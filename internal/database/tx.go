package database

import (
	"context"
	"database/sql"
	"fmt"
)

// RunInTx executes fn inside a transaction. The transaction is rolled back
// on error or panic and committed otherwise. All multi-row writes of one
// upload call go through this helper so a failure never leaves partial
// Document/Version/File state behind.
func RunInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
