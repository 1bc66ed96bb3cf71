// Copyright (c) 2026 Herdcount. All rights reserved.

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/herdcount/herdcount/internal/platform/constants"
)

// DBTX is the subset of pgx used by repositories.
// *pgxpool.Pool, pgx.Tx and pgxmock all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxBeginner starts transactions. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WithTx begins a transaction, runs fn with the transactional handle, and then
// commits on success or rolls back on error or panic. Panics are rethrown.
//
//	err := postgres.WithTx(ctx, pool, func(ctx context.Context, tx postgres.DBTX) error {
//	    _, err := tx.Exec(ctx, "DELETE FROM ...")
//	    return err
//	})
func WithTx(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin failed: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(ctx)
			panic(recovered)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			err = fmt.Errorf("postgres: commit failed: %w", commitErr)
		}
	}()

	return fn(ctx, tx)
}

// WithTimeout bounds a single repository call by [constants.StoreTimeout].
func WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, constants.StoreTimeout)
}
