// Copyright (c) 2026 Herdcount. All rights reserved.

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herdcount/herdcount/internal/platform/postgres"
)

/*
TestWithTx_Commit commits when fn succeeds.
*/
func TestWithTx_Commit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM counts").WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectCommit()

	err = postgres.WithTx(context.Background(), mock, func(ctx context.Context, tx postgres.DBTX) error {
		_, err := tx.Exec(ctx, "DELETE FROM counts")
		return err
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithTx_Rollback rolls back and returns the callback error.
*/
func TestWithTx_Rollback(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback()

	err = postgres.WithTx(context.Background(), mock, func(context.Context, postgres.DBTX) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithTx_PanicRollsBack rethrows after rolling back.
*/
func TestWithTx_PanicRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = postgres.WithTx(context.Background(), mock, func(context.Context, postgres.DBTX) error {
			panic("bad")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

/*
TestWithTimeout sets a deadline on the derived context.
*/
func TestWithTimeout(t *testing.T) {
	ctx, cancel := postgres.WithTimeout(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}
