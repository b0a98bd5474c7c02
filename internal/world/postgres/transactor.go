// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gridtown Contributors

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
)

// Pool is the query surface shared by pgxpool.Pool and pgx.Tx; every
// repository constructor accepts it.
type Pool = poolIface

// Transactor runs a function inside a single pgx transaction. pgx.Tx
// satisfies the repository pool interface, so callers build tx-scoped
// repositories from the handle they receive. Used where a caller wants
// all-or-nothing semantics (seeding) instead of the saga's observable
// compensation.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor creates a Transactor backed by the given connection pool.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

// InTransaction begins a transaction and calls fn with it. If fn
// returns nil the transaction is committed, otherwise rolled back.
func (t *Transactor) InTransaction(ctx context.Context, fn func(tx Pool) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return oops.Code("TX_BEGIN_FAILED").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return oops.Code("TX_COMMIT_FAILED").Wrap(err)
	}
	return nil
}
