package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TxScope runs a unit of work inside one database transaction.
// fn receives the transaction as a Querier; it is committed if fn returns nil
// and rolled back otherwise.
type TxScope interface {
	Execute(ctx context.Context, fn func(ctx context.Context, q Querier) error) error
}

// ExecuteWithResult runs fn within scope and returns its result.
func ExecuteWithResult[T any](ctx context.Context, scope TxScope, fn func(ctx context.Context, q Querier) (T, error)) (T, error) {
	var result T
	err := scope.Execute(ctx, func(ctx context.Context, q Querier) error {
		var fnErr error
		result, fnErr = fn(ctx, q)
		return fnErr
	})
	return result, err
}

// PgTxScope is the pgx implementation of TxScope.
type PgTxScope struct {
	pool *pgxpool.Pool
}

// NewPgTxScope creates a PgTxScope backed by the given pool.
func NewPgTxScope(pool *pgxpool.Pool) *PgTxScope {
	return &PgTxScope{pool: pool}
}

var _ TxScope = (*PgTxScope)(nil)

func (s *PgTxScope) Execute(ctx context.Context, fn func(ctx context.Context, q Querier) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
