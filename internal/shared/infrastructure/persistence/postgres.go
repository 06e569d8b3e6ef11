package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgTxKey struct{}

type pgTx struct{ tx pgx.Tx }

func (h pgTx) commit(ctx context.Context) error   { return h.tx.Commit(ctx) }
func (h pgTx) rollback(ctx context.Context) error { return h.tx.Rollback(ctx) }

// PgQuerier is the query surface shared by *pgxpool.Pool and pgx.Tx.
type PgQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// NewPostgresUnitOfWork creates a unit of work over pool.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{
		key: pgTxKey{},
		begin: func(ctx context.Context) (txHandle, error) {
			tx, err := pool.Begin(ctx)
			if err != nil {
				return nil, err
			}
			return pgTx{tx: tx}, nil
		},
	}
}

// PostgresTx returns the PostgreSQL transaction carried by ctx.
func PostgresTx(ctx context.Context) (pgx.Tx, bool) {
	s, ok := ctx.Value(pgTxKey{}).(*scope)
	if !ok {
		return nil, false
	}
	h, ok := s.tx.(pgTx)
	return h.tx, ok
}

// PostgresQuerier returns the transaction carried by ctx, or pool outside one.
func PostgresQuerier(ctx context.Context, pool *pgxpool.Pool) PgQuerier {
	if tx, ok := PostgresTx(ctx); ok {
		return tx
	}
	return pool
}
