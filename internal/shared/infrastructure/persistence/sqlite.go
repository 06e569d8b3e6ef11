package persistence

import (
	"context"
	"database/sql"
)

type sqliteTxKey struct{}

type sqliteTx struct{ tx *sql.Tx }

func (h sqliteTx) commit(context.Context) error   { return h.tx.Commit() }
func (h sqliteTx) rollback(context.Context) error { return h.tx.Rollback() }

// SQLQuerier is the query surface shared by *sql.DB and *sql.Tx.
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteUnitOfWork creates a unit of work over db.
func NewSQLiteUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{
		key: sqliteTxKey{},
		begin: func(ctx context.Context) (txHandle, error) {
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return nil, err
			}
			return sqliteTx{tx: tx}, nil
		},
	}
}

// SQLiteTx returns the SQLite transaction carried by ctx.
func SQLiteTx(ctx context.Context) (*sql.Tx, bool) {
	s, ok := ctx.Value(sqliteTxKey{}).(*scope)
	if !ok {
		return nil, false
	}
	h, ok := s.tx.(sqliteTx)
	return h.tx, ok
}

// SQLiteQuerier returns the transaction carried by ctx, or db outside one.
func SQLiteQuerier(ctx context.Context, db *sql.DB) SQLQuerier {
	if tx, ok := SQLiteTx(ctx); ok {
		return tx
	}
	return db
}
