package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "uow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE groups (id TEXT PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	return db
}

func countGroups(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM groups`).Scan(&n))
	return n
}

func TestSQLiteUnitOfWork_Commit(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)
	ctx := context.Background()

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	tx, ok := SQLiteTx(txCtx)
	require.True(t, ok)
	assert.Same(t, tx, SQLiteQuerier(txCtx, db))

	_, err = SQLiteQuerier(txCtx, db).ExecContext(txCtx, `INSERT INTO groups (id, name) VALUES ('g1', 'Platform')`)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(txCtx))

	assert.Equal(t, 1, countGroups(t, db))
}

func TestSQLiteUnitOfWork_Rollback(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(context.Background())
	require.NoError(t, err)
	_, err = SQLiteQuerier(txCtx, db).ExecContext(txCtx, `INSERT INTO groups (id, name) VALUES ('g1', 'Platform')`)
	require.NoError(t, err)
	require.NoError(t, uow.Rollback(txCtx))

	assert.Zero(t, countGroups(t, db))
}

func TestSQLiteUnitOfWork_NestedCommitWaitsForOuter(t *testing.T) {
	db := openTestDB(t)
	uow := NewSQLiteUnitOfWork(db)

	outer, err := uow.Begin(context.Background())
	require.NoError(t, err)
	inner, err := uow.Begin(outer)
	require.NoError(t, err)

	_, err = SQLiteQuerier(inner, db).ExecContext(inner, `INSERT INTO groups (id, name) VALUES ('g1', 'Platform')`)
	require.NoError(t, err)
	require.NoError(t, uow.Commit(inner))
	require.NoError(t, uow.Rollback(outer))

	assert.Zero(t, countGroups(t, db))
}

func TestSQLiteQuerier_OutsideTransaction(t *testing.T) {
	db := openTestDB(t)

	_, ok := SQLiteTx(context.Background())
	assert.False(t, ok)
	assert.Same(t, db, SQLiteQuerier(context.Background(), db))
}
