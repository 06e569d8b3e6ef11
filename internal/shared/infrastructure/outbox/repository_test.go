package outbox_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLiteTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func setupPostgresTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Skipf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("Failed to ping test database: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, migrations.RunPostgresMigrations(ctx, pool))
	_, _ = pool.Exec(ctx, "DELETE FROM outbox")
	return pool
}

func repositories() map[string]func(t *testing.T) outbox.Repository {
	return map[string]func(t *testing.T) outbox.Repository{
		"memory": func(t *testing.T) outbox.Repository {
			return outbox.NewInMemoryRepository()
		},
		"sqlite": func(t *testing.T) outbox.Repository {
			return outbox.NewSQLiteRepository(setupSQLiteTestDB(t))
		},
		"postgres": func(t *testing.T) outbox.Repository {
			return outbox.NewPostgresRepository(setupPostgresTestDB(t))
		},
	}
}

func TestRepository_Lifecycle(t *testing.T) {
	for name, newRepo := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			first := createTestMessage("groups.group.created")
			second := createTestMessage("groups.member.added")
			second.CreatedAt = first.CreatedAt.Add(time.Second)
			require.NoError(t, repo.SaveBatch(ctx, []*outbox.Message{first, second}))
			assert.NotZero(t, first.ID)
			assert.NotEqual(t, first.ID, second.ID)

			due, err := repo.GetUnpublished(ctx, 10)
			require.NoError(t, err)
			require.Len(t, due, 2)
			assert.Equal(t, first.EventID, due[0].EventID)
			assert.Equal(t, "groups.group.created", due[0].RoutingKey)
			assert.JSONEq(t, `{"name":"Platform"}`, string(due[0].Payload))

			require.NoError(t, repo.MarkPublished(ctx, first.ID))
			require.NoError(t, repo.MarkFailed(ctx, second.ID, "broker unavailable", time.Now().Add(time.Hour)))

			due, err = repo.GetUnpublished(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, due)

			deleted, err := repo.DeleteOld(ctx, 1)
			require.NoError(t, err)
			assert.Zero(t, deleted)
		})
	}
}

func TestRepository_DeadLetter(t *testing.T) {
	for name, newRepo := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			msg := createTestMessage("groups.member.removed")
			require.NoError(t, repo.Save(ctx, msg))
			require.NoError(t, repo.MarkDead(ctx, msg.ID, "max retries exceeded"))

			due, err := repo.GetUnpublished(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, due)
		})
	}
}

func TestRepository_FailedMessageBecomesDue(t *testing.T) {
	for name, newRepo := range repositories() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			repo := newRepo(t)

			msg := createTestMessage("groups.member.added")
			require.NoError(t, repo.Save(ctx, msg))
			require.NoError(t, repo.MarkFailed(ctx, msg.ID, "timeout", time.Now().Add(-time.Second)))

			due, err := repo.GetUnpublished(ctx, 10)
			require.NoError(t, err)
			require.Len(t, due, 1)
			assert.Equal(t, 1, due[0].RetryCount)
			require.NotNil(t, due[0].LastError)
			assert.Equal(t, "timeout", *due[0].LastError)
		})
	}
}

func TestSQLiteRepository_JoinsUnitOfWork(t *testing.T) {
	ctx := context.Background()
	db := setupSQLiteTestDB(t)
	repo := outbox.NewSQLiteRepository(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)

	txCtx, err := uow.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.SaveBatch(txCtx, []*outbox.Message{createTestMessage("groups.group.created")}))
	require.NoError(t, uow.Rollback(txCtx))

	due, err := repo.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}
