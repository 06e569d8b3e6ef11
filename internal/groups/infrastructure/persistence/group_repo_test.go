package persistence_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/felixgeelhaar/calcompare/internal/groups/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/calcompare/internal/shared/domain"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/migrations"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupSQLiteTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
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
	_, _ = pool.Exec(ctx, "DELETE FROM group_memberships")
	_, _ = pool.Exec(ctx, "DELETE FROM groups")
	_, _ = pool.Exec(ctx, "DELETE FROM members")
	return pool
}

func repositories(t *testing.T) map[string]func(t *testing.T) domain.Repository {
	return map[string]func(t *testing.T) domain.Repository{
		"memory": func(t *testing.T) domain.Repository {
			return persistence.NewInMemoryGroupRepository()
		},
		"sqlite": func(t *testing.T) domain.Repository {
			return persistence.NewSQLiteGroupRepository(setupSQLiteTestDB(t))
		},
		"postgres": func(t *testing.T) domain.Repository {
			return persistence.NewPostgresGroupRepository(setupPostgresTestDB(t))
		},
	}
}

func newGroup(t *testing.T, name string, members ...string) *domain.Group {
	t.Helper()
	g, err := domain.NewGroup(name)
	require.NoError(t, err)
	for _, memberName := range members {
		m, err := domain.NewMember(memberName, memberName+"@example.com")
		require.NoError(t, err)
		require.NoError(t, g.AddMember(m))
	}
	return g
}

func TestGroupRepository_SaveAndFindByID(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			g := newGroup(t, "Platform", "carol", "alice", "bob")

			require.NoError(t, repo.Save(ctx, g))

			found, err := repo.FindByID(ctx, g.ID())
			require.NoError(t, err)
			assert.Equal(t, g.ID(), found.ID())
			assert.Equal(t, "Platform", found.Name())
			require.Len(t, found.Members(), 3)
			for i, m := range g.Members() {
				assert.Equal(t, m.ID(), found.Members()[i].ID())
				assert.Equal(t, m.Name(), found.Members()[i].Name())
				assert.Equal(t, m.Email(), found.Members()[i].Email())
			}
		})
	}
}

func TestGroupRepository_SaveReplacesMemberships(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			g := newGroup(t, "Platform", "alice", "bob")
			require.NoError(t, repo.Save(ctx, g))

			removed := g.Members()[0]
			require.NoError(t, g.RemoveMember(removed.ID()))
			require.NoError(t, repo.Save(ctx, g))

			found, err := repo.FindByID(ctx, g.ID())
			require.NoError(t, err)
			require.Len(t, found.Members(), 1)
			assert.Equal(t, "bob", found.Members()[0].Name())

			member, err := repo.FindMember(ctx, removed.ID())
			require.NoError(t, err, "members outlive their memberships")
			assert.Equal(t, "alice", member.Name())
		})
	}
}

func TestGroupRepository_NotFound(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()

			_, err := repo.FindByID(ctx, uuid.New())
			assert.ErrorIs(t, err, domain.ErrGroupNotFound)

			_, err = repo.FindMember(ctx, uuid.New())
			assert.ErrorIs(t, err, domain.ErrMemberNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), domain.ErrGroupNotFound)
		})
	}
}

func TestGroupRepository_ListAndDelete(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			repo := open(t)
			ctx := context.Background()
			zeta := newGroup(t, "Zeta", "alice")
			alpha := newGroup(t, "Alpha", "bob")
			require.NoError(t, repo.Save(ctx, zeta))
			require.NoError(t, repo.Save(ctx, alpha))

			groups, err := repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, groups, 2)
			assert.Equal(t, "Alpha", groups[0].Name())
			assert.Equal(t, "Zeta", groups[1].Name())

			require.NoError(t, repo.Delete(ctx, alpha.ID()))
			groups, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, groups, 1)
			assert.Equal(t, zeta.ID(), groups[0].ID())
		})
	}
}

func TestGroupRepository_AsAggregateStore(t *testing.T) {
	for name, open := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			var store sharedDomain.Repository[*domain.Group] = open(t)
			ctx := context.Background()
			g := newGroup(t, "Platform", "alice")

			require.NoError(t, store.Save(ctx, g))
			found, err := store.FindByID(ctx, g.ID())
			require.NoError(t, err)
			assert.Equal(t, "Platform", found.Name())

			require.NoError(t, store.Delete(ctx, g.ID()))
			_, err = store.FindByID(ctx, g.ID())
			assert.ErrorIs(t, err, domain.ErrGroupNotFound)
		})
	}
}

func TestInMemoryGroupRepository_ReturnsCopies(t *testing.T) {
	repo := persistence.NewInMemoryGroupRepository()
	ctx := context.Background()
	g := newGroup(t, "Platform", "alice")
	require.NoError(t, repo.Save(ctx, g))

	found, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)
	extra, err := domain.NewMember("mallory", "")
	require.NoError(t, err)
	require.NoError(t, found.AddMember(extra))

	again, err := repo.FindByID(ctx, g.ID())
	require.NoError(t, err)
	assert.Equal(t, 1, again.Size())
}
