package app

import (
	"context"
	"path/filepath"
	"testing"

	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownConnection struct{}

func (unknownConnection) Ping(context.Context) error { return nil }
func (unknownConnection) Close() error               { return nil }
func (unknownConnection) Driver() database.Driver    { return "oracle" }

func TestRepositoryFactory_SQLite(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	defer conn.Close()

	factory := NewRepositoryFactory(conn)
	require.NoError(t, factory.Migrate(ctx))
	// Migrations are idempotent.
	require.NoError(t, factory.Migrate(ctx))

	repo, err := factory.GroupRepository()
	require.NoError(t, err)

	group, err := groupDomain.NewGroup("Design")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, group))

	found, err := repo.FindByID(ctx, group.ID())
	require.NoError(t, err)
	assert.Equal(t, "Design", found.Name())

	_, err = factory.OutboxRepository()
	assert.NoError(t, err)
	_, err = factory.UnitOfWork()
	assert.NoError(t, err)
}

func TestRepositoryFactory_UnsupportedDriver(t *testing.T) {
	factory := NewRepositoryFactory(unknownConnection{})

	assert.Error(t, factory.Migrate(context.Background()))

	_, err := factory.GroupRepository()
	assert.Error(t, err)
	_, err = factory.OutboxRepository()
	assert.Error(t, err)
	_, err = factory.UnitOfWork()
	assert.Error(t, err)
}

func TestRepositoryFactory_ConnectionWithoutHandle(t *testing.T) {
	factory := &RepositoryFactory{conn: unknownConnection{}, driver: database.DriverSQLite}

	_, err := factory.GroupRepository()

	assert.ErrorContains(t, err, "does not expose DB()")
}
