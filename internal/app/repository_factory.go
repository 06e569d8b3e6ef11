package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	groupDomain "github.com/felixgeelhaar/calcompare/internal/groups/domain"
	groupPersistence "github.com/felixgeelhaar/calcompare/internal/groups/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/calcompare/internal/shared/application"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/persistence"
)

// RepositoryFactory hands out the repositories that match an open connection.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn, driver: conn.Driver()}
}

// backend builds a value for whichever driver the connection uses.
type backend[T any] struct {
	postgres func(*pgxpool.Pool) T
	sqlite   func(*sql.DB) T
}

func build[T any](f *RepositoryFactory, b backend[T]) (T, error) {
	var zero T
	switch f.driver {
	case database.DriverPostgres:
		h, ok := f.conn.(interface{ Pool() *pgxpool.Pool })
		if !ok {
			return zero, errors.New("postgres connection does not expose Pool()")
		}
		return b.postgres(h.Pool()), nil
	case database.DriverSQLite:
		h, ok := f.conn.(interface{ DB() *sql.DB })
		if !ok {
			return zero, errors.New("sqlite connection does not expose DB()")
		}
		return b.sqlite(h.DB()), nil
	default:
		return zero, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Migrate applies the embedded schema. Applied versions are skipped.
func (f *RepositoryFactory) Migrate(ctx context.Context) error {
	run, err := build(f, backend[func() error]{
		postgres: func(pool *pgxpool.Pool) func() error {
			return func() error { return migrations.RunPostgresMigrations(ctx, pool) }
		},
		sqlite: func(db *sql.DB) func() error {
			return func() error { return migrations.RunSQLiteMigrations(ctx, db) }
		},
	})
	if err != nil {
		return err
	}
	return run()
}

func (f *RepositoryFactory) GroupRepository() (groupDomain.Repository, error) {
	return build(f, backend[groupDomain.Repository]{
		postgres: func(pool *pgxpool.Pool) groupDomain.Repository {
			return groupPersistence.NewPostgresGroupRepository(pool)
		},
		sqlite: func(db *sql.DB) groupDomain.Repository {
			return groupPersistence.NewSQLiteGroupRepository(db)
		},
	})
}

func (f *RepositoryFactory) OutboxRepository() (outbox.Repository, error) {
	return build(f, backend[outbox.Repository]{
		postgres: func(pool *pgxpool.Pool) outbox.Repository {
			return outbox.NewPostgresRepository(pool)
		},
		sqlite: func(db *sql.DB) outbox.Repository {
			return outbox.NewSQLiteRepository(db)
		},
	})
}

// UnitOfWork opens transactions that the group and outbox repositories join.
func (f *RepositoryFactory) UnitOfWork() (sharedApplication.UnitOfWork, error) {
	return build(f, backend[sharedApplication.UnitOfWork]{
		postgres: func(pool *pgxpool.Pool) sharedApplication.UnitOfWork {
			return sharedPersistence.NewPostgresUnitOfWork(pool)
		},
		sqlite: func(db *sql.DB) sharedApplication.UnitOfWork {
			return sharedPersistence.NewSQLiteUnitOfWork(db)
		},
	})
}

func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}
