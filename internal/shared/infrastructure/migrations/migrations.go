// Package migrations applies the embedded schema for each supported database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed sqlite/*.sql postgres/*.sql
var migrationsFS embed.FS

// RunSQLiteMigrations executes all SQLite up migrations in order.
func RunSQLiteMigrations(ctx context.Context, db *sql.DB) error {
	return run("sqlite", func(name, stmt string) error {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		return nil
	})
}

// RunPostgresMigrations executes all PostgreSQL up migrations in order.
func RunPostgresMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	return run("postgres", func(name, stmt string) error {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
		return nil
	})
}

// UpFiles lists the up migrations of a dialect, sorted.
func UpFiles(dialect string) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)
	return upFiles, nil
}

// Every migration uses IF NOT EXISTS, so rerunning is harmless.
func run(dialect string, exec func(name, stmt string) error) error {
	upFiles, err := UpFiles(dialect)
	if err != nil {
		return err
	}
	for _, file := range upFiles {
		migration, err := migrationsFS.ReadFile(dialect + "/" + file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		if err := exec(file, string(migration)); err != nil {
			return err
		}
	}
	return nil
}
