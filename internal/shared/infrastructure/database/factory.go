package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds database configuration.
type Config struct {
	// Driver specifies the database driver to use.
	// If empty or "auto", it will be detected from the URL.
	Driver Driver

	// URL is the connection string for PostgreSQL.
	URL string

	// SQLitePath is the path to the SQLite database file.
	// Defaults to ~/.calcompare/calcompare.db
	SQLitePath string

	// MaxConns is the maximum number of connections (PostgreSQL only).
	MaxConns int
}

type connector func(ctx context.Context, cfg Config) (Connection, error)

var connectors = map[Driver]connector{}

// RegisterPostgresDriver registers the PostgreSQL connection factory.
// The postgres package calls it from init.
func RegisterPostgresDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[DriverPostgres] = fn
}

// RegisterSQLiteDriver registers the SQLite connection factory.
// The sqlite package calls it from init.
func RegisterSQLiteDriver(fn func(ctx context.Context, cfg Config) (Connection, error)) {
	connectors[DriverSQLite] = fn
}

// NewConnection opens a connection with the driver named by cfg, or detected from cfg.URL.
// The driver package must be imported for its side effect.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Driver
	if driver == "" || driver == "auto" {
		detected, err := DetectDriver(cfg.URL)
		if err != nil {
			return nil, err
		}
		driver = detected
	}
	if driver == DriverSQLite && cfg.SQLitePath == "" {
		cfg.SQLitePath = sqlitePathFromURL(cfg.URL)
	}

	connect, ok := connectors[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return connect(ctx, cfg)
}

// DefaultSQLitePath returns the default SQLite database path.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".calcompare", "calcompare.db")
}

// EnsureDirectory creates the parent directory for a file path if it doesn't exist.
func EnsureDirectory(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o750)
}
