// Package sqlite opens the local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/felixgeelhaar/calcompare/internal/shared/infrastructure/database"
)

func init() {
	database.RegisterSQLiteDriver(NewConnection)
}

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// pragmas run on every new connection, in order.
var pragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"synchronous(NORMAL)",
}

// Connection is the single-writer database/sql handle over the SQLite file.
type Connection struct {
	db   *sql.DB
	path string
}

var _ database.Connection = (*Connection)(nil)

// NewConnection opens cfg.SQLitePath, creating its directory, or the default
// path under the home directory when unset.
func NewConnection(ctx context.Context, cfg database.Config) (database.Connection, error) {
	path := cfg.SQLitePath
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	if !isMemory(path) {
		if err := database.EnsureDirectory(filePart(path)); err != nil {
			return nil, fmt.Errorf("sqlite: create directory for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// One connection serialises writers, and keeps an in-memory database alive
	// for the lifetime of the handle.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}

	return &Connection{db: db, path: path}, nil
}

// dsn appends the pragmas to path, keeping any query it already carries.
func dsn(path string) string {
	q := make(url.Values)
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + q.Encode()
}

func isMemory(path string) bool {
	return filePart(path) == MemoryPath || strings.Contains(path, "mode=memory")
}

func filePart(path string) string {
	file, _, _ := strings.Cut(path, "?")
	return strings.TrimPrefix(file, "file:")
}

// DB exposes the handle to repositories and the unit of work.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Path is the file the connection was opened on.
func (c *Connection) Path() string {
	return c.path
}

func (c *Connection) Driver() database.Driver {
	return database.DriverSQLite
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
