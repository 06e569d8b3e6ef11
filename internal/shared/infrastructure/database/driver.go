package database

import (
	"fmt"
	"strings"
)

// Driver names a database backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// IsValid reports whether d is a backend this module can open.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

var sqliteSuffixes = []string{".db", ".sqlite", ".sqlite3"}

// DetectDriver infers the backend from a DATABASE_URL. An empty URL selects the local
// SQLite file; plain paths with a SQLite extension do too.
func DetectDriver(url string) (Driver, error) {
	switch {
	case url == "":
		return DriverSQLite, nil
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite, nil
	}
	if !strings.Contains(url, "://") {
		for _, suffix := range sqliteSuffixes {
			if strings.HasSuffix(url, suffix) {
				return DriverSQLite, nil
			}
		}
	}
	return "", fmt.Errorf("cannot infer database driver from %q", redact(url))
}

// sqlitePathFromURL strips the sqlite:// scheme. Other URLs are used as paths as they are.
func sqlitePathFromURL(url string) string {
	return strings.TrimPrefix(url, "sqlite://")
}

// redact drops credentials from a URL before it is logged or returned in an error.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = rest[at+1:]
	}
	return scheme + "://" + rest
}
