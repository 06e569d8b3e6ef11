package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_UnregisteredDriver(t *testing.T) {
	_, err := NewConnection(context.Background(), Config{Driver: Driver("mysql")})

	assert.ErrorContains(t, err, "unsupported database driver: mysql")
}

func TestSQLitePathFromURL(t *testing.T) {
	assert.Equal(t, "/data/calcompare.db", sqlitePathFromURL("sqlite:///data/calcompare.db"))
	assert.Equal(t, "local.db", sqlitePathFromURL("local.db"))
	assert.Empty(t, sqlitePathFromURL(""))
}

func TestDefaultSQLitePath(t *testing.T) {
	path := DefaultSQLitePath()

	assert.Equal(t, "calcompare.db", filepath.Base(path))
	assert.Equal(t, ".calcompare", filepath.Base(filepath.Dir(path)))
}

func TestEnsureDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "file.db")

	require.NoError(t, EnsureDirectory(path))
	assert.DirExists(t, filepath.Dir(path))
}
