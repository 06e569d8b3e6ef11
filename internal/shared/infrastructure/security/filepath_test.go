package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPath(t *testing.T) {
	t.Run("rejects empty path", func(t *testing.T) {
		_, err := CleanPath("")
		assert.ErrorContains(t, err, "cannot be empty")
	})

	t.Run("rejects shell metacharacters", func(t *testing.T) {
		for _, c := range forbiddenChars {
			_, err := CleanPath("/tmp/fixture" + string(c) + ".json")
			assert.ErrorContains(t, err, "forbidden character", "character %q", c)
		}
	})

	t.Run("makes relative paths absolute", func(t *testing.T) {
		result, err := CleanPath("calendars.json")
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(result))
	})

	t.Run("resolves symlinks", func(t *testing.T) {
		dir := t.TempDir()
		real := filepath.Join(dir, "real.json")
		require.NoError(t, os.WriteFile(real, []byte("{}"), 0o600))
		link := filepath.Join(dir, "link.json")
		require.NoError(t, os.Symlink(real, link))

		result, err := CleanPath(link)
		require.NoError(t, err)
		expected, _ := filepath.EvalSymlinks(real)
		assert.Equal(t, expected, result)
	})

	t.Run("removes dot segments", func(t *testing.T) {
		dir := t.TempDir()
		result, err := CleanPath(filepath.Join(dir, "sub", "..", "missing.json"))
		require.NoError(t, err)
		assert.NotContains(t, result, "..")
	})
}

func TestCleanPathInDir(t *testing.T) {
	t.Run("rejects empty base directory", func(t *testing.T) {
		_, err := CleanPathInDir("/tmp/x.json", "")
		assert.ErrorContains(t, err, "base directory cannot be empty")
	})

	t.Run("accepts nested file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "alice"), 0o755))
		file := filepath.Join(dir, "alice", "token.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

		result, err := CleanPathInDir(file, dir)
		require.NoError(t, err)
		expected, _ := filepath.EvalSymlinks(file)
		assert.Equal(t, expected, result)
	})

	t.Run("rejects traversal", func(t *testing.T) {
		dir := t.TempDir()
		_, err := CleanPathInDir(filepath.Join(dir, "..", "escape.json"), dir)
		assert.ErrorIs(t, err, ErrOutsideDir)
	})

	t.Run("rejects prefix sibling", func(t *testing.T) {
		dir := t.TempDir()
		base := filepath.Join(dir, "tokens")
		sibling := filepath.Join(dir, "tokens-old")
		require.NoError(t, os.MkdirAll(base, 0o755))
		require.NoError(t, os.MkdirAll(sibling, 0o755))
		file := filepath.Join(sibling, "alice.json")
		require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

		_, err := CleanPathInDir(file, base)
		assert.ErrorIs(t, err, ErrOutsideDir)
	})
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "calendars.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"alice":[]}`), 0o600))

	data, err := ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, `{"alice":[]}`, string(data))

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	data, err = ReadFileInDir(file, dir)
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	_, err = ReadFileInDir(filepath.Join(dir, "..", "outside.json"), dir)
	assert.ErrorIs(t, err, ErrOutsideDir)
}
