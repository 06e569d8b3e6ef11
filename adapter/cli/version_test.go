package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentBuild_PrefersLdflags(t *testing.T) {
	restore := stamp(t, "v1.4.0", "abc123", "2026-01-02")
	defer restore()

	info := CurrentBuild()

	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, "2026-01-02", info.BuildDate)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestVersionCommand_JSON(t *testing.T) {
	restore := stamp(t, "v1.4.0", "abc123", "2026-01-02")
	defer restore()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version", "--json"})
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		versionJSON = false
	}()

	require.NoError(t, rootCmd.Execute())

	var info BuildInfo
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "abc123", info.Commit)
}

func stamp(t *testing.T, version, commit, date string) func() {
	t.Helper()
	v, c, d := Version, Commit, BuildDate
	Version, Commit, BuildDate = version, commit, date
	return func() { Version, Commit, BuildDate = v, c, d }
}
