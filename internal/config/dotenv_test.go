package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDotEnv(t *testing.T) {
	input := "\ufeff# comment\n" +
		"APP_ENV=development\n" +
		"export PORT = 9090\n" +
		"PERMISSIONS_API_KEY=\"quoted key\"\n" +
		"PERMISSIONS_API_SECRET='single'\n" +
		"DATABASE_URL=from-file\n" +
		"not a pair\n" +
		"=novalue\n"

	existing := map[string]string{"DATABASE_URL": "from-env"}
	set := map[string]string{}

	n, err := applyDotEnv(strings.NewReader(input),
		func(k string) (string, bool) { v, ok := existing[k]; return v, ok },
		func(k, v string) error { set[k] = v; return nil },
	)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, map[string]string{
		"APP_ENV":                "development",
		"PORT":                   "9090",
		"PERMISSIONS_API_KEY":    "quoted key",
		"PERMISSIONS_API_SECRET": "single",
	}, set)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "a", unquote(`"a"`))
	assert.Equal(t, `"a`, unquote(`"a`))
	assert.Equal(t, "", unquote(`''`))
	assert.Equal(t, "x", unquote("x"))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDotEnv_ExportsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EVENTS7_DOTENV_CHECK=loaded\n"), 0o644))
	chdir(t, dir)
	t.Cleanup(func() { _ = os.Unsetenv("EVENTS7_DOTENV_CHECK") })

	path, err := LoadDotEnv()
	require.NoError(t, err)
	assert.Equal(t, ".env", filepath.Base(path))
	assert.Equal(t, "loaded", os.Getenv("EVENTS7_DOTENV_CHECK"))
}

func TestLoadDotEnv_ReportsUnreadableFile(t *testing.T) {
	dir := t.TempDir()
	// A directory named .env opens but fails on read.
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o755))
	chdir(t, dir)

	path, err := LoadDotEnv()
	assert.Error(t, err)
	assert.Equal(t, ".env", filepath.Base(path))
}
