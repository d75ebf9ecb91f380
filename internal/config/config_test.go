package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.AppEnv)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Server.ListenString())
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.Permission.Timeout)
	assert.Equal(t, "113.29.77.255", cfg.Permission.DevCallerAddress)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")
	t.Setenv("PERMISSIONS_API_KEY", "key")
	t.Setenv("PERMISSIONS_API_SECRET", "secret")
	t.Setenv("APP_ENV", "development")
	t.Setenv("EVENTS7_PERMISSION_TIMEOUT", "250ms")

	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, uint16(9090), cfg.Server.Port)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "key", cfg.Permission.APIKey)
	assert.Equal(t, "secret", cfg.Permission.APISecret)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 250*time.Millisecond, cfg.Permission.Timeout)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := `
storage:
  driver: postgres
  database_url: postgres://u:p@db:5432/events7
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))

	cfg, err := LoadFrom(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "postgres://u:p@db:5432/events7", cfg.Storage.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_InvalidStorageDriver(t *testing.T) {
	t.Setenv("EVENTS7_STORAGE_DRIVER", "mongo")

	_, err := LoadFrom(viper.New(), t.TempDir())
	assert.ErrorContains(t, err, "invalid storage driver")
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7,::ffff:172.16.0.1")

	cfg, err := LoadFrom(viper.New(), t.TempDir())
	require.NoError(t, err)

	prefixes, err := cfg.Server.TrustedProxyPrefixes()
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
		netip.MustParsePrefix("172.16.0.1/32"),
	}, prefixes)
}

func TestLoad_InvalidTrustedProxy(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "not-an-ip")

	_, err := LoadFrom(viper.New(), t.TempDir())
	assert.ErrorContains(t, err, "invalid trusted proxy")
}

func TestLogConfig_Validate(t *testing.T) {
	assert.NoError(t, LogConfig{Level: "warn", Format: "json"}.Validate())
	assert.Error(t, LogConfig{Level: "loud", Format: "json"}.Validate())
	assert.Error(t, LogConfig{Level: "info", Format: "xml"}.Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
