package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "REDIS_URL", "JWT_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD", "APP_ENV", "PORT"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultDatabaseURL, cfg.Database.URL)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, defaultRateLimitMax, cfg.RateLimit.Max)
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
port: 8080
env: prod
database:
  url: mysql://root:pw@tcp(localhost:3306)/folio
redis:
  url: localhost:6379
allowed_origins: [" https://example.com ", ""]
`)
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/folio")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "postgres://u:p@localhost/folio", cfg.Database.URL)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "prot: 1\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadPort(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "port: 70000\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
}

func TestValidateIncompleteS3(t *testing.T) {
	cfg := Default()
	cfg.Backup.S3.Enable = true
	cfg.Backup.S3.Bucket = "b"
	require.Error(t, cfg.Validate())
}
