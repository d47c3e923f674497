package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axsol/backoffice/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults(), cfg)
	assert.Equal(t, config.BackendFS, cfg.Storage.Backend)
	assert.True(t, cfg.Fixtures.Builtin)
	assert.True(t, cfg.Fixtures.WriteThrough)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: sqlite
  path: /var/lib/backoffice.db
fixtures:
  dir: ./public
  timeout: 5s
  write_through: false
logging:
  level: debug
  format: json
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/backoffice.db", cfg.Storage.Path)
	assert.Equal(t, "./public", cfg.Fixtures.Dir)
	assert.Equal(t, 5*time.Second, cfg.Fixtures.Timeout)
	assert.False(t, cfg.Fixtures.WriteThrough)
	assert.True(t, cfg.Fixtures.Builtin, "unset keys keep their defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backoffice.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: sqlite\n  path: a.db\n"), 0o644))

	t.Setenv("BACKOFFICE_STORAGE_BACKEND", "memory")
	t.Setenv("BACKOFFICE_STORAGE_QUOTA", "4096")
	t.Setenv("BACKOFFICE_FIXTURES_BASE_URL", "https://example.com/app")
	t.Setenv("BACKOFFICE_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, "a.db", cfg.Storage.Path)
	assert.Equal(t, 4096, cfg.Storage.Quota)
	assert.Equal(t, "https://example.com/app", cfg.Fixtures.BaseURL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage: [unclosed"), 0o644))
	_, err = config.Load(bad)
	assert.Error(t, err)

	t.Setenv("BACKOFFICE_STORAGE_QUOTA", "lots")
	_, err = config.Load("")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Backend = "redis"
	cfg.Logging.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "storage.backend")
	assert.ErrorContains(t, err, "logging.format")

	cfg = config.Defaults()
	cfg.Storage.Path = ""
	assert.ErrorContains(t, cfg.Validate(), "storage.path")

	cfg.Storage.Backend = config.BackendMemory
	assert.NoError(t, cfg.Validate())

	cfg.Storage.ReadOnly = true
	assert.ErrorContains(t, cfg.Validate(), "storage.read_only")

	cfg.Storage.Backend = config.BackendSQLite
	cfg.Storage.Path = "backoffice.db"
	assert.NoError(t, cfg.Validate())
}
