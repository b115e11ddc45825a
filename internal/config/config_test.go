package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Empty(t, cfg.DataDir)
	assert.Equal(t, 4, cfg.Load.Workers)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ligature.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/ligature
log_level: debug
log_format: json
load:
  workers: 8
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ligature", cfg.DataDir)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 8, cfg.Load.Workers)
	// unset keys keep their defaults
	assert.Equal(t, "urn:ligature:default", cfg.DefaultCollection)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ligature.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /from/file\n"), 0o600))

	t.Setenv("LIGATURE_DATA_DIR", "")
	t.Setenv("LIGATURE_LOG_LEVEL", "warn")
	t.Setenv("LIGATURE_LOAD_WORKERS", "2")
	t.Setenv("LIGATURE_DEFAULT_COLLECTION", "http://ex/c")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.DataDir, "an empty variable selects the in-memory store")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Load.Workers)
	assert.Equal(t, "http://ex/c", cfg.DefaultCollection)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("load: [unclosed"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("log_format: xml\n"), 0o600))
	_, err = Load(invalid)
	assert.ErrorContains(t, err, "log format")

	t.Setenv("LIGATURE_LOG_LEVEL", "loud")
	_, err = Load("")
	assert.ErrorContains(t, err, "log level")
}

func TestInvalidWorkersVariable(t *testing.T) {
	t.Setenv("LIGATURE_LOAD_WORKERS", "four")
	_, err := Load("")
	assert.ErrorContains(t, err, "LIGATURE_LOAD_WORKERS")

	t.Setenv("LIGATURE_LOAD_WORKERS", "0")
	_, err = Load("")
	assert.ErrorContains(t, err, "load workers")
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "error"
	logger := cfg.Logger(os.Stderr)
	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))
}
