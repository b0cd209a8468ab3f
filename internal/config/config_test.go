package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange: an empty directory has no config.yml
	dir := t.TempDir()

	// Act
	cfg, err := LoadConfig(dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "rest", cfg.Store.Backend)
	assert.Equal(t, "", cfg.Store.URL)
	assert.Equal(t, "", cfg.Store.Token)
	assert.Equal(t, float64(20), cfg.Store.RateLimit)
	assert.Equal(t, 5, cfg.Store.RateLimitBurst)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Server.AuthSecret)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Empty(t, cfg.Scheduler.ReconcileSpec)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	yml := []byte(`
store:
  backend: memory
  url: https://example.upstash.io
server:
  port: 9090
logger:
  level: debug
  format: json
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), yml, 0o600))
	t.Setenv("STORE_TOKEN", "secret-token")
	t.Setenv("SERVER_PORT", "7070")

	// Act
	cfg, err := LoadConfig(dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "https://example.upstash.io", cfg.Store.URL)
	assert.Equal(t, "secret-token", cfg.Store.Token)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("store: [unclosed"), 0o600))

	_, err := LoadConfig(dir)

	assert.Error(t, err)
}
