package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, 2, cfg.Server.RetryMax)
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.BaseURL, cfg.Server.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  base_url: https://ops.example.com\n  timeout: 5s\n  retry_max: 1\nlogging:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://ops.example.com", cfg.Server.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.GetTimeout())
	assert.Equal(t, 1, cfg.Server.RetryMax)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RELATERM_API_URL", "http://10.0.0.5:8000")
	t.Setenv("RELATERM_TIMEOUT", "3s")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:8000", cfg.Server.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.GetTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.BaseURL = "http://plant:8000"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://plant:8000", loaded.Server.BaseURL)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.BaseURL = ""
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Server.RetryMax = -1
	assert.Error(t, cfg.Validate())
}

func TestGetTimeoutFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Timeout = "bogus"
	assert.Equal(t, 15*time.Second, cfg.GetTimeout())
}
