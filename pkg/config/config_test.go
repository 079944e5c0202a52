package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def, cfg)
	assert.Equal(t, "fr", cfg.Language)
	assert.Equal(t, 60*time.Second, cfg.TickInterval)
	assert.Equal(t, 8*time.Hour, cfg.MaxTaskDuration)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Language = "en"
	cfg.DataDir = "/tmp/ptt-data"
	cfg.TickInterval = 30 * time.Second
	cfg.MetricsAddr = "127.0.0.1:9464"

	require.NoError(t, Save(cfg, path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "tick_interval: 30s")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: en\nincrement: 2m\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, 2*time.Minute, cfg.Increment)
	assert.Equal(t, 60*time.Second, cfg.TickInterval)
	assert.Equal(t, "Tasks", cfg.Calendar)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PTT_LANGUAGE", "de")
	t.Setenv("PTT_TICK_INTERVAL", "5s")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.LeaseRefreshInterval = cfg.LeaseStaleAfter
	assert.Error(t, cfg.Validate(), "refresh must be strictly shorter than staleness")

	cfg = DefaultConfig()
	cfg.Increment = 0
	assert.Error(t, cfg.Validate())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("lease_refresh_interval: 2m\n"), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: [unterminated\n"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
