package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig().DefaultStrength, cfg.DefaultStrength)
}

func TestValidateRejectsOutOfRangeStrength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultStrength = 99
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownVersion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultVersion = 3
	require.Error(t, cfg.Validate())
}

func TestLoadParsesTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_strength = 20\nlog_level = \"debug\"\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 20, cfg.DefaultStrength)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadParsesYAMLByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_strength: 7\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.DefaultStrength)
}

func TestLoaderWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_strength = 5\n"), 0600))

	loader := NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	require.NoError(t, loader.Watch())
	defer loader.Close()

	reloaded := make(chan *Config, 1)
	loader.OnChange(func(c *Config) { reloaded <- c })

	require.NoError(t, os.WriteFile(path, []byte("default_strength = 25\n"), 0600))

	select {
	case cfg := <-reloaded:
		require.Equal(t, 25, cfg.DefaultStrength)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestLoadOrCreateWritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg, created, err := LoadOrCreate(path)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, DefaultConfig().DefaultStrength, cfg.DefaultStrength)

	_, err = os.Stat(path)
	require.NoError(t, err)
}
