// Package config handles configuration loading and validation for awmkit.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds the CLI and library configuration.
type Config struct {
	// DatabasePath is the path to the evidence/tag-mapping/settings database.
	DatabasePath string `toml:"database_path" yaml:"database_path" json:"database_path"`

	// EngineCacheDir is where the bundled embedder binary is extracted.
	EngineCacheDir string `toml:"engine_cache_dir" yaml:"engine_cache_dir" json:"engine_cache_dir"`

	// EngineBinaryPath overrides binary discovery with an explicit path.
	EngineBinaryPath string `toml:"engine_binary_path" yaml:"engine_binary_path" json:"engine_binary_path"`

	// FingerprintBinaryPath overrides the fingerprint generator binary.
	FingerprintBinaryPath string `toml:"fingerprint_binary_path" yaml:"fingerprint_binary_path" json:"fingerprint_binary_path"`

	// DefaultStrength is the embed strength used when not specified (1..30).
	DefaultStrength int `toml:"default_strength" yaml:"default_strength" json:"default_strength"`

	// DefaultVersion is the message version used when not specified (1 or 2).
	DefaultVersion int `toml:"default_version" yaml:"default_version" json:"default_version"`

	LogLevel  string `toml:"log_level" yaml:"log_level" json:"log_level"`
	LogFormat string `toml:"log_format" yaml:"log_format" json:"log_format"`

	// DisablePipeIO mirrors AWMKIT_DISABLE_PIPE_IO.
	DisablePipeIO bool `toml:"disable_pipe_io" yaml:"disable_pipe_io" json:"disable_pipe_io"`

	// UILanguage is a passthrough value persisted in app_settings.
	UILanguage string `toml:"ui_language" yaml:"ui_language" json:"ui_language"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    filepath.Join(BaseDir(), "awmkit.db"),
		EngineCacheDir:  filepath.Join(BaseDir(), "engine-cache"),
		DefaultStrength: 12,
		DefaultVersion:  2,
		LogLevel:        "info",
		LogFormat:       "text",
		DisablePipeIO:   false,
		UILanguage:      "en",
	}
}

// BaseDir returns the platform-specific base directory for awmkit state.
func BaseDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("LOCALAPPDATA")
		if appData == "" {
			appData = os.Getenv("APPDATA")
		}
		return filepath.Join(appData, "awmkit")
	default:
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, ".awmkit")
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// Load reads configuration from the specified path. If the file doesn't
// exist, returns default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}
	return loadConfigFromFile(path)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("config: database_path is required")
	}
	if c.DefaultStrength < 1 || c.DefaultStrength > 30 {
		return errors.New("config: default_strength must be in 1..30")
	}
	if c.DefaultVersion != 1 && c.DefaultVersion != 2 {
		return errors.New("config: default_version must be 1 or 2")
	}
	return nil
}

// EnsureDirectories creates the database and engine cache directories
// with owner-only permissions, matching the corpus's permission
// discipline for files that may end up holding key material nearby.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(c.DatabasePath),
		c.EngineCacheDir,
	}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return nil
}
