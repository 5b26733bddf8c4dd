package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all logevents configuration.
type Config struct {
	// SettingsPath is the per-event settings file.
	SettingsPath string `yaml:"settings_path"`

	// TrackLocation records call sites of sends and triggers.
	TrackLocation bool `yaml:"track_location"`

	// Watch reloads the settings file when it changes on disk.
	Watch bool `yaml:"watch"`

	// PruneStale drops persisted entries of unregistered types on save.
	PruneStale bool `yaml:"prune_stale"`

	Editor EditorConfig `yaml:"editor"`

	// Logging configures the backend and internal diagnostics.
	Logging LoggingConfig `yaml:"logging"`
}

// EditorConfig configures the settings editor.
type EditorConfig struct {
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SettingsPath:  "assets/log_settings.yaml",
		TrackLocation: true,

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("LOGEVENTS_SETTINGS_PATH"); path != "" {
		c.SettingsPath = path
	}
	if level := os.Getenv("LOGEVENTS_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("LOGEVENTS_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
	envBool("LOGEVENTS_TRACK_LOCATION", &c.TrackLocation)
	envBool("LOGEVENTS_WATCH", &c.Watch)
}

// envBool sets *dst from a boolean variable; unparsable values are ignored.
func envBool(name string, dst *bool) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}

// ValidLevels lists the accepted backend levels.
var ValidLevels = []string{"trace", "debug", "info", "warn", "error"}

// ValidFormats lists the supported log encodings.
var ValidFormats = []string{"console", "json"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.SettingsPath == "" {
		return fmt.Errorf("settings_path must not be empty")
	}

	validFormat := false
	for _, f := range ValidFormats {
		if c.Logging.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}

	validLevel := false
	for _, l := range ValidLevels {
		if strings.EqualFold(c.Logging.Level, l) {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}

	return nil
}
