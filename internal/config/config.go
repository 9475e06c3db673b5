// Package config holds CLI configuration, loaded from a YAML file with
// environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all LegalAI client configuration.
type Config struct {
	// API is the backend connection.
	API APIConfig `yaml:"api"`

	// Archive is the local transcript archive.
	Archive ArchiveConfig `yaml:"archive"`

	// Logging controls the client's log output.
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig configures the backend connection.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// ArchiveConfig configures the local exchange archive.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty disables the file sink
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8000/api/v1",
			Timeout: "60s",
		},
		Archive: ArchiveConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info"},
	}
}

// DefaultPath returns ~/.legalai/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".legalai", "config.yaml"), nil
}

// Load reads the config file at path, layering it over the defaults and
// then applying environment overrides. A missing file is fine: defaults
// plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// Environment variables take precedence over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("LEGALAI_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("LEGALAI_TIMEOUT"); v != "" {
		c.API.Timeout = v
	}
	if v := os.Getenv("LEGALAI_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LEGALAI_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("LEGALAI_ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
}

// RequestTimeout parses API.Timeout, falling back to 60s on garbage.
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Save writes the config back as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
