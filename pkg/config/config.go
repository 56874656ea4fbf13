// Package config loads learnlog settings from the environment and the
// roadmap catalog from a TOML or YAML file.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultDir holds the database when LEARNLOG_DB is not set.
const DefaultDir = ".learnlog"

// Config holds settings read from LEARNLOG_* environment variables.
type Config struct {
	DBPath      string `envconfig:"LEARNLOG_DB"`
	CatalogPath string `envconfig:"LEARNLOG_CATALOG"`
	LogLevel    string `envconfig:"LEARNLOG_LOG_LEVEL" default:"warn"`
	// LogFormat is "console" or "json".
	LogFormat        string        `envconfig:"LEARNLOG_LOG_FORMAT" default:"console"`
	AutoSaveInterval time.Duration `envconfig:"LEARNLOG_AUTOSAVE_INTERVAL" default:"30s"`
	QuizSize         int           `envconfig:"LEARNLOG_QUIZ_SIZE" default:"5"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(DefaultDir, "learnlog.db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.AutoSaveInterval <= 0 {
		return fmt.Errorf("LEARNLOG_AUTOSAVE_INTERVAL must be positive, got %s", c.AutoSaveInterval)
	}
	if c.QuizSize < 0 {
		return fmt.Errorf("LEARNLOG_QUIZ_SIZE must not be negative, got %d", c.QuizSize)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("LEARNLOG_LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// UsesDefaultDB reports whether the database lives in DefaultDir.
func (c *Config) UsesDefaultDB() bool {
	return filepath.Dir(c.DBPath) == DefaultDir
}
