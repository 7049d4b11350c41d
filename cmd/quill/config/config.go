// Package config provides configuration structures for the quill CLI.
package config

import (
	"fmt"
	"time"
)

// Config represents the CLI configuration.
type Config struct {
	// Log level (debug, info, warn, error)
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Notebook conversion settings
	Notebook NotebookConfig `yaml:"notebook" json:"notebook"`

	// Plan rendering settings
	Plan PlanConfig `yaml:"plan" json:"plan"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// NotebookConfig represents notebook conversion configuration.
type NotebookConfig struct {
	DefaultLanguage string `yaml:"default_language" json:"default_language"`
	NBFormat        int    `yaml:"nbformat" json:"nbformat"`
	NBFormatMinor   int    `yaml:"nbformat_minor" json:"nbformat_minor"`
}

// PlanConfig represents plan rendering configuration.
type PlanConfig struct {
	Format       string        `yaml:"format" json:"format"`
	Database     string        `yaml:"database" json:"database"`
	QueryTimeout time.Duration `yaml:"query_timeout" json:"query_timeout"`
}

// MetricsConfig represents metrics configuration.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Address string `yaml:"address" json:"address"`
	Path    string `yaml:"path" json:"path"`
}

// Validate validates the configuration and fills in defaults.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", c.LogLevel)
	}

	if c.Notebook.DefaultLanguage == "" {
		c.Notebook.DefaultLanguage = "sql"
	}
	if c.Notebook.NBFormat <= 0 {
		c.Notebook.NBFormat = 4
	}
	if c.Notebook.NBFormatMinor < 0 {
		c.Notebook.NBFormatMinor = 2
	}

	switch c.Plan.Format {
	case "":
		c.Plan.Format = "dot"
	case "dot", "xdot", "svg", "png":
	default:
		return fmt.Errorf("unsupported plan format: %s", c.Plan.Format)
	}
	if c.Plan.Database == "" {
		c.Plan.Database = ":memory:"
	}
	if c.Plan.QueryTimeout <= 0 {
		c.Plan.QueryTimeout = 5 * time.Minute
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = ":9090"
	}

	return nil
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	// Validate fills every default.
	_ = cfg.Validate()
	return cfg
}
