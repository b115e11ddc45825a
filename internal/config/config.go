// Package config loads CLI settings from YAML and LIGATURE_* environment
// variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the CLI settings.
type Config struct {
	// DataDir is the badger directory. Empty keeps everything in memory.
	DataDir string `yaml:"data_dir"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json

	// DefaultCollection is used when a command names no collection.
	DefaultCollection string `yaml:"default_collection"`

	Load LoadConfig `yaml:"load"`
}

// LoadConfig tunes bulk loading.
type LoadConfig struct {
	Workers int `yaml:"workers"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		DefaultCollection: "urn:ligature:default",
		Load: LoadConfig{
			Workers: 4,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if dir, ok := os.LookupEnv("LIGATURE_DATA_DIR"); ok {
		c.DataDir = dir
	}
	if val := os.Getenv("LIGATURE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}
	if val := os.Getenv("LIGATURE_LOG_FORMAT"); val != "" {
		c.LogFormat = val
	}
	if val := os.Getenv("LIGATURE_DEFAULT_COLLECTION"); val != "" {
		c.DefaultCollection = val
	}
	if val := os.Getenv("LIGATURE_LOAD_WORKERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid LIGATURE_LOAD_WORKERS %q: %w", val, err)
		}
		c.Load.Workers = n
	}
	return nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	if c.Load.Workers < 1 {
		return fmt.Errorf("load workers must be positive, got %d", c.Load.Workers)
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return level, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Logger builds a logger writing to w per LogLevel and LogFormat.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
