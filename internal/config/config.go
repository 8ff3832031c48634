// Package config loads the odmctl configuration file.
//
// A configuration file is YAML:
//
//	store:
//	  backend: sqlite
//	  path: ./data
//	log:
//	  level: debug
//	  format: json
//	pool:
//	  workers: 8
//	  queue_size: 32
//	  wait_timeout: 5s
//
// Every key is optional; missing keys keep their Default value.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/CaliLuke/go-odm/docstore"
	"github.com/CaliLuke/go-odm/odm"
)

// Config is the complete odmctl configuration.
type Config struct {
	Store docstore.Config `yaml:"store"`
	Log   LogConfig       `yaml:"log"`
	Pool  odm.PoolConfig  `yaml:"pool"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// DefaultStorePath is the SQLite file used when none is configured.
const DefaultStorePath = "odm.db"

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Store: docstore.Config{Backend: "sqlite", Path: DefaultStorePath},
		Log:   LogConfig{Level: "warn", Format: "text"},
		Pool:  odm.DefaultPoolConfig(),
	}
}

// Load reads the configuration file at path on top of Default.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration data on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks field values that decoding alone cannot.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "memory", "":
	case "sqlite":
		if c.Store.Path == "" {
			return errors.New("store.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("store.backend %q: must be memory or sqlite", c.Store.Backend)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json", "":
	default:
		return fmt.Errorf("log.format %q: must be text or json", c.Log.Format)
	}
	if c.Pool.Workers <= 0 {
		return fmt.Errorf("pool.workers (%d) must be positive", c.Pool.Workers)
	}
	if c.Pool.QueueSize < 0 {
		return fmt.Errorf("pool.queue_size (%d) must not be negative", c.Pool.QueueSize)
	}
	return nil
}

// ParseLevel maps a level name to its slog.Level. The empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level %q: must be debug, info, warn or error", s)
}

// NewLogger builds a logger writing to w as configured by l.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}
