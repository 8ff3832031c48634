package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, DefaultStorePath, cfg.Store.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Pool.Workers)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "odmctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: sqlite
  path: ./data
log:
  level: debug
  format: json
pool:
  workers: 8
  wait_timeout: 5s
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, "./data", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8, cfg.Pool.Workers)
	assert.Equal(t, 64, cfg.Pool.QueueSize, "missing keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.Pool.WaitTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "stroe:\n  backend: memory\n", "failed to parse YAML"},
		{"unknown backend", "store:\n  backend: mongo\n", "store.backend"},
		{"sqlite without path", "store:\n  backend: sqlite\n  path: \"\"\n", "store.path"},
		{"bad level", "log:\n  level: loud\n", "log.level"},
		{"bad format", "log:\n  format: xml\n", "log.format"},
		{"no workers", "pool:\n  workers: 0\n", "pool.workers"},
		{"negative queue", "pool:\n  queue_size: -1\n", "pool.queue_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "collection", "users")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"collection":"users"`)

	_, err = LogConfig{Level: "verbose"}.NewLogger(&buf)
	assert.Error(t, err)
}
