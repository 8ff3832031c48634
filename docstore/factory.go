package docstore

import (
	"fmt"
	"path/filepath"
)

// Config selects and configures a store backend.
type Config struct {
	// Backend is "memory" (default) or "sqlite".
	Backend string `yaml:"backend"`
	// Path is the SQLite database file, or a directory in which "odm.db" is
	// created. Ignored by the memory backend.
	Path string `yaml:"path"`
}

// Open creates a Store based on the backend name.
//
// Supported backends:
//
//	"memory" - In-memory (ephemeral, for testing)
//	"sqlite" - SQLite database at Path
func Open(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryStore(), nil
	case "sqlite":
		path := cfg.Path
		if path == "" {
			return nil, fmt.Errorf("sqlite backend requires a path")
		}
		if path != ":memory:" && filepath.Ext(path) == "" {
			path = filepath.Join(path, "odm.db")
		}
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown store backend: %q (supported: memory, sqlite)", cfg.Backend)
	}
}
