package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Backend names a Store implementation.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// Open creates the store for backend. An empty path selects the backend's
// default location under ~/.keyreach.
func Open(backend Backend, path string, opts ...Option) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(path, opts...)
	case BackendSQLite:
		if path == "" {
			def, err := DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = filepath.Join(filepath.Dir(def), "store.db")
		}
		return NewSQLiteStore(path, opts...)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (must be one of: %s)", backend, strings.Join(BackendNames(), ", "))
	}
}

// BackendNames lists the supported backends.
func BackendNames() []string {
	return []string{string(BackendFile), string(BackendSQLite), string(BackendMemory)}
}
