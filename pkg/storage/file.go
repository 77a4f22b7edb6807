package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const fileFormatVersion = "1.0"

// fileDocument is the on-disk layout of a FileStore.
type fileDocument struct {
	Version string                     `json:"version"`
	Keys    map[string]json.RawMessage `json:"keys"`
}

// FileStore implements Store using a JSON file. Every read goes to disk, so
// writes by other processes are always visible; a file watcher turns those
// writes into change notifications.
type FileStore struct {
	*notifier

	path    string
	mu      sync.Mutex
	closed  bool
	watcher *fileWatcher
	opts    options
}

// DefaultFilePath returns ~/.keyreach/store.json.
func DefaultFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".keyreach", "store.json"), nil
}

// NewFileStore opens a file-based store. If path is empty, defaults to
// ~/.keyreach/store.json. A missing file is an empty store.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		p, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	o := buildOptions(opts)
	s := &FileStore{
		notifier: newNotifier(),
		path:     path,
		opts:     o,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	values, err := s.readAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load store from %s: %w", path, err)
	}
	s.prime(values)

	if o.watch {
		w, err := watchFile(path, o.debounce, s.reload, o.logger)
		if err != nil {
			return nil, err
		}
		s.watcher = w
	}

	return s, nil
}

// Path returns the file path of the store.
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the value stored under key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}

	values, err := s.readAll()
	if err != nil {
		return nil, err
	}
	return values[key], nil
}

// Set stores value under key.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Update(ctx, key, func([]byte) ([]byte, error) { return value, nil })
}

// Update performs a read-modify-write of key and saves atomically.
func (s *FileStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	values, err := s.readAll()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err := fn(values[key])
	if err != nil {
		s.mu.Unlock()
		return err
	}
	next, err = compactJSON(next)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("value for %q is not valid JSON: %w", key, err)
	}
	values[key] = next
	if err := s.writeAll(values); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.record(key, next)
	return nil
}

// Close stops the watcher.
func (s *FileStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}

// reload re-reads the file after an external change.
func (s *FileStore) reload() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	values, err := s.readAll()
	s.mu.Unlock()
	if err != nil {
		// A half-written foreign file is retried on its next event
		s.opts.logger.Warnf("failed to reload %s: %v", s.path, err)
		return
	}
	s.reconcile(values)
}

// readAll loads every key. Callers hold s.mu.
func (s *FileStore) readAll() (map[string][]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string][]byte), nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode store file: %w", err)
	}

	values := make(map[string][]byte, len(doc.Keys))
	for k, v := range doc.Keys {
		compacted, err := compactJSON(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode value for %q: %w", k, err)
		}
		values[k] = compacted
	}
	return values, nil
}

// compactJSON strips insignificant whitespace so values read back from an
// indented file compare equal to the bytes that were written.
func compactJSON(v []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeAll saves every key through a temp file and rename. Callers hold s.mu.
func (s *FileStore) writeAll(values map[string][]byte) error {
	doc := fileDocument{
		Version: fileFormatVersion,
		Keys:    make(map[string]json.RawMessage, len(values)),
	}
	for k, v := range values {
		doc.Keys[k] = json.RawMessage(v)
	}

	dir := filepath.Dir(s.path)
	file, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tempPath := file.Name()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
