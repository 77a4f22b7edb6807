// Package storage provides the persistent key-value store the binding list
// lives in. Stores deliver change notifications for writes made through
// them and, for the file-backed stores, for writes made by other processes.
package storage

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Change describes a new value for a key. OldValue is nil when the key was
// absent; NewValue is nil when the key was removed.
type Change struct {
	Key      string
	OldValue []byte
	NewValue []byte
}

// Listener receives change notifications. Listeners may be called from any
// goroutine and must not block.
type Listener func(Change)

// UpdateFunc computes a new value from the current one (nil when absent).
type UpdateFunc func(current []byte) ([]byte, error)

// Store is a key-value store with change subscription.
type Store interface {
	// Get returns the value stored under key, or nil when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Update performs a read-modify-write of key. Updates made through the
	// same store are serialized.
	Update(ctx context.Context, key string, fn UpdateFunc) error

	// Subscribe registers fn for every change. There is no unsubscribe.
	Subscribe(fn Listener)

	// Close releases the store's resources.
	Close() error
}

// notifier fans changes out to subscribers and remembers the last value
// seen per key so watcher reloads only report real differences.
type notifier struct {
	mu        sync.RWMutex
	listeners []Listener
	known     map[string][]byte
}

func newNotifier() *notifier {
	return &notifier{known: make(map[string][]byte)}
}

func (n *notifier) Subscribe(fn Listener) {
	if fn == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, fn)
}

// record stores value as the last known value for key and notifies
// listeners when it differs from the previous one.
func (n *notifier) record(key string, value []byte) {
	n.mu.Lock()
	old, had := n.known[key]
	if had && bytes.Equal(old, value) {
		n.mu.Unlock()
		return
	}
	if value == nil {
		delete(n.known, key)
	} else {
		n.known[key] = append([]byte(nil), value...)
	}
	listeners := append([]Listener(nil), n.listeners...)
	n.mu.Unlock()

	if !had && value == nil {
		return
	}

	change := Change{Key: key, OldValue: old, NewValue: value}
	for _, fn := range listeners {
		fn(change)
	}
}

// prime sets the last known values without notifying.
func (n *notifier) prime(values map[string][]byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.known = make(map[string][]byte, len(values))
	for k, v := range values {
		n.known[k] = append([]byte(nil), v...)
	}
}

// reconcile diffs a full snapshot against the known values and notifies
// for every key that changed, including keys that disappeared.
func (n *notifier) reconcile(values map[string][]byte) {
	n.mu.RLock()
	var removed []string
	for k := range n.known {
		if _, ok := values[k]; !ok {
			removed = append(removed, k)
		}
	}
	n.mu.RUnlock()

	for k, v := range values {
		n.record(k, v)
	}
	for _, k := range removed {
		n.record(k, nil)
	}
}
