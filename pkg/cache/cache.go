// Package cache keeps an in-memory mirror of the persisted binding list so
// key handling never waits on storage.
//
// The cache subscribes to the store once, at construction, and never
// unsubscribes: its lifetime is the page session's. Until the initial load
// completes it reports an empty list.
package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/storage"
)

// Cache is a subscribed, eventually-consistent mirror of one store key.
type Cache struct {
	store  storage.Store
	key    string
	logger *logging.Logger

	mu        sync.RWMutex
	list      binding.List
	loaded    bool
	gen       uint64
	listeners []func(binding.List)
}

// New creates a cache over store's binding key and subscribes to changes.
func New(store storage.Store, logger *logging.Logger) *Cache {
	if logger == nil {
		logger = logging.Discard()
	}
	c := &Cache{
		store:  store,
		key:    binding.StorageKey,
		logger: logger,
		list:   binding.List{},
	}
	store.Subscribe(c.onStoreChange)
	return c
}

// Start loads the list in the background.
func (c *Cache) Start(ctx context.Context) {
	go func() {
		if err := c.Load(ctx); err != nil {
			c.logger.Warnf("initial load failed, keeping %d cached bindings: %v", len(c.Snapshot()), err)
		}
	}()
}

// Load reads the list from the store. On failure the cached list is kept.
// A result is dropped if a change notification arrived while it was read.
func (c *Cache) Load(ctx context.Context) error {
	c.mu.RLock()
	startGen := c.gen
	c.mu.RUnlock()

	raw, err := c.store.Get(ctx, c.key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.key, err)
	}
	list, err := binding.Decode(raw)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.gen != startGen {
		c.loaded = true
		c.mu.Unlock()
		c.logger.Debugf("discarding initial load superseded by a change notification")
		return nil
	}
	c.loaded = true
	listeners := c.assignLocked(list)
	c.mu.Unlock()

	notify(listeners, list)
	c.logger.Infof("loaded %d bindings", len(list))
	return nil
}

// Snapshot returns a copy of the current list. It never fails; before the
// first load it is empty.
func (c *Cache) Snapshot() binding.List {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Clone()
}

// Loaded reports whether the initial load or a notification has populated the cache.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// OnChange registers fn to run after every update of the cached list.
func (c *Cache) OnChange(fn func(binding.List)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

func (c *Cache) onStoreChange(change storage.Change) {
	if change.Key != c.key {
		return
	}
	list, err := binding.Decode(change.NewValue)
	if err != nil {
		c.logger.Warnf("ignoring undecodable %s update: %v", c.key, err)
		return
	}
	c.mu.Lock()
	c.loaded = true
	listeners := c.assignLocked(list)
	c.mu.Unlock()
	notify(listeners, list)
	c.logger.Debugf("applied store update: %d bindings", len(list))
}

// assignLocked installs list and returns the listeners to notify. Callers hold c.mu.
func (c *Cache) assignLocked(list binding.List) []func(binding.List) {
	c.list = list.Clone()
	c.gen++
	return append([]func(binding.List){}, c.listeners...)
}

func notify(listeners []func(binding.List), list binding.List) {
	for _, fn := range listeners {
		fn(list.Clone())
	}
}
