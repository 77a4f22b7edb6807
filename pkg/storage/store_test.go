package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects changes delivered to a listener.
type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) listen(c Change) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
}

func (r *recorder) snapshot() []Change {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Change(nil), r.changes...)
}

func (r *recorder) last() (Change, bool) {
	all := r.snapshot()
	if len(all) == 0 {
		return Change{}, false
	}
	return all[len(all)-1], true
}

// storeFactories builds each backend over a fresh directory. Watchers are
// disabled here; cross-process behaviour has its own tests.
var storeFactories = map[string]func(t *testing.T) Store{
	"memory": func(t *testing.T) Store {
		return NewMemoryStore()
	},
	"file": func(t *testing.T) Store {
		s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"), WithoutWatch())
		require.NoError(t, err)
		return s
	},
	"sqlite": func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "store.db"), WithoutWatch())
		require.NoError(t, err)
		return s
	},
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			rec := &recorder{}
			s.Subscribe(rec.listen)

			value, err := s.Get(ctx, "keyConfig")
			require.NoError(t, err)
			assert.Nil(t, value, "absent key returns nil")

			require.NoError(t, s.Set(ctx, "keyConfig", []byte(`[]`)))
			require.NoError(t, s.Update(ctx, "keyConfig", func(current []byte) ([]byte, error) {
				assert.Equal(t, `[]`, string(current))
				return []byte(`[{"id":"#a","key":"K"}]`), nil
			}))

			value, err = s.Get(ctx, "keyConfig")
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"#a","key":"K"}]`, string(value))

			changes := rec.snapshot()
			require.Len(t, changes, 2)
			assert.Nil(t, changes[0].OldValue)
			assert.Equal(t, "keyConfig", changes[1].Key)
			assert.Equal(t, `[]`, string(changes[1].OldValue))
			assert.JSONEq(t, `[{"id":"#a","key":"K"}]`, string(changes[1].NewValue))
		})
	}
}

func TestStoreUpdateErrorLeavesValue(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			require.NoError(t, s.Set(ctx, "k", []byte(`1`)))
			err := s.Update(ctx, "k", func([]byte) ([]byte, error) { return nil, boom })
			assert.ErrorIs(t, err, boom)

			value, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `1`, string(value))
		})
	}
}

func TestStoreIdenticalWriteDoesNotNotify(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			defer s.Close()

			require.NoError(t, s.Set(ctx, "k", []byte(`[1]`)))
			rec := &recorder{}
			s.Subscribe(rec.listen)
			require.NoError(t, s.Set(ctx, "k", []byte(`[1]`)))
			assert.Empty(t, rec.snapshot())
		})
	}
}

func TestStoreClosed(t *testing.T) {
	ctx := context.Background()

	for name, factory := range storeFactories {
		t.Run(name, func(t *testing.T) {
			s := factory(t)
			require.NoError(t, s.Close())

			_, err := s.Get(ctx, "k")
			assert.ErrorIs(t, err, ErrClosed)
			assert.ErrorIs(t, s.Set(ctx, "k", []byte(`1`)), ErrClosed)
		})
	}
}

func TestFileStorePersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	first, err := NewFileStore(path, WithoutWatch())
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "keyConfig", []byte(`[{"id":"#a","key":"K"}]`)))
	require.NoError(t, first.Close())

	second, err := NewFileStore(path, WithoutWatch())
	require.NoError(t, err)
	defer second.Close()

	value, err := second.Get(ctx, "keyConfig")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"#a","key":"K"}]`, string(value))
}

func TestFileStoreRejectsInvalidJSON(t *testing.T) {
	s, err := NewFileStore(filepath.Join(t.TempDir(), "store.json"), WithoutWatch())
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Set(context.Background(), "k", []byte(`{not json`)))
}

func TestWatchedStoresSeeOtherWriters(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	openers := map[string]func(opts ...Option) (Store, error){
		"file": func(opts ...Option) (Store, error) {
			return NewFileStore(filepath.Join(dir, "store.json"), opts...)
		},
		"sqlite": func(opts ...Option) (Store, error) {
			return NewSQLiteStore(filepath.Join(dir, "store.db"), opts...)
		},
	}

	for name, open := range openers {
		t.Run(name, func(t *testing.T) {
			reader, err := open(WithDebounce(20 * time.Millisecond))
			require.NoError(t, err)
			defer reader.Close()

			writer, err := open(WithoutWatch())
			require.NoError(t, err)
			defer writer.Close()

			rec := &recorder{}
			reader.Subscribe(rec.listen)

			require.NoError(t, writer.Set(ctx, "keyConfig", []byte(`[{"id":"#b","key":"B"}]`)))

			require.Eventually(t, func() bool {
				c, ok := rec.last()
				return ok && c.Key == "keyConfig" && string(c.NewValue) == `[{"id":"#b","key":"B"}]`
			}, 3*time.Second, 20*time.Millisecond)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(BackendMemory, "")
	require.NoError(t, err)
	s.Close()

	s, err = Open(BackendFile, filepath.Join(t.TempDir(), "s.json"), WithoutWatch())
	require.NoError(t, err)
	s.Close()

	_, err = Open("redis", "")
	assert.Error(t, err)
}
