package storage

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/entrhq/keyreach/pkg/logging"
)

// fileWatcher calls reload after writes to a file settle. The parent
// directory is watched so atomic rename-over writes are seen.
type fileWatcher struct {
	fsWatcher *fsnotify.Watcher
	base      string
	debounce  time.Duration
	reload    func()
	logger    *logging.Logger

	done chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

func watchFile(path string, debounce time.Duration, reload func(), logger *logging.Logger) (*fileWatcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}

	w := &fileWatcher{
		fsWatcher: fsWatcher,
		base:      filepath.Base(absPath),
		debounce:  debounce,
		reload:    reload,
		logger:    logger,
		done:      make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// relevant reports whether an event touches the watched file or its
// SQLite journal. The shared-memory index is skipped since readers touch it.
func (w *fileWatcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) && !ev.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == w.base || name == w.base+"-wal" || name == w.base+"-journal"
}

func (w *fileWatcher) loop() {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("file watcher error: %v", err)
		}
	}
}

func (w *fileWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fsWatcher.Close()
	})
	return err
}
