package storage

import (
	"time"

	"github.com/entrhq/keyreach/pkg/logging"
)

// DefaultDebounce coalesces bursts of file events into one reload.
const DefaultDebounce = 100 * time.Millisecond

type options struct {
	logger   *logging.Logger
	debounce time.Duration
	watch    bool
}

// Option configures a file-backed store.
type Option func(*options)

// WithLogger sets the logger used for background watch errors.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebounce sets how long the watcher waits for file events to settle.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

// WithoutWatch disables notifications for writes made by other processes.
func WithoutWatch() Option {
	return func(o *options) {
		o.watch = false
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logging.Discard(),
		debounce: DefaultDebounce,
		watch:    true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
