// Package eventloop runs callbacks one at a time on a single goroutine.
//
// Page events, timers, store notifications and the continuations of
// off-loop work are all posted to the loop, so handlers never run
// concurrently and need no locking between themselves.
package eventloop

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/entrhq/keyreach/pkg/logging"
)

// Scheduler is the loop surface handlers use.
type Scheduler interface {
	// Post queues fn to run on the loop.
	Post(fn func())

	// After runs fn on the loop once d has elapsed. cancel prevents a
	// callback that has not started yet from running.
	After(d time.Duration, fn func()) (cancel func())

	// Go runs work off the loop and posts the continuation it returns,
	// if any, back onto the loop.
	Go(work func() func())
}

// Loop is the production Scheduler.
type Loop struct {
	logger *logging.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates a loop. Call Run to start processing.
func New(logger *logging.Logger) *Loop {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Loop{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Post queues fn. It never blocks, including when called from the loop.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After posts fn once d has elapsed.
func (l *Loop) After(d time.Duration, fn func()) func() {
	var cancelled atomic.Bool
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if !cancelled.Load() {
				fn()
			}
		})
	})
	return func() {
		cancelled.Store(true)
		timer.Stop()
	}
}

// Go runs work on its own goroutine and posts its continuation.
func (l *Loop) Go(work func() func()) {
	go func() {
		if then := work(); then != nil {
			l.Post(then)
		}
	}()
}

// Run processes callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			fn, ok := l.next()
			if !ok {
				break
			}
			l.run(fn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// run executes fn, keeping the loop alive if it panics.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Errorf("recovered panic in loop callback: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
}
