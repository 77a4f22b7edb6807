package eventloop

import (
	"sort"
	"time"
)

// Manual is a deterministic Scheduler for tests. Posted callbacks and Go
// work run immediately on the caller's goroutine; timers fire only when
// Advance moves the clock past them.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	due       time.Duration
	seq       int
	fn        func()
	cancelled bool
}

// NewManual creates a manual scheduler at time zero.
func NewManual() *Manual {
	return &Manual{}
}

// Post runs fn immediately.
func (m *Manual) Post(fn func()) {
	if fn != nil {
		fn()
	}
}

// After registers fn to run once Advance passes d from now.
func (m *Manual) After(d time.Duration, fn func()) func() {
	m.seq++
	t := &manualTimer{due: m.now + d, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return func() { t.cancelled = true }
}

// Go runs work and its continuation immediately.
func (m *Manual) Go(work func() func()) {
	if then := work(); then != nil {
		then()
	}
}

// Advance moves the clock forward by d, firing due timers in order.
// Timers registered by fired callbacks fire too if they fall due.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.nextDue(target)
		if t == nil {
			break
		}
		m.now = t.due
		if !t.cancelled {
			t.fn()
		}
	}
	m.now = target
}

// Pending returns how many live timers are waiting.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.cancelled {
			n++
		}
	}
	return n
}

func (m *Manual) nextDue(target time.Duration) *manualTimer {
	sort.SliceStable(m.timers, func(i, j int) bool {
		if m.timers[i].due == m.timers[j].due {
			return m.timers[i].seq < m.timers[j].seq
		}
		return m.timers[i].due < m.timers[j].due
	})
	if len(m.timers) == 0 || m.timers[0].due > target {
		return nil
	}
	t := m.timers[0]
	m.timers = m.timers[1:]
	return t
}
