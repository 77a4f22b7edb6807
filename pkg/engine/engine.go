// Package engine implements shortcut resolution and the element picker.
//
// An Engine is single-threaded: every Handle method, timer callback and
// storage continuation runs on the scheduler's loop. Callers outside the
// loop (the browser bridge, stdin commands) post into it.
package engine

import (
	"sort"

	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/cache"
	"github.com/entrhq/keyreach/pkg/dom"
	"github.com/entrhq/keyreach/pkg/eventloop"
	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/storage"
	"github.com/entrhq/keyreach/pkg/types"
)

// State is the picker mode.
type State int

const (
	// StateIdle listens for shortcuts and the begin-picking signal.
	StateIdle State = iota
	// StatePicking highlights hovered elements and takes the next click as the selection.
	StatePicking
	// StateAwaitingChord takes the next non-modifier keydown as the chord.
	StateAwaitingChord
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePicking:
		return "picking"
	case StateAwaitingChord:
		return "awaiting_chord"
	default:
		return "idle"
	}
}

const eventBufferSize = 64

// highlight remembers an element outlined by the engine and the outline it
// had before.
type highlight struct {
	el       dom.Element
	previous string
}

// flash is a pending click highlight and the cancel func of its restore.
type flash struct {
	h      *highlight
	cancel func()
}

// Engine is the per-page shortcut and picker state machine.
type Engine struct {
	doc       dom.Document
	cache     *cache.Cache
	store     storage.Store
	sched     eventloop.Scheduler
	announcer *announce.Announcer
	opts      Options
	logger    *logging.Logger
	events    chan types.Event

	state    State
	hovered  *highlight
	selected *highlight
	flashes  map[string]*flash // by selector

	// Selection awaiting a chord
	pendingSelector string
	pendingDomain   string
	cancelTimeout   func()
}

// New creates an engine for doc. It registers with the cache so the page
// learns about binding changes, and pushes the initial interception state.
func New(doc dom.Document, c *cache.Cache, store storage.Store, sched eventloop.Scheduler, announcer *announce.Announcer, opts Options, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{
		doc:       doc,
		cache:     c,
		store:     store,
		sched:     sched,
		announcer: announcer,
		opts:      opts.withDefaults(),
		logger:    logger,
		events:    make(chan types.Event, eventBufferSize),
		flashes:   make(map[string]*flash),
	}
	c.OnChange(func(binding.List) {
		sched.Post(e.syncInterception)
	})
	sched.Post(e.syncInterception)
	return e
}

// State returns the current mode.
func (e *Engine) State() State {
	return e.state
}

// Events returns the channel engine events are published on. Events are
// dropped when nobody drains it.
func (e *Engine) Events() <-chan types.Event {
	return e.events
}

func (e *Engine) emit(ev types.Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Debugf("event buffer full, dropping %s event", ev.Type)
	}
}

func (e *Engine) setState(s State) {
	if e.state == s {
		return
	}
	e.logger.Debugf("state %s -> %s", e.state, s)
	e.state = s
	e.emit(types.NewStateChangedEvent(s.String()))
	e.syncInterception()
}

// syncInterception tells the page which events to swallow.
func (e *Engine) syncInterception() {
	state := dom.Interception{
		Picking:      e.state == StatePicking,
		CaptureChord: e.state == StateAwaitingChord,
		Chords:       binding.ChordsFor(e.doc.Hostname(), e.cache.Snapshot()),
		Commands:     e.commandChords(),
	}
	if err := e.doc.Intercept(state); err != nil {
		e.logger.Warnf("failed to update page interception: %v", err)
	}
}

func (e *Engine) commandChords() []string {
	chords := make([]string, 0, len(e.opts.Commands))
	for c := range e.opts.Commands {
		chords = append(chords, c)
	}
	sort.Strings(chords)
	return chords
}

func (e *Engine) outline(el dom.Element, value string) *highlight {
	h := &highlight{el: el, previous: el.Outline()}
	if err := el.SetOutline(value); err != nil {
		e.logger.Warnf("failed to set outline: %v", err)
	}
	return h
}

// restore puts back the outline h replaced and releases the element.
func (e *Engine) restore(h *highlight) {
	if h == nil {
		return
	}
	if err := h.el.SetOutline(h.previous); err != nil {
		e.logger.Warnf("failed to restore outline: %v", err)
	}
	h.el.Release()
}

// release drops h without touching the page.
func release(h *highlight) {
	if h != nil {
		h.el.Release()
	}
}
