package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/cache"
	"github.com/entrhq/keyreach/pkg/chord"
	"github.com/entrhq/keyreach/pkg/dom/htmldoc"
	"github.com/entrhq/keyreach/pkg/eventloop"
	"github.com/entrhq/keyreach/pkg/storage"
	"github.com/entrhq/keyreach/pkg/types"
)

const announceDelay = 50 * time.Millisecond

const testPage = `<html><body>
	<button id="submit-btn" style="color: red">Submit</button>
	<button aria-label="Close dialog">x</button>
	<a class="nav-link" href="/home">Home</a>
	<input id="search" type="text">
</body></html>`

type harness struct {
	t     *testing.T
	doc   *htmldoc.Document
	store *storage.MemoryStore
	cache *cache.Cache
	sched *eventloop.Manual
	eng   *Engine
}

func newHarness(t *testing.T, host string, list binding.List, opts Options) *harness {
	t.Helper()

	doc, err := htmldoc.ParseString(testPage, host)
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	if list != nil {
		raw, err := binding.Encode(list)
		require.NoError(t, err)
		require.NoError(t, store.Set(context.Background(), binding.StorageKey, raw))
	}

	c := cache.New(store, nil)
	require.NoError(t, c.Load(context.Background()))

	sched := eventloop.NewManual()
	ann := announce.New(doc, sched, announceDelay, nil)

	return &harness{
		t:     t,
		doc:   doc,
		store: store,
		cache: c,
		sched: sched,
		eng:   New(doc, c, store, sched, ann, opts, nil),
	}
}

// spoken advances past the announce delay and returns the live region text.
func (h *harness) spoken() string {
	h.sched.Advance(announceDelay)
	return h.doc.LiveText()
}

func (h *harness) stored() binding.List {
	h.t.Helper()
	raw, err := h.store.Get(context.Background(), binding.StorageKey)
	require.NoError(h.t, err)
	list, err := binding.Decode(raw)
	require.NoError(h.t, err)
	return list
}

func (h *harness) element(sel string) *htmldoc.Element {
	h.t.Helper()
	el := h.doc.Find(sel)
	require.NotNil(h.t, el, "no element for %s", sel)
	return el
}

func drain(ch <-chan types.Event) []types.Event {
	var out []types.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func eventTypes(events []types.Event) []types.EventType {
	out := make([]types.EventType, 0, len(events))
	for _, ev := range events {
		if ev.Type != types.EventTypeStateChanged {
			out = append(out, ev.Type)
		}
	}
	return out
}

func TestShortcutClicksAndFlashes(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: "#submit-btn", Key: "Ctrl+Enter"},
	}, DefaultOptions())

	consumed := h.eng.HandleKeyDown(chord.KeyEvent{Key: "Enter", Ctrl: true}, false)
	require.True(t, consumed)

	btn := h.element("#submit-btn")
	clicks := h.doc.Clicks()
	require.Len(t, clicks, 1)
	assert.True(t, btn.Same(clicks[0]))
	assert.True(t, btn.Same(h.doc.Focused()))
	assert.Equal(t, "3px solid yellow", btn.Outline())

	assert.Equal(t, announce.MsgClicked, h.spoken())
	assert.Equal(t, "3px solid yellow", btn.Outline(), "flash lasts the highlight delay")

	h.sched.Advance(200*time.Millisecond - announceDelay)
	assert.Equal(t, "", btn.Outline())
	assert.Equal(t, "color: red", btn.Attr("style"))

	events := drain(h.eng.Events())
	require.Len(t, events, 1)
	assert.Equal(t, types.NewClickedEvent("#submit-btn", "Ctrl+Enter", "example.com"), events[0])
}

func TestFlashRestoresPreviousOutline(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: ".nav-link", Key: "H"},
	}, DefaultOptions())

	link := h.element(".nav-link")
	require.NoError(t, link.SetOutline("1px dotted blue"))

	require.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "h"}, false))
	assert.Equal(t, "3px solid yellow", link.Outline())

	h.sched.Advance(time.Second)
	assert.Equal(t, "1px dotted blue", link.Outline())
}

func TestRepeatPressKeepsOriginalOutline(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: "#submit-btn", Key: "Ctrl+Enter"},
	}, DefaultOptions())
	btn := h.element("#submit-btn")

	require.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "Enter", Ctrl: true}, false))
	h.sched.Advance(100 * time.Millisecond)
	require.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "Enter", Ctrl: true}, false))
	assert.Equal(t, "3px solid yellow", btn.Outline())

	// The second press restarts the delay
	h.sched.Advance(150 * time.Millisecond)
	assert.Equal(t, "3px solid yellow", btn.Outline())

	h.sched.Advance(time.Second)
	assert.Equal(t, "", btn.Outline())
	assert.Equal(t, "color: red", btn.Attr("style"))
	assert.Len(t, h.doc.Released(), 2)
}

func TestMissingElementAnnouncesNotFound(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: "#gone", Key: "Ctrl+K"},
	}, DefaultOptions())

	consumed := h.eng.HandleKeyDown(chord.KeyEvent{Key: "k", Ctrl: true}, false)
	assert.True(t, consumed)
	assert.Empty(t, h.doc.Clicks())
	assert.Equal(t, announce.MsgNotFound, h.spoken())

	assert.Equal(t, []types.EventType{types.EventTypeSelectorMiss}, eventTypes(drain(h.eng.Events())))
}

func TestInvalidSelectorIsTreatedAsMissing(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: "##bad[", Key: "Ctrl+K"},
	}, DefaultOptions())

	assert.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "k", Ctrl: true}, false))
	assert.Empty(t, h.doc.Clicks())
	assert.Equal(t, announce.MsgNotFound, h.spoken())
}

func TestKeyDownWithoutEffect(t *testing.T) {
	list := binding.List{
		{Selector: "#submit-btn", Key: "Ctrl+K", Domain: "other.com"},
		{Selector: "", Key: "Ctrl+J"},
		{Selector: "#submit-btn", Key: "Ctrl+L"},
	}

	tests := []struct {
		name     string
		list     binding.List
		event    chord.KeyEvent
		editable bool
	}{
		{name: "empty list", list: binding.List{}, event: chord.KeyEvent{Key: "k", Ctrl: true}},
		{name: "no stored list", list: nil, event: chord.KeyEvent{Key: "Enter"}},
		{name: "other domain", list: list, event: chord.KeyEvent{Key: "k", Ctrl: true}},
		{name: "empty slot", list: list, event: chord.KeyEvent{Key: "j", Ctrl: true}},
		{name: "modifier only", list: list, event: chord.KeyEvent{Key: "Control", Ctrl: true}},
		{name: "unbound chord", list: list, event: chord.KeyEvent{Key: "l", Ctrl: true, Shift: true}},
		{name: "editable target", list: list, event: chord.KeyEvent{Key: "l", Ctrl: true}, editable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "example.com", tt.list, DefaultOptions())

			assert.False(t, h.eng.HandleKeyDown(tt.event, tt.editable))
			assert.Empty(t, h.doc.Clicks())
			assert.Zero(t, h.sched.Pending())
			h.sched.Advance(time.Second)
			assert.Empty(t, h.doc.Announcements())
			assert.Empty(t, drain(h.eng.Events()))
		})
	}
}

func TestGlobalBindingMatchesEveryDomain(t *testing.T) {
	list := binding.List{{Selector: "#submit-btn", Key: "Ctrl+K"}}

	for _, host := range []string{"example.com", "other.com"} {
		h := newHarness(t, host, list, DefaultOptions())
		assert.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "k", Ctrl: true}, false), host)
		assert.Len(t, h.doc.Clicks(), 1, host)
	}
}

func TestFirstMatchWins(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: ".nav-link", Key: "Ctrl+K"},
		{Selector: "#submit-btn", Key: "Ctrl+K", Domain: "example.com"},
	}, DefaultOptions())

	require.True(t, h.eng.HandleKeyDown(chord.KeyEvent{Key: "k", Ctrl: true}, false))
	require.Len(t, h.doc.Clicks(), 1)
	assert.True(t, h.element(".nav-link").Same(h.doc.Clicks()[0]))
}

func TestCommandChordWorksInEditableFields(t *testing.T) {
	h := newHarness(t, "example.com", nil, DefaultOptions())

	consumed := h.eng.HandleKeyDown(chord.KeyEvent{Key: "P", Alt: true, Shift: true}, true)
	assert.True(t, consumed)
	assert.Equal(t, StatePicking, h.eng.State())
}

func TestInterceptionTracksBindingsAndState(t *testing.T) {
	h := newHarness(t, "example.com", binding.List{
		{Selector: "#submit-btn", Key: "Ctrl+K"},
		{Selector: "#x", Key: "Ctrl+J", Domain: "other.com"},
	}, DefaultOptions())

	state := h.doc.Interception()
	assert.Equal(t, []string{"Ctrl+K"}, state.Chords)
	assert.Equal(t, []string{"Alt+Shift+L", "Alt+Shift+P", "Alt+Shift+R"}, state.Commands)
	assert.False(t, state.Picking)

	// A write from elsewhere reaches the page through the cache
	raw, err := binding.Encode(binding.List{{Selector: "#submit-btn", Key: "Ctrl+M"}})
	require.NoError(t, err)
	require.NoError(t, h.store.Set(context.Background(), binding.StorageKey, raw))
	assert.Equal(t, []string{"Ctrl+M"}, h.doc.Interception().Chords)

	h.eng.BeginPicking()
	assert.True(t, h.doc.Interception().Picking)
}
