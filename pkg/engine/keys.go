package engine

import (
	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/chord"
	"github.com/entrhq/keyreach/pkg/dom"
	"github.com/entrhq/keyreach/pkg/types"
)

// HandleKeyDown processes one keydown. editable reports whether the event
// target is an input, textarea or contenteditable element. The result
// reports whether the event was consumed.
func (e *Engine) HandleKeyDown(ev chord.KeyEvent, editable bool) bool {
	switch e.state {
	case StatePicking:
		if ev.Key == "Escape" {
			e.cancelPicking()
			return true
		}
		return e.handleCommand(ev)

	case StateAwaitingChord:
		return e.captureChord(ev)

	default:
		if e.handleCommand(ev) {
			return true
		}
		if editable {
			return false
		}
		pressed, ok := chord.Canonicalize(ev)
		if !ok {
			return false
		}
		domain := e.doc.Hostname()
		b, found := binding.Resolve(pressed, domain, e.cache.Snapshot())
		if !found || b.IsEmptySlot() {
			return false
		}
		e.activate(b, pressed, domain)
		return true
	}
}

func (e *Engine) handleCommand(ev chord.KeyEvent) bool {
	if len(e.opts.Commands) == 0 {
		return false
	}
	pressed, ok := chord.Canonicalize(ev)
	if !ok {
		return false
	}
	sig, found := e.opts.Commands[pressed]
	if !found {
		return false
	}
	e.HandleSignal(types.NewSignal(sig))
	return true
}

// activate clicks the bound element and flashes it.
func (e *Engine) activate(b binding.Binding, pressed, domain string) {
	el, err := e.doc.QuerySelector(b.Selector)
	if err != nil {
		e.logger.Warnf("selector %q is not valid on %s: %v", b.Selector, domain, err)
	}
	if el == nil {
		e.logger.Infof("button not found: %s (%s on %s)", b.Selector, pressed, domain)
		e.announcer.Speak(announce.MsgNotFound)
		e.emit(types.NewSelectorMissEvent(b.Selector, pressed, domain))
		return
	}

	if err := el.Click(); err != nil {
		e.logger.Warnf("click on %s failed: %v", b.Selector, err)
	}
	if err := el.Focus(); err != nil {
		e.logger.Warnf("focus on %s failed: %v", b.Selector, err)
	}
	e.announcer.Speak(announce.MsgClicked)
	e.startFlash(b.Selector, el)

	e.logger.Debugf("clicked %s via %s on %s", b.Selector, pressed, domain)
	e.emit(types.NewClickedEvent(b.Selector, pressed, domain))
}

// startFlash outlines el for the highlight delay. A repeat press on the same
// selector first restores the pending flash so the original outline is the
// one put back.
func (e *Engine) startFlash(sel string, el dom.Element) {
	if f, ok := e.flashes[sel]; ok {
		f.cancel()
		e.restore(f.h)
	}
	f := &flash{h: e.outline(el, e.opts.ClickOutline)}
	f.cancel = e.sched.After(e.opts.HighlightDelay, func() {
		if e.flashes[sel] == f {
			delete(e.flashes, sel)
		}
		e.restore(f.h)
	})
	e.flashes[sel] = f
}
