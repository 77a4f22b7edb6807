package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/binding"
	"github.com/entrhq/keyreach/pkg/chord"
	"github.com/entrhq/keyreach/pkg/dom"
	"github.com/entrhq/keyreach/pkg/selector"
	"github.com/entrhq/keyreach/pkg/types"
)

const (
	cursorPicking = "crosshair"
	cursorDefault = "default"
)

// BeginPicking enters picking mode. In picking mode it re-announces; while
// a chord is awaited it drops the selection and starts over.
func (e *Engine) BeginPicking() {
	switch e.state {
	case StatePicking:
		e.announcer.Speak(announce.MsgPickerOn)
		return
	case StateAwaitingChord:
		e.clearSelection()
	}

	if err := e.doc.SetCursor(cursorPicking); err != nil {
		e.logger.Warnf("failed to set cursor: %v", err)
	}
	e.setState(StatePicking)
	e.announcer.Speak(announce.MsgPickerOn)
}

// HandleMouseOver moves the hover highlight to el while picking.
func (e *Engine) HandleMouseOver(el dom.Element) {
	if el == nil {
		return
	}
	if e.state != StatePicking {
		el.Release()
		return
	}
	e.restore(e.hovered)
	e.hovered = e.outline(el, e.opts.HoverOutline)
}

// HandleClick takes el as the selection while picking. The result reports
// whether the click was consumed.
func (e *Engine) HandleClick(el dom.Element) bool {
	if e.state != StatePicking {
		if el != nil {
			el.Release()
		}
		return false
	}
	if el == nil {
		return true
	}
	e.selectElement(el)
	return true
}

func (e *Engine) cancelPicking() {
	e.leavePicking()
	e.setState(StateIdle)
	e.announcer.Speak(announce.MsgPickerCancelled)
	e.logger.Debugf("picker cancelled")
}

// leavePicking clears the hover highlight and restores the cursor.
func (e *Engine) leavePicking() {
	e.restore(e.hovered)
	e.hovered = nil
	if err := e.doc.SetCursor(cursorDefault); err != nil {
		e.logger.Warnf("failed to restore cursor: %v", err)
	}
}

func (e *Engine) selectElement(el dom.Element) {
	e.leavePicking()

	sel := selector.Generate(el)
	domain := e.doc.Hostname()
	e.logger.Infof("selected %s on %s", sel, domain)
	e.emit(types.NewElementSelectedEvent(sel, domain))

	if e.opts.Variant == Simple {
		el.Release()
		e.setState(StateIdle)
		e.save(binding.Binding{Selector: sel, Domain: domain}, nil)
		return
	}

	e.pendingSelector = sel
	e.pendingDomain = domain
	e.selected = e.outline(el, e.opts.SelectedOutline)
	e.setState(StateAwaitingChord)
	e.announcer.Speak(announce.MsgAwaitingChord)

	if e.opts.ChordTimeout > 0 {
		e.cancelTimeout = e.sched.After(e.opts.ChordTimeout, func() {
			e.cancelTimeout = nil
			if e.state == StateAwaitingChord {
				e.cancelChord(announce.MsgChordTimedOut, "timeout")
			}
		})
	}
}

// captureChord handles a keydown while a chord is awaited.
func (e *Engine) captureChord(ev chord.KeyEvent) bool {
	if ev.Key == "Escape" && e.opts.CancelOnEscape {
		e.cancelChord(announce.MsgChordCancelled, "escape")
		return true
	}
	pressed, ok := chord.Canonicalize(ev)
	if !ok {
		return false
	}

	b := binding.Binding{Selector: e.pendingSelector, Key: pressed, Domain: e.pendingDomain}
	e.clearSelection()
	e.setState(StateIdle)
	e.save(b, nil)
	return true
}

func (e *Engine) cancelChord(msg, reason string) {
	sel, domain := e.pendingSelector, e.pendingDomain
	e.clearSelection()
	e.setState(StateIdle)
	e.announcer.Speak(msg)
	e.emit(types.NewChordCancelledEvent(sel, domain, reason))
	e.logger.Debugf("chord capture for %s cancelled: %s", sel, reason)
}

// clearSelection drops the awaited selection and its highlight.
func (e *Engine) clearSelection() {
	if e.cancelTimeout != nil {
		e.cancelTimeout()
		e.cancelTimeout = nil
	}
	e.restore(e.selected)
	e.selected = nil
	e.pendingSelector = ""
	e.pendingDomain = ""
}

// save persists b off-loop with a read-modify-write of the whole list. The
// store notifies the cache of the write before the completion runs, and any
// later notification wins over it. done, when set, runs on the loop
// afterwards with the write error.
func (e *Engine) save(b binding.Binding, done func(error)) {
	variant := e.opts.Variant
	timeout := e.opts.SaveTimeout

	e.sched.Go(func() func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			written  binding.List
			replaced bool
		)
		err := e.store.Update(ctx, binding.StorageKey, func(current []byte) ([]byte, error) {
			list, err := binding.Decode(current)
			if err != nil {
				return nil, err
			}
			if variant == Simple {
				var idx int
				written, idx = binding.FillEmptySlot(list, b)
				replaced = idx < len(list)
			} else {
				written, replaced = binding.Upsert(list, b)
			}
			return binding.Encode(written)
		})

		return func() {
			if err != nil {
				e.logger.Errorf("failed to save shortcut %s for %s: %v", describeKey(b.Key), b.Selector, err)
				e.announcer.Speak(announce.MsgSaveFailed)
				e.emit(types.NewSaveFailedEvent(b.Selector, b.Key, b.Domain, err))
			} else {
				e.saved(b, replaced)
			}
			if done != nil {
				done(err)
			}
		}
	})
}

func (e *Engine) saved(b binding.Binding, replaced bool) {
	e.logger.Infof("saved %s", b.Describe())
	e.emit(types.NewBindingSavedEvent(b.Selector, b.Key, b.Domain, replaced))

	if e.opts.Variant == Simple {
		toast := selectedToast(b)
		if err := e.doc.ShowToast(toast); err != nil {
			e.logger.Warnf("failed to show toast: %v", err)
		}
		e.emit(types.NewToastEvent(toast))
		e.announcer.Speak(announce.MsgSelectedOpenUI)
		return
	}
	e.announcer.Speak(fmt.Sprintf(announce.MsgShortcutSavedFmt, b.Key))
}

// selectedToast names the site and selector of a simple-variant selection.
func selectedToast(b binding.Binding) string {
	site := strings.TrimPrefix(b.Domain, "www.")
	return fmt.Sprintf("Selected button on %s: %s. Open settings to set the shortcut key.", site, b.Selector)
}

func describeKey(key string) string {
	if key == "" {
		return "(no key)"
	}
	return key
}

// PageChanged resets the engine after the page navigated: highlighted
// elements are gone and the bridge starts without interception state.
func (e *Engine) PageChanged() {
	release(e.hovered)
	e.hovered = nil
	if e.cancelTimeout != nil {
		e.cancelTimeout()
		e.cancelTimeout = nil
	}
	release(e.selected)
	e.selected = nil
	for sel, f := range e.flashes {
		f.cancel()
		release(f.h)
		delete(e.flashes, sel)
	}
	e.pendingSelector = ""
	e.pendingDomain = ""
	if e.state != StateIdle {
		e.logger.Infof("page changed while %s, returning to idle", e.state)
		e.state = StateIdle
		e.emit(types.NewStateChangedEvent(StateIdle.String()))
	}
	e.syncInterception()
}
