// Package announce speaks short messages through an assertive live region.
package announce

import (
	"time"

	"github.com/entrhq/keyreach/pkg/eventloop"
	"github.com/entrhq/keyreach/pkg/logging"
)

// DefaultDelay separates clearing the region from setting the new text, so
// screen readers re-announce a message identical to the previous one.
const DefaultDelay = 50 * time.Millisecond

// Messages spoken by the engine.
const (
	MsgClicked          = "Clicked"
	MsgNotFound         = "Button not found on this page"
	MsgPickerOn         = "Picker Mode On. Click a button."
	MsgPickerCancelled  = "Picker Mode Cancelled"
	MsgAwaitingChord    = "Element selected. Press a key combination."
	MsgChordCancelled   = "Shortcut assignment cancelled"
	MsgChordTimedOut    = "Shortcut assignment timed out"
	MsgSelectedOpenUI   = "Button Selected. Open extension to set key."
	MsgSaveFailed       = "Could not save shortcut"
	MsgPopupClosed      = "Settings closed"
	MsgNothingToRepeat  = "Nothing to repeat"
	MsgNoShortcuts      = "No shortcuts saved."
	MsgShortcutSavedFmt = "Shortcut saved: %s"
)

// LiveRegion is the page element announcements are written to.
type LiveRegion interface {
	SetLiveText(text string) error
}

// Announcer writes messages to a live region and remembers the last one.
type Announcer struct {
	region LiveRegion
	sched  eventloop.Scheduler
	delay  time.Duration
	logger *logging.Logger

	last    string
	pending func()
}

// New creates an announcer. A non-positive delay selects DefaultDelay.
func New(region LiveRegion, sched eventloop.Scheduler, delay time.Duration, logger *logging.Logger) *Announcer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Announcer{
		region: region,
		sched:  sched,
		delay:  delay,
		logger: logger,
	}
}

// Speak clears the live region and sets msg after the delay. A message
// still pending from an earlier call is dropped.
func (a *Announcer) Speak(msg string) {
	if a.pending != nil {
		a.pending()
		a.pending = nil
	}
	a.last = msg
	a.logger.Debugf("announce: %s", msg)

	if err := a.region.SetLiveText(""); err != nil {
		a.logger.Warnf("failed to clear live region: %v", err)
	}
	a.pending = a.sched.After(a.delay, func() {
		a.pending = nil
		if err := a.region.SetLiveText(msg); err != nil {
			a.logger.Warnf("failed to announce %q: %v", msg, err)
		}
	})
}

// Repeat speaks the last message again.
func (a *Announcer) Repeat() {
	if a.last == "" {
		a.Speak(MsgNothingToRepeat)
		return
	}
	a.Speak(a.last)
}

// Last returns the most recent message.
func (a *Announcer) Last() string {
	return a.last
}
