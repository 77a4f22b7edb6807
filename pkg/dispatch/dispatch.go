// Package dispatch routes commands and lifecycle notifications to the
// active page as signals. Delivery failures are logged and dropped; a page
// whose bridge is not ready simply misses the signal.
package dispatch

import (
	"context"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/keyreach/pkg/logging"
	"github.com/entrhq/keyreach/pkg/types"
)

// Command names, as bound to chords in the configuration.
const (
	CommandTogglePickMode   = "toggle_pick_mode"
	CommandReadLastMessage  = "read_last_message"
	CommandReadAllShortcuts = "read_all_shortcuts"
)

// ActiveMessage is shown on every page that finishes loading.
const ActiveMessage = "keyreach is active!"

var commandSignals = map[string]types.SignalType{
	CommandTogglePickMode:   types.SignalClickPickMode,
	CommandReadLastMessage:  types.SignalRepeatLast,
	CommandReadAllShortcuts: types.SignalAnnounceAll,
}

// Tab is a page signals can be delivered to.
type Tab interface {
	// URL returns the page's current URL.
	URL() string

	// Send delivers sig to the page.
	Send(ctx context.Context, sig types.Signal) error
}

// Dispatcher delivers signals to tabs.
type Dispatcher struct {
	restricted []glob.Glob
	logger     *logging.Logger
}

// New creates a dispatcher that never signals pages matching one of the
// restricted URL patterns.
func New(restrictedURLs []string, logger *logging.Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	d := &Dispatcher{logger: logger}
	for _, pattern := range restrictedURLs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid restricted pattern '%s': %w", pattern, err)
		}
		d.restricted = append(d.restricted, g)
	}
	return d, nil
}

// Restricted reports whether url matches a restricted pattern.
func (d *Dispatcher) Restricted(url string) bool {
	for _, g := range d.restricted {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Command sends the signal for a named command to tab. A nil tab (no
// active page) or an unknown command does nothing.
func (d *Dispatcher) Command(ctx context.Context, tab Tab, name string) {
	sig, ok := commandSignals[name]
	if !ok {
		d.logger.Warnf("unknown command %q", name)
		return
	}
	d.deliver(ctx, tab, types.NewSignal(sig))
}

// PageLoaded announces that keyreach is active on tab, unless its URL is
// empty or restricted.
func (d *Dispatcher) PageLoaded(ctx context.Context, tab Tab) {
	if tab == nil {
		return
	}
	url := tab.URL()
	if url == "" || d.Restricted(url) {
		d.logger.Debugf("not signalling restricted page %q", url)
		return
	}
	d.deliver(ctx, tab, types.NewToastSignal(ActiveMessage))
}

// PopupClosed tells tab that the settings UI closed.
func (d *Dispatcher) PopupClosed(ctx context.Context, tab Tab) {
	d.deliver(ctx, tab, types.NewSignal(types.SignalPopupClosed))
}

func (d *Dispatcher) deliver(ctx context.Context, tab Tab, sig types.Signal) {
	if tab == nil {
		d.logger.Debugf("no active tab for %s", sig.Type)
		return
	}
	if err := tab.Send(ctx, sig); err != nil {
		d.logger.Infof("could not deliver %s to %s: %v", sig.Type, tab.URL(), err)
	}
}

// Commands lists the known command names.
func Commands() []string {
	return []string{CommandTogglePickMode, CommandReadLastMessage, CommandReadAllShortcuts}
}
