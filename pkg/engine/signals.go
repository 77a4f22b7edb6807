package engine

import (
	"fmt"
	"strings"

	"github.com/entrhq/keyreach/pkg/announce"
	"github.com/entrhq/keyreach/pkg/types"
)

// HandleSignal processes an inbound signal.
func (e *Engine) HandleSignal(sig types.Signal) {
	e.logger.Debugf("signal %s", sig.Type)

	switch {
	case sig.IsPickerTrigger():
		e.BeginPicking()
	case sig.Type == types.SignalRepeatLast:
		e.announcer.Repeat()
	case sig.Type == types.SignalAnnounceAll:
		e.announcer.Speak(e.summary())
	case sig.Type == types.SignalPopupClosed:
		e.announcer.Speak(announce.MsgPopupClosed)
	case sig.Type == types.SignalActiveToast:
		if sig.Message == "" {
			return
		}
		if err := e.doc.ShowToast(sig.Message); err != nil {
			e.logger.Warnf("failed to show toast: %v", err)
		}
		e.emit(types.NewToastEvent(sig.Message))
		e.announcer.Speak(sig.Message)
	default:
		e.logger.Warnf("ignoring unknown signal %q", sig.Type)
	}
}

// summary describes every saved binding in one message, so the live region
// reads it as a whole.
func (e *Engine) summary() string {
	list := e.cache.Snapshot()
	if len(list) == 0 {
		return announce.MsgNoShortcuts
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d shortcuts saved.", len(list))
	for _, b := range list {
		sb.WriteString(" ")
		sb.WriteString(b.Describe())
		sb.WriteString(".")
	}
	return sb.String()
}
