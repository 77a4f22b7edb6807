package types

// SignalType identifies an inbound signal from another part of the system.
// The values match the action names used on the message channel.
type SignalType string

const (
	SignalTogglePicker  SignalType = "togglePicker"   // SignalTogglePicker begins picking mode.
	SignalRepeatLast    SignalType = "RE_READ_TOAST"  // SignalRepeatLast re-announces the last message.
	SignalAnnounceAll   SignalType = "READ_ALL_SAVED" // SignalAnnounceAll announces every saved shortcut.
	SignalPopupClosed   SignalType = "ANNOUNCE_CLOSE" // SignalPopupClosed announces that the settings UI closed.
	SignalActiveToast   SignalType = "TRIGGER_TOAST"  // SignalActiveToast shows and announces a status message.
	SignalClickPickMode SignalType = "CLICK_PICK_BUTTON"
)

// Signal is one inbound message for a page.
type Signal struct {
	// Type indicates the kind of signal.
	Type SignalType `json:"action"`

	// Message carries text for toast signals.
	Message string `json:"message,omitempty"`
}

// NewSignal creates a signal without payload.
func NewSignal(t SignalType) Signal {
	return Signal{Type: t}
}

// NewToastSignal creates an active-toast signal.
func NewToastSignal(message string) Signal {
	return Signal{Type: SignalActiveToast, Message: message}
}

// IsPickerTrigger reports whether s begins picking mode. The command path
// sends CLICK_PICK_BUTTON while older senders use togglePicker.
func (s Signal) IsPickerTrigger() bool {
	return s.Type == SignalTogglePicker || s.Type == SignalClickPickMode
}
