package types

import (
	"errors"
	"testing"
)

func TestEventConstructors(t *testing.T) {
	saveErr := errors.New("disk full")

	tests := []struct {
		name  string
		event Event
		want  EventType
	}{
		{name: "clicked", event: NewClickedEvent("#a", "K", "example.com"), want: EventTypeClicked},
		{name: "selector_miss", event: NewSelectorMissEvent("#a", "K", "example.com"), want: EventTypeSelectorMiss},
		{name: "state_changed", event: NewStateChangedEvent("picking"), want: EventTypeStateChanged},
		{name: "element_selected", event: NewElementSelectedEvent("#a", "example.com"), want: EventTypeElementSelected},
		{name: "chord_cancelled", event: NewChordCancelledEvent("#a", "example.com", "escape"), want: EventTypeChordCancelled},
		{name: "binding_saved", event: NewBindingSavedEvent("#a", "K", "example.com", true), want: EventTypeBindingSaved},
		{name: "save_failed", event: NewSaveFailedEvent("#a", "K", "example.com", saveErr), want: EventTypeSaveFailed},
		{name: "toast", event: NewToastEvent("hello"), want: EventTypeToast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.event.Type != tt.want {
				t.Errorf("Expected type %q, got %q", tt.want, tt.event.Type)
			}
			if string(tt.event.Type) != tt.name {
				t.Errorf("Expected wire name %q, got %q", tt.name, tt.event.Type)
			}
		})
	}

	if got := NewSaveFailedEvent("#a", "K", "", saveErr); !errors.Is(got.Error, saveErr) {
		t.Errorf("Expected wrapped error, got %v", got.Error)
	}
	if !NewBindingSavedEvent("#a", "K", "", true).Replaced {
		t.Error("Expected Replaced to be carried")
	}
}

func TestSignals(t *testing.T) {
	if !NewSignal(SignalTogglePicker).IsPickerTrigger() {
		t.Error("togglePicker should trigger picking")
	}
	if !NewSignal(SignalClickPickMode).IsPickerTrigger() {
		t.Error("CLICK_PICK_BUTTON should trigger picking")
	}
	if NewSignal(SignalAnnounceAll).IsPickerTrigger() {
		t.Error("READ_ALL_SAVED must not trigger picking")
	}
	toast := NewToastSignal("keyreach is active!")
	if toast.Type != SignalActiveToast || toast.Message != "keyreach is active!" {
		t.Errorf("unexpected toast signal: %+v", toast)
	}
}
