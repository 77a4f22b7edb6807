package types

// EventType defines the type of event emitted by the engine.
type EventType string

const (
	EventTypeClicked         EventType = "clicked"          // EventTypeClicked indicates a shortcut clicked its element.
	EventTypeSelectorMiss    EventType = "selector_miss"    // EventTypeSelectorMiss indicates a shortcut's selector matched nothing.
	EventTypeStateChanged    EventType = "state_changed"    // EventTypeStateChanged indicates the picker moved to another state.
	EventTypeElementSelected EventType = "element_selected" // EventTypeElementSelected indicates an element was picked.
	EventTypeChordCancelled  EventType = "chord_cancelled"  // EventTypeChordCancelled indicates chord capture was cancelled or timed out.
	EventTypeBindingSaved    EventType = "binding_saved"    // EventTypeBindingSaved indicates a binding was persisted.
	EventTypeSaveFailed      EventType = "save_failed"      // EventTypeSaveFailed indicates persisting a binding failed.
	EventTypeToast           EventType = "toast"            // EventTypeToast carries a non-blocking notification for the user.
)

// Event represents something the engine did in response to input.
type Event struct {
	// Type indicates the kind of event.
	Type EventType

	// Selector is the element selector involved, if any.
	Selector string

	// Chord is the key chord involved, if any.
	Chord string

	// Domain is the page hostname the event happened on.
	Domain string

	// State is the new picker state (for state change events).
	State string

	// Message holds human-readable text (toasts, announcements).
	Message string

	// Replaced reports whether a save overwrote an existing binding.
	Replaced bool

	// Error contains error information for failure events.
	Error error
}

// NewClickedEvent creates a clicked event.
func NewClickedEvent(selector, chord, domain string) Event {
	return Event{Type: EventTypeClicked, Selector: selector, Chord: chord, Domain: domain}
}

// NewSelectorMissEvent creates a selector miss event.
func NewSelectorMissEvent(selector, chord, domain string) Event {
	return Event{Type: EventTypeSelectorMiss, Selector: selector, Chord: chord, Domain: domain}
}

// NewStateChangedEvent creates a state change event.
func NewStateChangedEvent(state string) Event {
	return Event{Type: EventTypeStateChanged, State: state}
}

// NewElementSelectedEvent creates an element selected event.
func NewElementSelectedEvent(selector, domain string) Event {
	return Event{Type: EventTypeElementSelected, Selector: selector, Domain: domain}
}

// NewChordCancelledEvent creates a chord capture cancellation event.
func NewChordCancelledEvent(selector, domain, reason string) Event {
	return Event{Type: EventTypeChordCancelled, Selector: selector, Domain: domain, Message: reason}
}

// NewBindingSavedEvent creates a binding saved event.
func NewBindingSavedEvent(selector, chord, domain string, replaced bool) Event {
	return Event{Type: EventTypeBindingSaved, Selector: selector, Chord: chord, Domain: domain, Replaced: replaced}
}

// NewSaveFailedEvent creates a save failure event.
func NewSaveFailedEvent(selector, chord, domain string, err error) Event {
	return Event{Type: EventTypeSaveFailed, Selector: selector, Chord: chord, Domain: domain, Error: err}
}

// NewToastEvent creates a toast event.
func NewToastEvent(message string) Event {
	return Event{Type: EventTypeToast, Message: message}
}
