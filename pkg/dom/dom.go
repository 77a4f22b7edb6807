// Package dom defines the page surface the shortcut engine works against.
//
// Two implementations exist: pkg/browser drives a live Playwright page and
// pkg/dom/htmldoc serves a parsed HTML document held in memory.
package dom

// Element is a located element on the page. Attribute reads reflect the
// element at the time it was located; mutations go to the live element.
type Element interface {
	// Attr returns the attribute value, or "" when absent.
	Attr(name string) string

	// Classes returns the class list in document order.
	Classes() []string

	// TagName returns the element's tag name as reported by the page.
	TagName() string

	// Outline returns the inline outline style at the time of the last read or write.
	Outline() string

	// SetOutline sets the inline outline style. "" removes it.
	SetOutline(value string) error

	// Click dispatches a synthetic click.
	Click() error

	// Focus moves keyboard focus to the element.
	Focus() error

	// Release frees the page resources behind the element. The element
	// must not be used afterwards.
	Release()
}

// Interception tells the page which events to swallow before they reach
// page scripts. The engine pushes a new value on every state change.
type Interception struct {
	// Picking swallows clicks and reports hovers.
	Picking bool `json:"picking"`

	// CaptureChord swallows the next non-modifier keydown.
	CaptureChord bool `json:"captureChord"`

	// Chords lists the chords that resolve to a binding on this page.
	// They are swallowed only outside editable elements.
	Chords []string `json:"chords"`

	// Commands lists the command chords, swallowed everywhere.
	Commands []string `json:"commands"`
}

// Document is the page the engine runs in.
type Document interface {
	// Hostname returns the current location's hostname.
	Hostname() string

	// QuerySelector returns the first matching element, or nil when none
	// matches. An invalid selector is reported as an error.
	QuerySelector(selector string) (Element, error)

	// SetCursor sets the body cursor style.
	SetCursor(cursor string) error

	// SetLiveText replaces the text of the assertive live region.
	SetLiveText(text string) error

	// ShowToast displays a transient, non-blocking notification.
	ShowToast(text string) error

	// Intercept updates which events the page swallows.
	Intercept(state Interception) error
}
