// Package htmldoc implements dom.Document over a parsed HTML tree.
//
// It performs no layout or script execution. Clicks, focus changes, cursor
// changes, live-region text and toasts are recorded so callers can inspect
// what a handler did to the page.
package htmldoc

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/entrhq/keyreach/pkg/dom"
)

// Document is an in-memory page.
type Document struct {
	mu sync.Mutex

	hostname string
	root     *html.Node

	cursor       string
	liveText     string
	announced    []string
	toasts       []string
	interception dom.Interception
	clicks       []*Element
	focused      *Element
	released     []*Element
}

// Parse reads an HTML document served from hostname.
func Parse(r io.Reader, hostname string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}
	return &Document{hostname: hostname, root: root}, nil
}

// ParseString is Parse over a string.
func ParseString(s, hostname string) (*Document, error) {
	return Parse(strings.NewReader(s), hostname)
}

// Hostname returns the hostname the document was loaded from.
func (d *Document) Hostname() string {
	return d.hostname
}

// QuerySelector returns the first element matching selector in document order.
func (d *Document) QuerySelector(selector string) (dom.Element, error) {
	el, err := d.find(selector)
	if err != nil {
		return nil, err
	}
	if el == nil {
		return nil, nil
	}
	return el, nil
}

// Find is QuerySelector returning the concrete type. Invalid selectors yield nil.
func (d *Document) Find(selector string) *Element {
	el, _ := d.find(selector)
	return el
}

func (d *Document) find(selector string) (*Element, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	n := cascadia.Query(d.root, sel)
	if n == nil {
		return nil, nil
	}
	return &Element{node: n, doc: d}, nil
}

// SetCursor records the body cursor style.
func (d *Document) SetCursor(cursor string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cursor = cursor
	return nil
}

// SetLiveText replaces the live region text.
func (d *Document) SetLiveText(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.liveText = text
	if text != "" {
		d.announced = append(d.announced, text)
	}
	return nil
}

// ShowToast records a toast.
func (d *Document) ShowToast(text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toasts = append(d.toasts, text)
	return nil
}

// Intercept records the interception state.
func (d *Document) Intercept(state dom.Interception) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interception = state
	return nil
}

// Cursor returns the last cursor set.
func (d *Document) Cursor() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// LiveText returns the live region's current text.
func (d *Document) LiveText() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.liveText
}

// Announcements returns every non-empty text placed in the live region.
func (d *Document) Announcements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.announced...)
}

// Toasts returns every toast shown.
func (d *Document) Toasts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.toasts...)
}

// Interception returns the last interception state pushed.
func (d *Document) Interception() dom.Interception {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.interception
}

// Clicks returns the elements clicked, in order.
func (d *Document) Clicks() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.clicks...)
}

// Released returns the elements released by their holder, in order.
func (d *Document) Released() []*Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Element(nil), d.released...)
}

// Focused returns the element holding focus, or nil.
func (d *Document) Focused() *Element {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focused
}
