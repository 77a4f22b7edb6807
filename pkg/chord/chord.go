// Package chord turns keyboard events into canonical shortcut strings.
//
// A chord is written as the held modifiers in the fixed order Ctrl, Alt,
// Shift, Meta followed by the base key, joined with "+":
//
//	Ctrl+Shift+K
//	Alt+F1
//	Escape
//
// Single-character base keys are uppercased; named keys such as "Enter",
// "Escape" or "F1" are kept as reported by the browser.
package chord

import (
	"strings"
	"unicode/utf8"
)

// Modifier is a bitset of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta

	// ModNone indicates no modifiers.
	ModNone Modifier = 0
)

// order is the canonical rendering order.
var order = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "Ctrl"},
	{ModAlt, "Alt"},
	{ModShift, "Shift"},
	{ModMeta, "Meta"},
}

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// String renders the modifiers in canonical order, e.g. "Ctrl+Alt".
func (m Modifier) String() string {
	var parts []string
	for _, o := range order {
		if m.Has(o.mod) {
			parts = append(parts, o.name)
		}
	}
	return strings.Join(parts, "+")
}

// KeyEvent is the subset of a DOM keydown event a chord is built from.
type KeyEvent struct {
	// Key is the KeyboardEvent.key value ("k", "K", "Enter", "Control", ...)
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Alt   bool   `json:"alt"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

// Modifiers returns the modifier flags carried by the event.
func (e KeyEvent) Modifiers() Modifier {
	var m Modifier
	if e.Ctrl {
		m = m.With(ModCtrl)
	}
	if e.Alt {
		m = m.With(ModAlt)
	}
	if e.Shift {
		m = m.With(ModShift)
	}
	if e.Meta {
		m = m.With(ModMeta)
	}
	return m
}

// IsModifierKey reports whether key names a bare modifier key.
func IsModifierKey(key string) bool {
	switch key {
	case "Control", "Shift", "Alt", "Meta":
		return true
	}
	return false
}

// Canonicalize builds the chord for e. It returns false for events that
// cannot form a chord: pure modifier presses and events without a key.
func Canonicalize(e KeyEvent) (string, bool) {
	if e.Key == "" || IsModifierKey(e.Key) {
		return "", false
	}
	return Format(e.Modifiers(), e.Key), true
}

// Format renders mods and a base key as a canonical chord.
func Format(mods Modifier, key string) string {
	base := key
	if utf8.RuneCountInString(key) == 1 {
		base = strings.ToUpper(key)
	}
	if mods == ModNone {
		return base
	}
	return mods.String() + "+" + base
}
