// Package binding holds the shortcut configuration model: the Binding
// record, the ordered List persisted as a whole, first-match resolution and
// the two write policies used when the picker stores a new binding.
package binding

import "fmt"

// StorageKey is the key the List is persisted under.
const StorageKey = "keyConfig"

// Binding ties a key chord to an element selector, optionally scoped to a domain.
type Binding struct {
	// Selector re-locates the target element. Empty marks an unused slot.
	Selector string `json:"id"`

	// Key is the canonical chord; empty until assigned.
	Key string `json:"key"`

	// Domain is the hostname the binding is scoped to. Empty means global.
	Domain string `json:"domain,omitempty"`
}

// IsGlobal reports whether the binding applies on every site.
func (b Binding) IsGlobal() bool {
	return b.Domain == ""
}

// AppliesTo reports whether the binding is in scope for domain.
func (b Binding) AppliesTo(domain string) bool {
	return b.IsGlobal() || b.Domain == domain
}

// IsEmptySlot reports whether the binding has no selector.
func (b Binding) IsEmptySlot() bool {
	return b.Selector == ""
}

// Describe renders the binding for spoken enumeration.
func (b Binding) Describe() string {
	key := b.Key
	if key == "" {
		key = "no key"
	}
	scope := b.Domain
	if b.IsGlobal() {
		scope = "all sites"
	}
	return fmt.Sprintf("%s on %s clicks %s", key, scope, b.Selector)
}

// List is the ordered configuration. Order decides ties (first match wins)
// and which empty slot is reused.
type List []Binding

// Clone returns an independent copy of l.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Resolve scans l in order and returns the first binding whose key equals
// chord and which is global or scoped to domain.
func Resolve(chord, domain string, l List) (Binding, bool) {
	i := ResolveIndex(chord, domain, l)
	if i < 0 {
		return Binding{}, false
	}
	return l[i], true
}

// ResolveIndex is Resolve returning the position of the match, or -1.
func ResolveIndex(chord, domain string, l List) int {
	if chord == "" {
		return -1
	}
	for i, b := range l {
		if b.Key == chord && b.AppliesTo(domain) {
			return i
		}
	}
	return -1
}

// Upsert replaces the binding with the same (Key, Domain) pair in place,
// or appends b when no such binding exists. It returns the new list and
// whether an existing entry was replaced. l is not modified.
func Upsert(l List, b Binding) (List, bool) {
	out := l.Clone()
	for i, existing := range out {
		if existing.Key == b.Key && existing.Domain == b.Domain {
			out[i] = b
			return out, true
		}
	}
	return append(out, b), false
}

// FillEmptySlot writes b into the first binding with an empty selector, or
// appends it when every slot is used. It returns the new list and the index
// written. l is not modified.
func FillEmptySlot(l List, b Binding) (List, int) {
	out := l.Clone()
	for i, existing := range out {
		if existing.IsEmptySlot() {
			out[i] = b
			return out, i
		}
	}
	return append(out, b), len(out)
}

// ChordsFor returns, in list order, the distinct chords whose resolution
// on domain yields a binding with a selector.
func ChordsFor(domain string, l List) []string {
	seen := make(map[string]bool)
	var chords []string
	for _, b := range l {
		if b.Key == "" || !b.AppliesTo(domain) || seen[b.Key] {
			continue
		}
		seen[b.Key] = true
		if !b.IsEmptySlot() {
			chords = append(chords, b.Key)
		}
	}
	return chords
}
