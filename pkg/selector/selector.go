// Package selector derives a CSS selector for a picked element.
package selector

import (
	"strings"
	"unicode/utf8"
)

// maxClassLen bounds class names considered hand-written.
const maxClassLen = 25

// Source is the attribute view of an element a selector is built from.
type Source interface {
	Attr(name string) string
	Classes() []string
	TagName() string
}

// Generate returns a best-effort selector for el, preferring in order the
// id, the aria-label, the first short digit-free class, and the tag name.
// The result is neither guaranteed unique nor stable across reloads.
func Generate(el Source) string {
	if id := el.Attr("id"); id != "" {
		return "#" + id
	}
	if label := el.Attr("aria-label"); label != "" {
		return `[aria-label="` + quote(label) + `"]`
	}
	for _, cls := range el.Classes() {
		if usableClass(cls) {
			return "." + cls
		}
	}
	return strings.ToLower(el.TagName())
}

// usableClass skips generated or hashed class names.
func usableClass(cls string) bool {
	if cls == "" || utf8.RuneCountInString(cls) >= maxClassLen {
		return false
	}
	return !strings.ContainsAny(cls, "0123456789")
}

func quote(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
