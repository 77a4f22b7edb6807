package chord

import (
	"errors"
	"fmt"
	"strings"
)

// Parse errors
var (
	ErrEmpty           = errors.New("empty chord")
	ErrModifierOnly    = errors.New("chord has no base key")
	ErrUnknownModifier = errors.New("unknown modifier")
)

// modifierNames maps lowercase spellings to modifiers.
var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"super":   ModMeta,
}

// Parse normalizes a hand-written chord such as "shift+ctrl+k" into its
// canonical form ("Ctrl+Shift+K"). Modifiers may appear in any order.
// A literal plus key is written as a trailing "+", e.g. "Ctrl++".
func Parse(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmpty
	}

	var base string
	head := input
	switch {
	case input == "+":
		return "+", nil
	case strings.HasSuffix(input, "++"):
		base = "+"
		head = strings.TrimSuffix(input, "++")
	default:
		idx := strings.LastIndex(input, "+")
		if idx < 0 {
			return Format(ModNone, resolveKeyName(input)), nil
		}
		base = strings.TrimSpace(input[idx+1:])
		head = input[:idx]
	}

	if base == "" {
		return "", ErrModifierOnly
	}

	var mods Modifier
	for _, part := range strings.Split(head, "+") {
		name := strings.ToLower(strings.TrimSpace(part))
		mod, ok := modifierNames[name]
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownModifier, part)
		}
		mods = mods.With(mod)
	}

	if _, isMod := modifierNames[strings.ToLower(base)]; isMod {
		return "", ErrModifierOnly
	}

	return Format(mods, resolveKeyName(base)), nil
}

// namedKeys lists the KeyboardEvent.key spellings for common aliases.
var namedKeys = map[string]string{
	"esc":       "Escape",
	"escape":    "Escape",
	"enter":     "Enter",
	"return":    "Enter",
	"tab":       "Tab",
	"space":     " ",
	"backspace": "Backspace",
	"delete":    "Delete",
	"del":       "Delete",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
	"home":      "Home",
	"end":       "End",
	"pageup":    "PageUp",
	"pagedown":  "PageDown",
}

func resolveKeyName(key string) string {
	if named, ok := namedKeys[strings.ToLower(key)]; ok {
		return named
	}
	// Function keys are written F1..F24 by the browser
	if len(key) >= 2 && (key[0] == 'f' || key[0] == 'F') && isDigits(key[1:]) {
		return "F" + key[1:]
	}
	return key
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
