package engine

import (
	"time"

	"github.com/entrhq/keyreach/pkg/config"
	"github.com/entrhq/keyreach/pkg/types"
)

// Variant selects the picker flow.
type Variant int

const (
	// Advanced captures a chord after selection and upserts on (key, domain).
	Advanced Variant = iota
	// Simple saves the selection with an empty chord into the first free slot.
	Simple
)

// String returns the variant name.
func (v Variant) String() string {
	if v == Simple {
		return "simple"
	}
	return "advanced"
}

// DefaultSaveTimeout bounds one read-modify-write of the binding list.
const DefaultSaveTimeout = 5 * time.Second

// Options configures an Engine.
type Options struct {
	Variant Variant

	// ChordTimeout cancels chord capture after the duration. Zero waits forever.
	ChordTimeout time.Duration

	// CancelOnEscape makes Escape cancel chord capture instead of being captured.
	CancelOnEscape bool

	HighlightDelay  time.Duration
	ClickOutline    string
	HoverOutline    string
	SelectedOutline string

	SaveTimeout time.Duration

	// Commands maps canonical chords to the signal they raise.
	Commands map[string]types.SignalType
}

// DefaultOptions returns the options matching config.Default.
func DefaultOptions() Options {
	return FromConfig(config.Default())
}

// FromConfig builds engine options from a validated configuration.
func FromConfig(cfg *config.Config) Options {
	opts := Options{
		Variant:         Advanced,
		ChordTimeout:    cfg.Picker.ChordTimeout,
		CancelOnEscape:  cfg.Picker.CancelOnEscape,
		HighlightDelay:  cfg.Feedback.HighlightDelay,
		ClickOutline:    cfg.Feedback.ClickOutline,
		HoverOutline:    cfg.Feedback.HoverOutline,
		SelectedOutline: cfg.Feedback.SelectedOutline,
		SaveTimeout:     DefaultSaveTimeout,
		Commands:        make(map[string]types.SignalType),
	}
	if cfg.Picker.Variant == config.VariantSimple {
		opts.Variant = Simple
	}
	if c := cfg.Commands.TogglePickMode; c != "" {
		opts.Commands[c] = types.SignalClickPickMode
	}
	if c := cfg.Commands.ReadLastMessage; c != "" {
		opts.Commands[c] = types.SignalRepeatLast
	}
	if c := cfg.Commands.ReadAllShortcuts; c != "" {
		opts.Commands[c] = types.SignalAnnounceAll
	}
	return opts
}

func (o Options) withDefaults() Options {
	if o.HighlightDelay <= 0 {
		o.HighlightDelay = 200 * time.Millisecond
	}
	if o.ClickOutline == "" {
		o.ClickOutline = "3px solid yellow"
	}
	if o.HoverOutline == "" {
		o.HoverOutline = "3px solid #ff7b00"
	}
	if o.SelectedOutline == "" {
		o.SelectedOutline = "3px solid #00c853"
	}
	if o.SaveTimeout <= 0 {
		o.SaveTimeout = DefaultSaveTimeout
	}
	return o
}
