// Package config loads keyreach's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/entrhq/keyreach/pkg/chord"
	"github.com/entrhq/keyreach/pkg/storage"
)

// Config represents the full keyreach configuration.
type Config struct {
	// Persistent store holding the shortcut list
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Element picker behavior
	Picker PickerConfig `yaml:"picker" json:"picker"`

	// Visual and spoken feedback
	Feedback FeedbackConfig `yaml:"feedback" json:"feedback"`

	// Chords for the built-in commands
	Commands CommandConfig `yaml:"commands" json:"commands"`

	// URL globs on which no signal is delivered
	RestrictedURLs []string `yaml:"restricted_urls" json:"restricted_urls"`

	// Browser session
	Browser BrowserConfig `yaml:"browser" json:"browser"`
}

// Variant selects the picker flow.
type Variant string

const (
	// VariantAdvanced asks for a chord after selection.
	VariantAdvanced Variant = "advanced"
	// VariantSimple saves the selection with an empty chord.
	VariantSimple Variant = "simple"
)

// StorageConfig defines where bindings are persisted.
type StorageConfig struct {
	Backend storage.Backend `yaml:"backend" json:"backend"`
	Path    string          `yaml:"path" json:"path"` // Empty selects the backend default
}

// PickerConfig defines the picker state machine options.
type PickerConfig struct {
	Variant        Variant       `yaml:"variant" json:"variant"`
	ChordTimeout   time.Duration `yaml:"chord_timeout" json:"chord_timeout"` // Zero waits forever
	CancelOnEscape bool          `yaml:"cancel_on_escape" json:"cancel_on_escape"`
}

// FeedbackConfig defines highlight and announcement timing.
type FeedbackConfig struct {
	HighlightDelay  time.Duration `yaml:"highlight_delay" json:"highlight_delay"`
	AnnounceDelay   time.Duration `yaml:"announce_delay" json:"announce_delay"`
	ClickOutline    string        `yaml:"click_outline" json:"click_outline"`
	HoverOutline    string        `yaml:"hover_outline" json:"hover_outline"`
	SelectedOutline string        `yaml:"selected_outline" json:"selected_outline"`
}

// CommandConfig maps the built-in commands to chords.
type CommandConfig struct {
	TogglePickMode   string `yaml:"toggle_pick_mode" json:"toggle_pick_mode"`
	ReadLastMessage  string `yaml:"read_last_message" json:"read_last_message"`
	ReadAllShortcuts string `yaml:"read_all_shortcuts" json:"read_all_shortcuts"`
}

// BrowserConfig defines the Playwright session.
type BrowserConfig struct {
	Headless bool          `yaml:"headless" json:"headless"`
	StartURL string        `yaml:"start_url" json:"start_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// Default returns a configuration suitable for most use cases.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: storage.BackendFile,
		},
		Picker: PickerConfig{
			Variant:        VariantAdvanced,
			CancelOnEscape: true,
		},
		Feedback: FeedbackConfig{
			HighlightDelay:  200 * time.Millisecond,
			AnnounceDelay:   50 * time.Millisecond,
			ClickOutline:    "3px solid yellow",
			HoverOutline:    "3px solid #ff7b00",
			SelectedOutline: "3px solid #00c853",
		},
		Commands: CommandConfig{
			TogglePickMode:   "Alt+Shift+P",
			ReadLastMessage:  "Alt+Shift+R",
			ReadAllShortcuts: "Alt+Shift+L",
		},
		RestrictedURLs: []string{"chrome://*", "edge://*", "about:*"},
		Browser: BrowserConfig{
			Headless: false,
			StartURL: "about:blank",
			Timeout:  30 * time.Second,
		},
	}
}

// DefaultPath returns ~/.keyreach/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".keyreach", "config.yaml"), nil
}

// Load reads the YAML file at path over the defaults. A missing file
// yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to path, creating the parent directory.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration and normalizes command chords to
// their canonical form.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	case "":
		c.Storage.Backend = storage.BackendFile
	default:
		return fmt.Errorf("invalid storage backend: %s (must be 'file', 'sqlite', or 'memory')", c.Storage.Backend)
	}

	if c.Picker.Variant != VariantAdvanced && c.Picker.Variant != VariantSimple {
		return fmt.Errorf("invalid picker variant: %s (must be 'advanced' or 'simple')", c.Picker.Variant)
	}

	if c.Picker.ChordTimeout < 0 {
		return fmt.Errorf("chord_timeout cannot be negative")
	}
	if c.Feedback.HighlightDelay < 0 {
		return fmt.Errorf("highlight_delay cannot be negative")
	}
	if c.Feedback.AnnounceDelay < 0 {
		return fmt.Errorf("announce_delay cannot be negative")
	}
	if c.Browser.Timeout < 0 {
		return fmt.Errorf("browser timeout cannot be negative")
	}

	seen := make(map[string]string, 3)
	for _, cmd := range []struct {
		name  string
		value *string
	}{
		{"toggle_pick_mode", &c.Commands.TogglePickMode},
		{"read_last_message", &c.Commands.ReadLastMessage},
		{"read_all_shortcuts", &c.Commands.ReadAllShortcuts},
	} {
		if *cmd.value == "" {
			continue
		}
		canonical, err := chord.Parse(*cmd.value)
		if err != nil {
			return fmt.Errorf("invalid chord for %s: %w", cmd.name, err)
		}
		if other, dup := seen[canonical]; dup {
			return fmt.Errorf("chord %s is assigned to both %s and %s", canonical, other, cmd.name)
		}
		seen[canonical] = cmd.name
		*cmd.value = canonical
	}

	for _, pattern := range c.RestrictedURLs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid restricted_urls pattern %q: %w", pattern, err)
		}
	}

	return nil
}
