package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Default values for browser sessions.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultTimeout        = 30 * time.Second
	DefaultMaxSessions    = 5
)

// Session is one browser window with a single page.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page

	// Headless indicates if the browser is running in headless mode
	Headless bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	timeout time.Duration
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the initial viewport size
	Viewport *Viewport

	// Timeout bounds page operations (0 selects DefaultTimeout)
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}
