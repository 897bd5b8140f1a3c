package browser

import "time"

// SessionOptions configures the browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// Viewport sets the fixed logical viewport size for the session.
	Viewport Viewport

	// UserAgent overrides the browser's User-Agent string.
	UserAgent string

	// NavigationTimeout bounds each navigation wait strategy, in
	// milliseconds.
	NavigationTimeout float64

	// ClickSettle is the pause after a click before the caller should
	// capture a screenshot.
	ClickSettle time.Duration

	// KeySettle is the pause after a key dispatch before the caller
	// should capture a screenshot.
	KeySettle time.Duration

	// CookiesFile optionally points at a JSON file of cookies loaded
	// into the context before the first navigation.
	CookiesFile string
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// KeyPress is a key event forwarded from the client, carrying the DOM key
// value and modifier flags.
type KeyPress struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

// Default values for session options.
const (
	DefaultViewportWidth     = 1280
	DefaultViewportHeight    = 720
	DefaultNavigationTimeout = 30000.0 // milliseconds
	DefaultClickSettle       = 500 * time.Millisecond
	DefaultKeySettle         = 300 * time.Millisecond
)

// launchArgs are the Chromium flags used for containerized headless runs.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
}

// withDefaults fills in zero-valued options.
func (o SessionOptions) withDefaults() SessionOptions {
	if o.Viewport.Width <= 0 {
		o.Viewport.Width = DefaultViewportWidth
	}
	if o.Viewport.Height <= 0 {
		o.Viewport.Height = DefaultViewportHeight
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.ClickSettle <= 0 {
		o.ClickSettle = DefaultClickSettle
	}
	if o.KeySettle <= 0 {
		o.KeySettle = DefaultKeySettle
	}
	return o
}
