package browser

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/periscope/pkg/logging"
)

// Manager owns the Playwright driver and the process's single browser
// session. The session is created once at startup and lives until
// shutdown; there is deliberately no multi-session support.
type Manager struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	session     *Session
	logger      *logging.Logger
	initialized bool
}

// NewManager creates a manager. Initialize must be called before Start.
func NewManager(logger *logging.Logger) *Manager {
	return &Manager{logger: logger}
}

// Initialize installs (if needed) and starts the Playwright driver.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	// Driver output goes to the run log, not the server's stdio.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  m.logger.Writer(),
		Stderr:  m.logger.Writer(),
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	m.logger.Infof("playwright driver started")
	return nil
}

// Start launches the browser and creates the session. Calling Start while a
// session exists is an error; the session is a process-wide singleton.
func (m *Manager) Start(opts SessionOptions) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return nil, &SessionNotReadyError{}
	}
	if m.session != nil {
		return nil, fmt.Errorf("browser session already started")
	}

	opts = opts.withDefaults()

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     launchArgs,
	}
	b, err := m.playwright.Chromium.Launch(launchOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	context, err := b.NewContext(contextOpts)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	if opts.CookiesFile != "" {
		if err := preloadCookies(context, opts.CookiesFile); err != nil {
			m.logger.Warnf("cookie preload failed, continuing without: %v", err)
		} else {
			m.logger.Infof("preloaded cookies from %s", opts.CookiesFile)
		}
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	page.SetDefaultTimeout(opts.NavigationTimeout)

	now := time.Now()
	m.session = &Session{
		browser:    b,
		context:    context,
		page:       page,
		opts:       opts,
		logger:     m.logger,
		createdAt:  now,
		lastUsedAt: now,
	}

	m.logger.Infof("browser session started (headless=%v, viewport=%dx%d)",
		opts.Headless, opts.Viewport.Width, opts.Viewport.Height)
	return m.session, nil
}

// Session returns the active session, or nil before Start succeeds.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Ready reports whether the browser session is up and usable.
func (m *Manager) Ready() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized && m.session != nil
}

// Shutdown closes the session and stops the Playwright driver. Safe to call
// when nothing was ever started.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		// Ignore close errors, continue cleanup.
		_ = m.session.page.Close()
		_ = m.session.context.Close()
		_ = m.session.browser.Close()
		m.session = nil
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}

	m.logger.Infof("browser manager shut down")
	return nil
}
