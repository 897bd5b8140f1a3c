package browser

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/periscope/pkg/logging"
)

// Session is the single live browser page the server controls. All methods
// are expected to be called from one goroutine at a time (the relay worker
// serializes commands); the internal mutex only protects metadata read
// concurrently by the status endpoint.
type Session struct {
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	opts    SessionOptions
	logger  *logging.Logger

	mu          sync.RWMutex
	currentURL  string
	createdAt   time.Time
	lastUsedAt  time.Time
	cookieState string
}

// CurrentURL returns the URL of the current page, or "" before the first
// navigation.
func (s *Session) CurrentURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentURL
}

// LastUsedAt returns the timestamp of the last operation on the session.
func (s *Session) LastUsedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUsedAt
}

// Viewport returns the session's fixed logical viewport size.
func (s *Session) Viewport() Viewport {
	return s.opts.Viewport
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsedAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) setCurrentURL(url string) {
	s.mu.Lock()
	s.currentURL = url
	s.mu.Unlock()
}

// Navigate loads the given URL, waiting first for network quiescence and
// falling back to the basic load event when the page never goes quiet.
// On failure the session stays on its previous page.
func (s *Session) Navigate(rawURL string) error {
	s.touch()

	url := NormalizeURL(rawURL)
	if url == "" {
		return &NavigationError{URL: rawURL, Err: errors.New("empty URL")}
	}

	if err := s.goTo(url, "networkidle"); err != nil {
		s.logger.Warnf("networkidle wait failed for %s, retrying with load: %v", url, err)
		if err := s.goTo(url, "load"); err != nil {
			return &NavigationError{URL: url, Err: err}
		}
	}

	s.setCurrentURL(s.page.URL())
	s.logCookieChanges()
	return nil
}

func (s *Session) goTo(url, waitUntil string) error {
	state := playwright.WaitUntilState(waitUntil)
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: &state,
		Timeout:   playwright.Float(s.opts.NavigationTimeout),
	})
	return err
}

// Reload re-fetches the current page with the same wait policy as Navigate.
// Reloading before anything has been loaded is an error.
func (s *Session) Reload() error {
	s.touch()

	current := s.CurrentURL()
	if current == "" || current == "about:blank" {
		return &NavigationError{Err: errors.New("no page loaded yet")}
	}

	if err := s.reload("networkidle"); err != nil {
		s.logger.Warnf("networkidle wait failed on reload, retrying with load: %v", err)
		if err := s.reload("load"); err != nil {
			return &NavigationError{URL: current, Err: err}
		}
	}

	s.setCurrentURL(s.page.URL())
	return nil
}

func (s *Session) reload(waitUntil string) error {
	state := playwright.WaitUntilState(waitUntil)
	_, err := s.page.Reload(playwright.PageReloadOptions{
		WaitUntil: &state,
		Timeout:   playwright.Float(s.opts.NavigationTimeout),
	})
	return err
}

// GoBack traverses one step back in the session history. Having no history
// to go back to is a no-op, not an error.
func (s *Session) GoBack() error {
	s.touch()

	resp, err := s.page.GoBack()
	if err != nil {
		return fmt.Errorf("history back failed: %w", err)
	}
	if resp == nil {
		return nil // no history entry in that direction
	}

	s.setCurrentURL(s.page.URL())
	return nil
}

// GoForward traverses one step forward in the session history, mirroring
// GoBack's no-op behavior.
func (s *Session) GoForward() error {
	s.touch()

	resp, err := s.page.GoForward()
	if err != nil {
		return fmt.Errorf("history forward failed: %w", err)
	}
	if resp == nil {
		return nil
	}

	s.setCurrentURL(s.page.URL())
	return nil
}

// ClickAt dispatches a primary-button click at the given page coordinates,
// then pauses so any resulting DOM mutation or navigation can begin before
// the caller captures a screenshot.
func (s *Session) ClickAt(x, y int) error {
	s.touch()

	if err := s.page.Mouse().Click(float64(x), float64(y)); err != nil {
		return fmt.Errorf("click at (%d, %d) failed: %w", x, y, err)
	}

	time.Sleep(s.opts.ClickSettle)

	// The click may have triggered a navigation.
	s.setCurrentURL(s.page.URL())
	return nil
}

// ScrollTo sets the page's scroll offset. Cheap enough that no settle delay
// or screenshot follows.
func (s *Session) ScrollTo(x, y int) error {
	s.touch()

	if _, err := s.page.Evaluate(fmt.Sprintf("window.scrollTo(%d, %d)", x, y)); err != nil {
		return fmt.Errorf("scroll to (%d, %d) failed: %w", x, y, err)
	}
	return nil
}

// SendKey replays a client key event. Printable characters are typed as
// text; named keys are pressed, with any held modifiers wrapped around the
// press. A short pause follows so the page can react before the caller
// captures a screenshot.
func (s *Session) SendKey(k KeyPress) error {
	s.touch()

	keyboard := s.page.Keyboard()

	var err error
	switch classifyKey(k) {
	case actionType:
		err = keyboard.Type(k.Key)
	case actionPress:
		err = keyboard.Press(k.Key)
	case actionChord:
		err = s.pressChord(k)
	}
	if err != nil {
		return fmt.Errorf("key dispatch %q failed: %w", k.Key, err)
	}

	time.Sleep(s.opts.KeySettle)
	return nil
}

// pressChord holds the modifiers down, presses the main key, and releases
// the modifiers in reverse order. Held modifiers are always released, even
// when the press fails.
func (s *Session) pressChord(k KeyPress) error {
	keyboard := s.page.Keyboard()
	mods := k.Modifiers()

	var held []string
	var firstErr error
	for _, mod := range mods {
		if err := keyboard.Down(mod); err != nil {
			firstErr = fmt.Errorf("modifier %s down failed: %w", mod, err)
			break
		}
		held = append(held, mod)
	}

	if firstErr == nil {
		if err := keyboard.Press(k.Key); err != nil {
			firstErr = fmt.Errorf("press %q failed: %w", k.Key, err)
		}
	}

	for i := len(held) - 1; i >= 0; i-- {
		if err := keyboard.Up(held[i]); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("modifier %s up failed: %w", held[i], err)
		}
	}

	return firstErr
}

// CaptureScreenshot renders the full scrollable page as a PNG.
func (s *Session) CaptureScreenshot() ([]byte, error) {
	s.touch()

	data, err := s.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return data, nil
}
