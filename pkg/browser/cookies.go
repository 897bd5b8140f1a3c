package browser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/playwright-community/playwright-go"
)

// preloadCookies reads a JSON cookie export and injects it into the browser
// context, so authenticated pages work from the first navigation.
func preloadCookies(context playwright.BrowserContext, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read cookies file: %w", err)
	}

	var cookies []playwright.OptionalCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		return fmt.Errorf("failed to parse cookies file: %w", err)
	}
	if len(cookies) == 0 {
		return nil
	}

	if err := context.AddCookies(cookies); err != nil {
		return fmt.Errorf("failed to add cookies: %w", err)
	}
	return nil
}

// logCookieChanges records the context's cookie set when it differs from
// the last observed state. Diagnostic only; failures are swallowed.
func (s *Session) logCookieChanges() {
	cookies, err := s.context.Cookies()
	if err != nil {
		s.logger.Debugf("cookie read failed: %v", err)
		return
	}

	encoded, err := json.Marshal(cookies)
	if err != nil {
		return
	}

	s.mu.Lock()
	changed := s.cookieState != string(encoded)
	if changed {
		s.cookieState = string(encoded)
	}
	s.mu.Unlock()

	if changed {
		s.logger.Infof("cookie state changed: %d cookies", len(cookies))
		s.logger.Debugf("cookies: %s", encoded)
	}
}
