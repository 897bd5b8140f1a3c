package browser

import "fmt"

// NavigationError indicates a navigation that could not be completed: the
// URL was unreachable, or both wait strategies timed out. The session stays
// on whatever page it had before.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("navigation failed: %v", e.Err)
	}
	return fmt.Sprintf("navigation to %s failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// SessionNotReadyError indicates an action was requested before the browser
// session finished initializing. Clients should retry after a delay.
type SessionNotReadyError struct{}

func (e *SessionNotReadyError) Error() string {
	return "browser session not initialized"
}
