// Package guard filters navigation targets against glob pattern rules.
// It is the only policy layer between a client's navigate command and the
// browser; everything else on the relay path is mechanical.
package guard

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Guard matches navigation URLs against allow and deny glob patterns.
// Denied patterns take precedence; an empty allow list admits everything
// that is not denied.
type Guard struct {
	allowed []glob.Glob
	denied  []glob.Glob
}

// New compiles the pattern lists into a Guard. Patterns use gobwas glob
// syntax, e.g. "https://*.example.com/*".
func New(allowed, denied []string) (*Guard, error) {
	g := &Guard{}

	for _, pattern := range allowed {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed pattern '%s': %w", pattern, err)
		}
		g.allowed = append(g.allowed, compiled)
	}

	for _, pattern := range denied {
		compiled, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid denied pattern '%s': %w", pattern, err)
		}
		g.denied = append(g.denied, compiled)
	}

	return g, nil
}

// Admits returns true if the URL passes the pattern rules.
func (g *Guard) Admits(url string) bool {
	url = strings.TrimSpace(url)

	for _, pattern := range g.denied {
		if pattern.Match(url) {
			return false
		}
	}

	if len(g.allowed) == 0 {
		return true
	}

	for _, pattern := range g.allowed {
		if pattern.Match(url) {
			return true
		}
	}

	return false
}
