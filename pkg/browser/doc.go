// Package browser wraps Playwright into the single browser session the
// periscope server drives on behalf of its clients.
//
// # Architecture
//
// The package is built around two types:
//
//  1. Manager: owns the Playwright driver and the lifecycle of the one
//     browser session the process ever has
//  2. Session: the live page, exposing the primitive operations the relay
//     dispatches: navigate, history traversal, click, scroll, key input,
//     and full-page screenshot capture
//
// # Session lifecycle
//
// The session is created once at process start and persists until
// shutdown. Clients come and go; the session does not. This is the core
// design constraint of the system: every connected client sees the same
// page, and any client's command mutates the state all of them observe.
//
// # Input replay
//
// Clients forward raw input events, not DOM events. Clicks arrive as page
// coordinates (already translated from displayed-image space by the relay),
// and keystrokes arrive as DOM key values with modifier flags. A single
// printable character is typed as text; named keys and modifier chords are
// dispatched as key presses. After clicks and keys the session pauses
// briefly so the page's reaction is likely visible in the next screenshot.
//
// # Failure policy
//
// Operations that can fail return typed errors (NavigationError,
// SessionNotReadyError) for the relay to convert into error results. The
// session itself never terminates the process.
package browser
