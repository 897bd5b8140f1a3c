// Package relay is the control loop between connected clients and the one
// shared browser session.
//
// Clients submit tagged commands; the relay validates them, applies them to
// the browser, and pushes results (usually a fresh screenshot) back to the
// originating connection only. Nothing is ever broadcast.
//
// # Serialization
//
// The session is a single shared mutable resource. To keep concurrent
// clients from interleaving half-applied actions, every command flows
// through a bounded FIFO queue drained by one worker goroutine that owns
// the browser exclusively. One command is in flight at any moment,
// across all connections. When the queue is full, submissions are
// rejected with a busy error rather than blocking the transport.
//
// # Failure policy
//
// Command failures are converted to error results for the originating
// connection; the session, the worker, and every other connection are
// unaffected.
package relay
