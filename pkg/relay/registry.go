package relay

import (
	"sync"
	"time"
)

// ConnectionInfo is the liveness metadata tracked per client connection.
type ConnectionInfo struct {
	ID           string
	ConnectedAt  time.Time
	LastActiveAt time.Time
}

// Registry tracks active client connections for diagnostics. It implements
// no eviction; idle policies belong to whoever reads the snapshots.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*ConnectionInfo
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*ConnectionInfo)}
}

// Register records a new connection.
func (r *Registry) Register(id string) {
	now := time.Now()

	r.mu.Lock()
	r.conns[id] = &ConnectionInfo{
		ID:           id,
		ConnectedAt:  now,
		LastActiveAt: now,
	}
	r.mu.Unlock()

	metricActiveConnections.Inc()
}

// Unregister removes a connection. Unknown IDs are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	_, known := r.conns[id]
	delete(r.conns, id)
	r.mu.Unlock()

	if known {
		metricActiveConnections.Dec()
	}
}

// Touch updates a connection's last-activity timestamp.
func (r *Registry) Touch(id string) {
	r.mu.Lock()
	if info, ok := r.conns[id]; ok {
		info.LastActiveAt = time.Now()
	}
	r.mu.Unlock()
}

// Count returns the number of active connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot returns a copy of the current connection metadata.
func (r *Registry) Snapshot() []ConnectionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ConnectionInfo, 0, len(r.conns))
	for _, info := range r.conns {
		infos = append(infos, *info)
	}
	return infos
}
