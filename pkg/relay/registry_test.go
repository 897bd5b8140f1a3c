package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Count())

	r.Register("conn-1")
	r.Register("conn-2")
	assert.Equal(t, 2, r.Count())

	r.Unregister("conn-1")
	assert.Equal(t, 1, r.Count())

	// Unknown IDs are ignored.
	r.Unregister("conn-1")
	r.Unregister("never-registered")
	assert.Equal(t, 1, r.Count())
}

func TestRegistryTouch(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1")

	before := r.Snapshot()[0].LastActiveAt
	time.Sleep(5 * time.Millisecond)
	r.Touch("conn-1")

	after := r.Snapshot()[0].LastActiveAt
	assert.True(t, after.After(before), "Touch should advance LastActiveAt")

	// Touching an unknown connection is a no-op.
	r.Touch("never-registered")
	assert.Equal(t, 1, r.Count())
}

func TestRegistrySnapshotIsCopy(t *testing.T) {
	r := NewRegistry()
	r.Register("conn-1")

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	snap[0].ID = "mutated"

	assert.Equal(t, "conn-1", r.Snapshot()[0].ID)
}
