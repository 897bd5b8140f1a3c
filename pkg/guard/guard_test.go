package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyGuardAdmitsEverything(t *testing.T) {
	g, err := New(nil, nil)
	require.NoError(t, err)

	assert.True(t, g.Admits("https://example.com"))
	assert.True(t, g.Admits("http://anything.at.all/path?q=1"))
}

func TestAllowListRestricts(t *testing.T) {
	g, err := New([]string{"https://*.example.com/*", "https://example.com*"}, nil)
	require.NoError(t, err)

	assert.True(t, g.Admits("https://example.com/page"))
	assert.True(t, g.Admits("https://shop.example.com/cart"))
	assert.False(t, g.Admits("https://evil.com/"))
}

func TestDenyBeatsAllow(t *testing.T) {
	g, err := New(
		[]string{"https://*.example.com/*"},
		[]string{"https://admin.example.com/*"},
	)
	require.NoError(t, err)

	assert.True(t, g.Admits("https://shop.example.com/cart"))
	assert.False(t, g.Admits("https://admin.example.com/users"))
}

func TestDenyOnlyGuard(t *testing.T) {
	g, err := New(nil, []string{"*://localhost*", "*://127.0.0.1*"})
	require.NoError(t, err)

	assert.True(t, g.Admits("https://example.com"))
	assert.False(t, g.Admits("http://localhost:8080/secrets"))
	assert.False(t, g.Admits("http://127.0.0.1/"))
}

func TestInvalidPattern(t *testing.T) {
	_, err := New([]string{"https://[invalid"}, nil)
	assert.Error(t, err)

	_, err = New(nil, []string{"https://[invalid"})
	assert.Error(t, err)
}

func TestAdmitsTrimsWhitespace(t *testing.T) {
	g, err := New([]string{"https://example.com"}, nil)
	require.NoError(t, err)

	assert.True(t, g.Admits("  https://example.com "))
}
