package display

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateIdentity(t *testing.T) {
	// When displayed size equals natural size, coordinates pass through
	// within rounding distance.
	for _, c := range []struct{ x, y float64 }{
		{0, 0},
		{100, 250},
		{1279.4, 719.6},
	} {
		p, err := Translate(c.x, c.y, 1280, 720, 1280, 720)
		require.NoError(t, err)
		assert.InDelta(t, c.x, float64(p.X), 1)
		assert.InDelta(t, c.y, float64(p.Y), 1)
	}
}

func TestTranslateScalesLinearly(t *testing.T) {
	tests := []struct {
		name           string
		x, y           float64
		nw, nh, dw, dh int
		wantX, wantY   int
	}{
		{"display half of natural", 100, 50, 1280, 720, 640, 360, 200, 100},
		{"display double of natural", 200, 100, 1280, 720, 2560, 1440, 100, 50},
		{"non-uniform scale", 10, 10, 1000, 500, 100, 100, 100, 50},
		{"rounds to nearest", 1, 1, 3, 3, 2, 2, 2, 2}, // 1.5 rounds up
		{"origin is fixed point", 0, 0, 1280, 9000, 453, 671, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Translate(tt.x, tt.y, tt.nw, tt.nh, tt.dw, tt.dh)
			require.NoError(t, err)
			assert.Equal(t, Point{X: tt.wantX, Y: tt.wantY}, p)
		})
	}
}

func TestTranslateUndefinedScale(t *testing.T) {
	tests := []struct {
		name           string
		nw, nh, dw, dh int
	}{
		{"zero display width", 1280, 720, 0, 360},
		{"zero display height", 1280, 720, 640, 0},
		{"negative display width", 1280, 720, -640, 360},
		{"zero natural width", 0, 720, 640, 360},
		{"zero natural height", 1280, 0, 640, 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Translate(50, 50, tt.nw, tt.nh, tt.dw, tt.dh)
			require.Error(t, err)

			var translationErr *TranslationError
			assert.True(t, errors.As(err, &translationErr))
		})
	}
}
