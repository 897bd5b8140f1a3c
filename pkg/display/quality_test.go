package display

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestPNG renders a noisy gradient so the JPEG encoder has real
// detail to throw away.
func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8((x * 7) % 256),
				G: uint8((y * 13) % 256),
				B: uint8((x*y + x) % 256),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDimensions(t *testing.T) {
	data := encodeTestPNG(t, 320, 180)

	w, h, err := Dimensions(data)
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 180, h)
}

func TestDimensionsRejectsGarbage(t *testing.T) {
	_, _, err := Dimensions([]byte("not a png"))
	assert.Error(t, err)
}

func TestReduceQualityKeepsSizeShrinksBytes(t *testing.T) {
	data := encodeTestPNG(t, 320, 180)

	reduced, err := ReduceQuality(data)
	require.NoError(t, err)
	assert.Less(t, len(reduced), len(data))

	// Output is a valid JPEG with the original pixel dimensions.
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(reduced))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
}

func TestReduceQualityTinyImage(t *testing.T) {
	data := encodeTestPNG(t, 1, 1)

	reduced, err := ReduceQuality(data)
	require.NoError(t, err)
	assert.NotEmpty(t, reduced)
}

func TestReduceQualityRejectsGarbage(t *testing.T) {
	_, err := ReduceQuality([]byte("not a png"))
	assert.Error(t, err)
}
