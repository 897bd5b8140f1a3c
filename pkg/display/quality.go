package display

import (
	"bytes"
	"fmt"
	"image"
	stddraw "image/draw"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
)

const (
	// reductionFactor shrinks the image before blowing it back up,
	// discarding fine detail while keeping the displayed size stable.
	reductionFactor = 0.7

	// jpegQuality is the encoder quality for low-bandwidth output.
	jpegQuality = 30
)

// Dimensions returns the pixel size of an encoded PNG without decoding the
// full image.
func Dimensions(pngData []byte) (width, height int, err error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngData))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read PNG header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// ReduceQuality re-encodes a PNG screenshot as a low-bandwidth JPEG of the
// same pixel dimensions. The image is scaled down and back up to shed
// detail, composited over white to drop any alpha channel, and encoded at
// low quality.
func ReduceQuality(pngData []byte) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	// Composite over white; JPEG has no alpha.
	flat := image.NewRGBA(bounds)
	stddraw.Draw(flat, bounds, image.White, image.Point{}, stddraw.Src)
	stddraw.Draw(flat, bounds, src, bounds.Min, stddraw.Over)

	reducedW := int(float64(w) * reductionFactor)
	reducedH := int(float64(h) * reductionFactor)
	if reducedW < 1 {
		reducedW = 1
	}
	if reducedH < 1 {
		reducedH = 1
	}

	reduced := image.NewRGBA(image.Rect(0, 0, reducedW, reducedH))
	draw.BiLinear.Scale(reduced, reduced.Bounds(), flat, bounds, draw.Src, nil)

	restored := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(restored, restored.Bounds(), reduced, reduced.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, restored, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}
