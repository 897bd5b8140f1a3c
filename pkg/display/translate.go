// Package display bridges the gap between what the client renders and what
// the browser executes. The client only ever shows a bitmap of the page, at
// whatever size its layout gives it, so pointer positions must be rescaled
// from displayed-image space into the browser's logical page space before
// they can be replayed. The package also owns the screenshot encoding
// pipeline that produces those bitmaps.
package display

import (
	"fmt"
	"math"
)

// TranslationError indicates that a client-reported coordinate could not be
// mapped into page space.
type TranslationError struct {
	Reason string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("coordinate translation failed: %s", e.Reason)
}

// Point is a position in the browser's logical page coordinate space.
type Point struct {
	X int
	Y int
}

// Translate maps a pointer position (x, y) reported in displayed-image
// pixels into page space, given the image's natural dimensions and the size
// it was displayed at. Zero or negative dimensions make the scale undefined
// and yield a TranslationError.
func Translate(x, y float64, naturalW, naturalH, displayW, displayH int) (Point, error) {
	if displayW <= 0 || displayH <= 0 {
		return Point{}, &TranslationError{
			Reason: fmt.Sprintf("displayed size %dx%d has no defined scale", displayW, displayH),
		}
	}
	if naturalW <= 0 || naturalH <= 0 {
		return Point{}, &TranslationError{
			Reason: fmt.Sprintf("natural size %dx%d has no defined scale", naturalW, naturalH),
		}
	}

	scaleX := float64(naturalW) / float64(displayW)
	scaleY := float64(naturalH) / float64(displayH)

	return Point{
		X: int(math.Round(x * scaleX)),
		Y: int(math.Round(y * scaleY)),
	}, nil
}
