// Package analyzer finds what was actually drawn on a rendered frame, so
// scene layouts can be checked against the frame borders.
package analyzer

import "image"

// Block is a connected region of drawn pixels
type Block struct {
	Rect image.Rectangle
	Area int // Number of lit pixels
}

// Detector is the interface for frame analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Block, error)
}

// Clipped returns the blocks that come closer than margin pixels to the
// edge of bounds
func Clipped(blocks []Block, bounds image.Rectangle, margin int) []Block {
	inner := bounds.Inset(margin)
	var out []Block
	for _, b := range blocks {
		if !b.Rect.In(inner) {
			out = append(out, b)
		}
	}
	return out
}
