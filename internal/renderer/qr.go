package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

// qrImage encodes content as a QR code of roughly size pixels
func qrImage(content string, size int) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White
	return q.Image(size), nil
}

// drawScaled draws src into rect with the given opacity. Nearest neighbour
// keeps QR modules sharp.
func drawScaled(dst *image.RGBA, rect image.Rectangle, src image.Image, opacity float64, smooth bool) {
	if opacity <= 0 || rect.Empty() {
		return
	}
	var opts *draw.Options
	if opacity < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 255))})}
	}
	var scaler draw.Scaler = draw.NearestNeighbor
	if smooth {
		scaler = draw.ApproxBiLinear
	}
	scaler.Scale(dst, rect, src, src.Bounds(), draw.Over, opts)
}
