package renderer

import (
	"math"

	"github.com/ivlev/knn2video/internal/scene"
)

// fpt is a point in pixel space
type fpt struct {
	X, Y float64
}

// projector maps scene points to pixels through an orthographic camera
type projector struct {
	cx, cy float64 // Frame centre in pixels
	ppu    float64 // Pixels per scene unit
	zoom   float64

	// Rotation about z by -(theta+90°), then about x by -phi
	cosA, sinA float64
	cosB, sinB float64
}

func newProjector(width, height int, cam CameraState) projector {
	ppu := math.Min(float64(width)/scene.FrameWidth, float64(height)/scene.FrameHeight)
	zoom := cam.Zoom
	if zoom <= 0 {
		zoom = 1.0
	}
	a := -(cam.Theta + 90) * math.Pi / 180
	b := -cam.Phi * math.Pi / 180
	return projector{
		cx:   float64(width) / 2,
		cy:   float64(height) / 2,
		ppu:  ppu,
		zoom: zoom,
		cosA: math.Cos(a), sinA: math.Sin(a),
		cosB: math.Cos(b), sinB: math.Sin(b),
	}
}

// project maps a point seen through the camera
func (p projector) project(pt scene.Point) fpt {
	x1 := pt.X*p.cosA - pt.Y*p.sinA
	y1 := pt.X*p.sinA + pt.Y*p.cosA
	y2 := y1*p.cosB - pt.Z*p.sinB
	return p.toPixels(x1*p.zoom, y2*p.zoom)
}

// fixed maps a point pinned to the frame, ignoring the camera
func (p projector) fixed(pt scene.Point) fpt {
	return p.toPixels(pt.X, pt.Y)
}

func (p projector) toPixels(x, y float64) fpt {
	return fpt{X: p.cx + x*p.ppu, Y: p.cy - y*p.ppu}
}

// pixels converts a length in scene units
func (p projector) pixels(units float64) float64 {
	return units * p.ppu
}
