package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// canvas draws pixel-space shapes onto one frame through a gg context.
// Strokes have round caps and joins so partially drawn paths end cleanly.
type canvas struct {
	dc *gg.Context
}

func newCanvas(dst *image.RGBA) *canvas {
	dc := gg.NewContextForRGBA(dst)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	return &canvas{dc: dc}
}

// clear fills the whole frame with col, replacing what was there
func (c *canvas) clear(col color.Color) {
	c.dc.SetColor(col)
	c.dc.Clear()
}

// shade darkens everything drawn so far
func (c *canvas) shade(alpha float64) {
	a := uint8(math.Round(math.Max(0, math.Min(alpha, 1)) * 255))
	c.dc.DrawRectangle(0, 0, float64(c.dc.Width()), float64(c.dc.Height()))
	c.dc.SetColor(color.NRGBA{A: a})
	c.dc.Fill()
}

// polygon fills a closed shape
func (c *canvas) polygon(pts []fpt, col color.NRGBA) {
	if len(pts) < 3 || col.A == 0 {
		return
	}
	c.path(pts, true)
	c.dc.SetColor(col)
	c.dc.Fill()
}

// disc fills a circle
func (c *canvas) disc(center fpt, radius float64, col color.NRGBA) {
	if radius <= 0 || col.A == 0 {
		return
	}
	c.dc.DrawCircle(center.X, center.Y, radius)
	c.dc.SetColor(col)
	c.dc.Fill()
}

// polyline strokes consecutive points as one path
func (c *canvas) polyline(pts []fpt, width float64, col color.NRGBA) {
	if len(pts) < 2 || col.A == 0 {
		return
	}
	c.path(pts, false)
	c.stroke(width, col)
}

// segments strokes independent pieces in a single pass, so crossings are
// painted once even with translucent colours
func (c *canvas) segments(pieces [][2]fpt, width float64, col color.NRGBA) {
	if len(pieces) == 0 || col.A == 0 {
		return
	}
	for _, s := range pieces {
		c.dc.MoveTo(s[0].X, s[0].Y)
		c.dc.LineTo(s[1].X, s[1].Y)
	}
	c.stroke(width, col)
}

// dashed strokes a straight line as dashes of dash pixels separated by gap
func (c *canvas) dashed(a, b fpt, width, dash, gap float64, col color.NRGBA) {
	if a == b || dash <= 0 || col.A == 0 {
		return
	}
	c.dc.SetDash(dash, gap)
	c.dc.DrawLine(a.X, a.Y, b.X, b.Y)
	c.stroke(width, col)
	c.dc.SetDash()
}

// text draws s with its full-string layout centred on at, revealing only
// the first share of the runes
func (c *canvas) text(face font.Face, s string, at fpt, col color.NRGBA, share float64) {
	if s == "" || col.A == 0 || share <= 0 {
		return
	}
	c.dc.SetFontFace(face)
	c.dc.SetColor(col)

	width, _ := c.dc.MeasureString(s)
	m := face.Metrics()
	ascent := float64(m.Ascent) / 64
	descent := float64(m.Descent) / 64

	runes := []rune(s)
	n := len(runes)
	if share < 1 {
		n = int(math.Ceil(share * float64(len(runes))))
	}
	c.dc.DrawString(string(runes[:n]), at.X-width/2, at.Y+(ascent+descent)/2-descent)
}

func (c *canvas) path(pts []fpt, closed bool) {
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	if closed {
		c.dc.ClosePath()
	}
}

func (c *canvas) stroke(width float64, col color.NRGBA) {
	c.dc.SetLineWidth(width)
	c.dc.SetColor(col)
	c.dc.Stroke()
}

// partial returns the leading share of a polyline by arc length
func partial(pts []fpt, share float64, closed bool) []fpt {
	if share >= 1 || len(pts) < 2 {
		if closed && len(pts) > 1 {
			return append(append([]fpt(nil), pts...), pts[0])
		}
		return pts
	}
	if share <= 0 {
		return nil
	}

	path := pts
	if closed {
		path = append(append([]fpt(nil), pts...), pts[0])
	}
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		total += math.Hypot(path[i+1].X-path[i].X, path[i+1].Y-path[i].Y)
	}

	remaining := total * share
	out := []fpt{path[0]}
	for i := 0; i+1 < len(path); i++ {
		seg := math.Hypot(path[i+1].X-path[i].X, path[i+1].Y-path[i].Y)
		if seg >= remaining {
			t := 0.0
			if seg > 0 {
				t = remaining / seg
			}
			out = append(out, fpt{
				path[i].X + (path[i+1].X-path[i].X)*t,
				path[i].Y + (path[i+1].Y-path[i].Y)*t,
			})
			return out
		}
		remaining -= seg
		out = append(out, path[i+1])
	}
	return out
}

// scaleAbout scales points towards centre
func scaleAbout(pts []fpt, centre fpt, s float64) []fpt {
	if s == 1 {
		return pts
	}
	out := make([]fpt, len(pts))
	for i, p := range pts {
		out[i] = fpt{centre.X + (p.X-centre.X)*s, centre.Y + (p.Y-centre.Y)*s}
	}
	return out
}

func centroid(pts []fpt) fpt {
	var c fpt
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pts))
	c.Y /= float64(len(pts))
	return c
}
