// Package renderer draws directed scenes into RGBA frames.
//
// Frames are rasterised in software: shapes and text go through gg with
// the Go fonts, QR codes through go-qrcode.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/scene"
	"github.com/ivlev/knn2video/internal/system"
)

// Default stroke widths, in pixels of a 1080p frame
const (
	LineStroke  = 4.0
	BraceStroke = 3.0
	AxisStroke  = 2.0
)

// DotRadius is used by dots without an explicit radius
const DotRadius = 0.08

// Options control the frame canvas
type Options struct {
	Width       int
	Height      int
	Background  color.Color // Defaults to black
	Backdrop    image.Image // Optional image behind the scene
	BackdropDim float64     // 0..1, darkening applied over the backdrop
}

// Renderer draws frames of one directed scene. It keeps per-scene caches
// and is not safe for concurrent use; create one per goroutine.
type Renderer struct {
	scene  *scene.Scene
	script *director.Script
	opts   Options

	fonts faceCache
	qr    map[string]image.Image
}

// New creates a renderer for a scene and its script
func New(sc *scene.Scene, script *director.Script, opts Options) (*Renderer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", opts.Width, opts.Height)
	}
	if sc.Name != script.Name {
		return nil, fmt.Errorf("script %q does not belong to scene %q", script.Name, sc.Name)
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	return &Renderer{
		scene:  sc,
		script: script,
		opts:   opts,
		fonts:  faceCache{},
		qr:     map[string]image.Image{},
	}, nil
}

// Bounds returns the frame rectangle
func (r *Renderer) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.opts.Width, r.opts.Height)
}

// Frame renders the moment t into a new image
func (r *Renderer) Frame(t float64) (*image.RGBA, error) {
	dst := image.NewRGBA(r.Bounds())
	if err := r.DrawFrame(dst, t); err != nil {
		return nil, err
	}
	return dst, nil
}

// DrawFrame renders the moment t into dst, overwriting it
func (r *Renderer) DrawFrame(dst *image.RGBA, t float64) error {
	if dst.Bounds() != r.Bounds() {
		return fmt.Errorf("frame is %v, want %v", dst.Bounds(), r.Bounds())
	}
	c := newCanvas(dst)
	r.background(c, dst)

	proj := newProjector(r.opts.Width, r.opts.Height, InterpolateKeyframes(r.script.Keyframes, t))
	states := StatesAt(r.script, t)

	for _, el := range r.scene.Elements {
		st, ok := states[el.ID]
		if !ok || !st.Visible || st.Opacity <= 0 {
			continue
		}
		if err := r.drawElement(c, dst, proj, el, st); err != nil {
			return fmt.Errorf("element %s: %w", el.ID, err)
		}
	}
	return nil
}

func (r *Renderer) background(c *canvas, dst *image.RGBA) {
	c.clear(r.opts.Background)
	if r.opts.Backdrop == nil {
		return
	}
	drawScaled(dst, fitRect(r.opts.Backdrop.Bounds(), dst.Bounds()), r.opts.Backdrop, 1, true)
	if r.opts.BackdropDim > 0 {
		c.shade(r.opts.BackdropDim)
	}
}

// fitRect centres src inside dst keeping its aspect ratio
func fitRect(src, dst image.Rectangle) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw == 0 || sh == 0 {
		return image.Rectangle{}
	}
	k := math.Min(float64(dst.Dx())/sw, float64(dst.Dy())/sh)
	w, h := int(sw*k), int(sh*k)
	x := dst.Min.X + (dst.Dx()-w)/2
	y := dst.Min.Y + (dst.Dy()-h)/2
	return image.Rect(x, y, x+w, y+h)
}

// stroke converts a stroke width to pixels of the current frame
func (r *Renderer) stroke(width, def float64) float64 {
	if width <= 0 {
		width = def
	}
	return math.Max(1, width*float64(r.opts.Height)/1080)
}

// drawText draws s centred on at with a face of size pixels
func (r *Renderer) drawText(c *canvas, s string, at fpt, size float64, italic bool, col color.NRGBA, share float64) error {
	if s == "" || size < 1 {
		return nil
	}
	face, err := r.fonts.face(italic, size)
	if err != nil {
		return err
	}
	c.text(face, s, at, col, share)
	return nil
}

func (r *Renderer) drawElement(c *canvas, dst *image.RGBA, proj projector, el scene.Element, st ElementState) error {
	col := nrgba(el.Color, st.Opacity)
	pt := func(p scene.Point) fpt {
		if el.FixedInFrame {
			return proj.fixed(p)
		}
		return proj.project(p)
	}

	switch el.Kind {
	case scene.KindText, scene.KindMath:
		s := el.Text
		if el.Kind == scene.KindMath {
			s = TexToUnicode(s)
		}
		size := proj.pixels(TextHeight * el.Scale * st.Scale)
		return r.drawText(c, s, pt(el.Anchor()), size, el.Slant, col, st.Progress)

	case scene.KindDot:
		radius := el.Radius
		if radius <= 0 {
			radius = DotRadius
		}
		c.disc(pt(el.Anchor()), proj.pixels(radius)*st.Scale*st.Progress, col)

	case scene.KindLine, scene.KindPolygon:
		closed := el.Kind == scene.KindPolygon
		if len(el.Points) < 2 {
			return nil
		}
		pts := make([]fpt, len(el.Points))
		for i, p := range el.Points {
			pts[i] = pt(p)
		}
		centre := centroid(pts)
		pts = scaleAbout(partial(pts, st.Progress, closed), centre, st.Scale)
		c.polyline(pts, r.stroke(el.StrokeWidth, LineStroke), col)

	case scene.KindDashedLine:
		if len(el.Points) < 2 {
			return nil
		}
		a, b := pt(el.Points[0]), pt(el.Points[1])
		b = fpt{a.X + (b.X-a.X)*st.Progress, a.Y + (b.Y-a.Y)*st.Progress}
		c.dashed(a, b, r.stroke(el.StrokeWidth, LineStroke), proj.pixels(0.1), proj.pixels(0.08), col)

	case scene.KindBrace:
		if len(el.Points) < 2 {
			return nil
		}
		path := bracePath(el.Points[0], el.Points[1])
		pts := make([]fpt, len(path))
		for i, p := range path {
			pts[i] = pt(p)
		}
		pts = scaleAbout(partial(pts, st.Progress, false), centroid(pts), st.Scale)
		c.polyline(pts, r.stroke(el.StrokeWidth, BraceStroke), col)

	case scene.KindCircle:
		centre := el.Anchor()
		const samples = 96
		pts := make([]fpt, samples)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / samples
			pts[i] = pt(centre.Add(scene.Point{X: el.Radius * math.Cos(a), Y: el.Radius * math.Sin(a)}))
		}
		pts = scaleAbout(partial(pts, st.Progress, true), pt(centre), st.Scale)
		c.polyline(pts, r.stroke(el.StrokeWidth, LineStroke), col)

	case scene.KindNumberLine, scene.KindAxes:
		return r.drawAxes(c, proj, el, st, pt)

	case scene.KindQRCode:
		return r.drawQR(dst, proj, el, st, pt)

	default:
		return fmt.Errorf("unsupported kind %q", el.Kind)
	}
	return nil
}

// drawAxes draws every axis as a line from its minimum to its maximum with
// ticks, optional numbers and arrow tips
func (r *Renderer) drawAxes(c *canvas, proj projector, el scene.Element, st ElementState, pt func(scene.Point) fpt) error {
	spec := el.Axis
	if spec == nil {
		return fmt.Errorf("axes without axis spec")
	}
	col := nrgba(el.Color, st.Opacity)
	width := r.stroke(el.StrokeWidth, AxisStroke)
	tick := proj.pixels(0.1)

	type label struct {
		text string
		at   fpt
	}
	var labels []label
	var pieces [][2]fpt
	var tips [][]fpt

	for i := 0; i < spec.Dims() && i < 3; i++ {
		rng := spec.Ranges[i]
		lo, hi := spec.Crossing(), spec.Crossing()
		lo[i], hi[i] = rng.Min, rng.Max
		a, b := pt(spec.C2P(lo...)), pt(spec.C2P(hi...))

		l := math.Hypot(b.X-a.X, b.Y-a.Y)
		if l == 0 {
			continue
		}
		ux, uy := (b.X-a.X)/l, (b.Y-a.Y)/l
		end := fpt{a.X + ux*l*st.Progress, a.Y + uy*l*st.Progress}
		pieces = append(pieces, [2]fpt{a, end})

		for _, v := range spec.Ticks(i) {
			if rng.Span() != 0 && (v-rng.Min)/rng.Span() > st.Progress+1e-9 {
				break
			}
			at := spec.Crossing()
			at[i] = v
			p := pt(spec.C2P(at...))
			pieces = append(pieces, [2]fpt{{p.X - uy*tick, p.Y + ux*tick}, {p.X + uy*tick, p.Y - ux*tick}})

			if spec.Numbers && (spec.Dims() == 1 || v != spec.Crossing()[i]) {
				off := proj.pixels(0.35)
				at := fpt{p.X, p.Y + off}
				if i > 0 {
					at = fpt{p.X - off, p.Y}
				}
				labels = append(labels, label{text: formatTick(v), at: at})
			}
		}

		if spec.Tips && st.Progress >= 1 {
			tl, tw := proj.pixels(0.2), proj.pixels(0.08)
			tips = append(tips, []fpt{
				{b.X + ux*tl, b.Y + uy*tl},
				{b.X - uy*tw, b.Y + ux*tw},
				{b.X + uy*tw, b.Y - ux*tw},
			})
		}
	}
	c.segments(pieces, width, col)
	for _, tip := range tips {
		c.polygon(tip, col)
	}

	size := proj.pixels(TextHeight * 0.6 * st.Scale)
	for _, lb := range labels {
		if err := r.drawText(c, lb.text, lb.at, size, false, col, 1); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) drawQR(dst *image.RGBA, proj projector, el scene.Element, st ElementState, pt func(scene.Point) fpt) error {
	side := int(math.Round(proj.pixels(2*el.Radius) * st.Scale))
	if side <= 0 {
		return nil
	}
	img, ok := r.qr[el.Text]
	if !ok {
		var err error
		if img, err = qrImage(el.Text, side); err != nil {
			return err
		}
		r.qr[el.Text] = img
	}
	c := pt(el.Anchor())
	x, y := int(math.Round(c.X))-side/2, int(math.Round(c.Y))-side/2
	drawScaled(dst, image.Rect(x, y, x+side, y+side), img, st.Opacity*st.Progress, false)
	return nil
}

// bracePath samples a curly brace between from and to, bulging along
// scene.BraceNormal
func bracePath(from, to scene.Point) []scene.Point {
	const samples = 48
	n := scene.BraceNormal(from, to)
	d := to.Sub(from)
	pts := make([]scene.Point, 0, samples+1)
	for k := 0; k <= samples; k++ {
		s := float64(k) / samples
		h := scene.BraceDepth / 2 * smoothstep(math.Min(s, 1-s)/0.08)
		h += scene.BraceDepth / 2 * smoothstep(1-math.Abs(s-0.5)/0.06)
		pts = append(pts, from.Add(d.Scale(s)).Add(n.Scale(h)))
	}
	return pts
}

func smoothstep(x float64) float64 {
	x = math.Max(0, math.Min(1, x))
	return x * x * (3 - 2*x)
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func nrgba(c scene.Color, opacity float64) color.NRGBA {
	r, g, b := c.RGB()
	a := math.Max(0, math.Min(1, opacity))
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(a * 255))}
}

// Sequence exposes the frames of a scene at a fixed rate. Frames come from
// the shared image pool and must be handed back with Release.
type Sequence struct {
	r      *Renderer
	fps    int
	frames int
}

// Sequence returns the frame sequence of the whole script
func (r *Renderer) Sequence(fps int) *Sequence {
	return &Sequence{
		r:      r,
		fps:    fps,
		frames: int(math.Round(r.script.Duration * float64(fps))),
	}
}

// Bounds returns the frame rectangle
func (s *Sequence) Bounds() image.Rectangle { return s.r.Bounds() }

// Frames returns the number of frames
func (s *Sequence) Frames() int { return s.frames }

// Frame renders frame i
func (s *Sequence) Frame(i int) (*image.RGBA, error) {
	img := system.GetImage(s.r.Bounds())
	if err := s.r.DrawFrame(img, float64(i)/float64(s.fps)); err != nil {
		system.PutImage(img)
		return nil, err
	}
	return img, nil
}

// Release returns a frame to the pool
func (s *Sequence) Release(img *image.RGBA) {
	system.PutImage(img)
}
