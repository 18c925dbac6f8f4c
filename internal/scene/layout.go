package scene

import "math"

// Range is an axis interval with its tick step.
type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Span returns Max-Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// AxisSpec describes a number line (one range) or a set of axes (two or
// three ranges). Each axis of Lengths[i] scene units is centred on Center.
type AxisSpec struct {
	Center  Point     `yaml:"center"`
	Ranges  []Range   `yaml:"ranges"`
	Lengths []float64 `yaml:"lengths"`
	Tips    bool      `yaml:"tips,omitempty"`
	Numbers bool      `yaml:"numbers,omitempty"`
}

// Dims returns the number of axes.
func (a AxisSpec) Dims() int {
	return len(a.Ranges)
}

// UnitLength returns the scene length of one unit along axis i.
func (a AxisSpec) UnitLength(i int) float64 {
	if i >= len(a.Ranges) || i >= len(a.Lengths) || a.Ranges[i].Span() == 0 {
		return 0
	}
	return a.Lengths[i] / a.Ranges[i].Span()
}

// C2P maps axis coordinates to a scene point. Missing coordinates take the
// axis crossing value.
func (a AxisSpec) C2P(coords ...float64) Point {
	origin := a.Crossing()
	var off [3]float64
	for i := 0; i < len(a.Ranges) && i < 3; i++ {
		v := origin[i]
		if i < len(coords) {
			v = coords[i]
		}
		mid := (a.Ranges[i].Min + a.Ranges[i].Max) / 2
		off[i] = (v - mid) * a.UnitLength(i)
	}
	return a.Center.Add(Point{X: off[0], Y: off[1], Z: off[2]})
}

// N2P maps a number line value to a scene point.
func (a AxisSpec) N2P(v float64) Point {
	return a.C2P(v)
}

// Crossing returns, per axis, the value where the other axes cross it:
// zero when it lies inside the range, the range minimum otherwise.
func (a AxisSpec) Crossing() []float64 {
	o := make([]float64, len(a.Ranges))
	for i, r := range a.Ranges {
		if r.Min <= 0 && 0 <= r.Max {
			o[i] = 0
		} else {
			o[i] = r.Min
		}
	}
	return o
}

// Ticks returns the tick values of axis i, both ends included.
func (a AxisSpec) Ticks(i int) []float64 {
	if i >= len(a.Ranges) {
		return nil
	}
	r := a.Ranges[i]
	if r.Step <= 0 {
		return nil
	}
	n := int(math.Floor(r.Span()/r.Step + 1e-9))
	ticks := make([]float64, 0, n+1)
	for k := 0; k <= n; k++ {
		ticks = append(ticks, r.Min+float64(k)*r.Step)
	}
	return ticks
}

// BraceDepth is how far a brace bulges out of the segment it spans.
const BraceDepth = 0.2

// BraceNormal returns the unit vector a brace from→to bulges towards: the
// direction turned clockwise, so a left-to-right brace hangs below.
func BraceNormal(from, to Point) Point {
	d := to.Sub(from)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return Point{Y: -1}
	}
	return Point{X: d.Y / l, Y: -d.X / l}
}

// BraceLabel returns the anchor for a label placed buff units beyond the
// tip of the brace between from and to.
func BraceLabel(from, to Point, buff float64) Point {
	mid := from.Add(to).Scale(0.5)
	return mid.Add(BraceNormal(from, to).Scale(BraceDepth + buff))
}

// Top returns the y coordinate buff units below the upper frame edge.
func Top(buff float64) float64 { return FrameHeight/2 - buff }

// Bottom returns the y coordinate buff units above the lower frame edge.
func Bottom(buff float64) float64 { return -FrameHeight/2 + buff }

// Left returns the x coordinate buff units right of the left frame edge.
func Left(buff float64) float64 { return -FrameWidth/2 + buff }

// Right returns the x coordinate buff units left of the right frame edge.
func Right(buff float64) float64 { return FrameWidth/2 - buff }
