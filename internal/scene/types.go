// Package scene describes what a tutorial scene draws and in which order.
//
// A Scene is a static graph of visual elements plus an ordered list of steps.
// Scenes are built through a Builder, which records steps strictly in
// authoring order and refuses steps that reference elements not yet added.
// Rendering is left to other packages; nothing here knows about pixels.
package scene

import "fmt"

// Frame dimensions in scene units. The origin is the centre of the frame and
// y grows upwards.
const (
	FrameHeight = 8.0
	FrameWidth  = FrameHeight * 16 / 9
)

// DefaultRunTime is the duration of a Play call without an explicit duration.
const DefaultRunTime = 1.0

// Color is a hex RGB colour ("#RRGGBB").
type Color string

// Palette used by the tutorial scenes.
const (
	White  Color = "#FFFFFF"
	Black  Color = "#000000"
	Gray   Color = "#888888"
	Yellow Color = "#FFFF00"
	Blue   Color = "#58C4DD"
	Red    Color = "#FC6255"
	Green  Color = "#83C167"
	Teal   Color = "#5CD0B3"
)

// RGB decodes the colour. Malformed values decode as white.
func (c Color) RGB() (r, g, b uint8) {
	var v uint32
	if _, err := fmt.Sscanf(string(c), "#%06x", &v); err != nil {
		return 0xff, 0xff, 0xff
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

// Point is a position in scene units. Z is only used by 3D scenes.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z,omitempty"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y, Z: p.Z + q.Z}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Scale returns p*k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k, Z: p.Z * k}
}

// Kind is the type of a visual element.
type Kind string

const (
	KindText       Kind = "text"
	KindMath       Kind = "math"
	KindDot        Kind = "dot"
	KindLine       Kind = "line"
	KindDashedLine Kind = "dashed_line"
	KindBrace      Kind = "brace"
	KindNumberLine Kind = "number_line"
	KindAxes       Kind = "axes"
	KindCircle     Kind = "circle"
	KindPolygon    Kind = "polygon"
	KindQRCode     Kind = "qr"
)

// Element is a single drawable primitive.
//
// Points carries the geometry: the anchor of texts, dots, circles and QR
// codes, the two endpoints of lines and braces, the vertices of polygons.
// Since is the index of the first step allowed to reference the element.
type Element struct {
	ID           string    `yaml:"id"`
	Kind         Kind      `yaml:"kind"`
	Points       []Point   `yaml:"points,omitempty"`
	Radius       float64   `yaml:"radius,omitempty"`
	Text         string    `yaml:"text,omitempty"`
	Color        Color     `yaml:"color,omitempty"`
	Scale        float64   `yaml:"scale,omitempty"`
	StrokeWidth  float64   `yaml:"stroke_width,omitempty"`
	Slant        bool      `yaml:"slant,omitempty"`
	FixedInFrame bool      `yaml:"fixed_in_frame,omitempty"`
	Axis         *AxisSpec `yaml:"axis,omitempty"`
	Since        int       `yaml:"since"`
}

// Anchor returns the first point of the element, or the origin.
func (e Element) Anchor() Point {
	if len(e.Points) == 0 {
		return Point{}
	}
	return e.Points[0]
}

// Group is an ordered set of elements animated as one unit.
type Group struct {
	ID      string   `yaml:"id"`
	Members []string `yaml:"members"`
}

// Action is the transition applied by an animation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionWrite   Action = "write"
	ActionFadeIn  Action = "fade_in"
	ActionFadeOut Action = "fade_out"
	ActionGrow    Action = "grow_from_center"
)

// Animation applies one action to one or more elements or groups.
type Animation struct {
	Action  Action   `yaml:"action"`
	Targets []string `yaml:"targets"`
}

// Create draws the targets progressively.
func Create(ids ...string) Animation { return Animation{Action: ActionCreate, Targets: ids} }

// Write reveals text targets character by character.
func Write(ids ...string) Animation { return Animation{Action: ActionWrite, Targets: ids} }

// FadeIn raises the opacity of the targets from zero.
func FadeIn(ids ...string) Animation { return Animation{Action: ActionFadeIn, Targets: ids} }

// FadeOut lowers the opacity of the targets to zero and hides them.
func FadeOut(ids ...string) Animation { return Animation{Action: ActionFadeOut, Targets: ids} }

// GrowFromCenter scales the targets up from their centre.
func GrowFromCenter(ids ...string) Animation { return Animation{Action: ActionGrow, Targets: ids} }

// StepKind is the type of a step.
type StepKind string

const (
	StepPlay          StepKind = "play"
	StepWait          StepKind = "wait"
	StepOrient        StepKind = "orient"
	StepBeginRotation StepKind = "begin_rotation"
	StepStopRotation  StepKind = "stop_rotation"
)

// Orientation is a camera direction in degrees. Phi is the polar angle
// measured from the z axis, Theta the azimuth.
type Orientation struct {
	Phi   float64 `yaml:"phi"`
	Theta float64 `yaml:"theta"`
}

// FlatOrientation looks straight down the z axis; 2D scenes use it.
var FlatOrientation = Orientation{Phi: 0, Theta: -90}

// Step is one entry of the scene timeline.
type Step struct {
	Index        int          `yaml:"index"`
	Kind         StepKind     `yaml:"kind"`
	Animations   []Animation  `yaml:"animations,omitempty"`
	Duration     float64      `yaml:"duration"`
	Orientation  *Orientation `yaml:"orientation,omitempty"`
	RotationRate float64      `yaml:"rotation_rate,omitempty"`
}
