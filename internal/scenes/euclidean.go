package scenes

import (
	"fmt"
	"strings"

	"github.com/ivlev/knn2video/internal/geometry"
	"github.com/ivlev/knn2video/internal/scene"
)

// PointConfig is a named point given in axis coordinates.
type PointConfig struct {
	Name   string      `yaml:"name"`
	Coords []float64   `yaml:"coords"`
	Color  scene.Color `yaml:"color"`
	// LabelOffset places the coordinate label relative to the dot; nil
	// leaves the point unlabelled.
	LabelOffset *scene.Point `yaml:"label_offset,omitempty"`
}

// CameraConfig enables the 3D camera: an initial orientation followed by a
// slow ambient rotation once everything is on screen.
type CameraConfig struct {
	Orientation scene.Orientation `yaml:"orientation"`
	// MoveTime turns the camera from the flat view instead of cutting to it
	MoveTime     float64 `yaml:"move_time"`
	RotationRate float64 `yaml:"rotation_rate"`
	RotateFor    float64 `yaml:"rotate_for"`
	SettleWait   float64 `yaml:"settle_wait"`
}

// EuclideanConfig is the shared template behind Distance2D and Distance3D:
// axes, two points, the axis-aligned legs between them, the straight
// diagonal and the Pythagorean formula.
type EuclideanConfig struct {
	Name            string         `yaml:"name"`
	Title           TextConfig     `yaml:"title"`
	Axes            scene.AxisSpec `yaml:"axes"`
	AxisLabels      []string       `yaml:"axis_labels"`
	AxisLabelBuff   float64        `yaml:"axis_label_buff"`
	P               PointConfig    `yaml:"p"`
	Q               PointConfig    `yaml:"q"`
	DotRadius       float64        `yaml:"dot_radius"`
	LegColor        scene.Color    `yaml:"leg_color"`
	DiagonalColor   scene.Color    `yaml:"diagonal_color"`
	Braces          bool           `yaml:"braces"`
	BraceBuff       float64        `yaml:"brace_buff"`
	Formula         TextConfig     `yaml:"formula"`
	FormulaDecimals int            `yaml:"formula_decimals"`
	FinalWait       float64        `yaml:"final_wait"`
	Camera          *CameraConfig  `yaml:"camera,omitempty"`
}

// DefaultDistance2DConfig reproduces the 2D scene: P(1,2), Q(4,6).
func DefaultDistance2DConfig() EuclideanConfig {
	return EuclideanConfig{
		Name:  "Distance2D",
		Title: title("Distance in 2D: Euclidean"),
		Axes: scene.AxisSpec{
			Center:  scene.Point{X: scene.Left(0.5) + 3},
			Ranges:  []scene.Range{{Min: 0, Max: 6, Step: 1}, {Min: 0, Max: 6, Step: 1}},
			Lengths: []float64{6, 6},
			Tips:    true,
		},
		AxisLabels:    []string{"x", "y"},
		AxisLabelBuff: 0.4,
		P: PointConfig{
			Name: "P", Coords: []float64{1, 2}, Color: scene.Yellow,
			LabelOffset: &scene.Point{X: -0.45, Y: -0.4},
		},
		Q: PointConfig{
			Name: "Q", Coords: []float64{4, 6}, Color: scene.Red,
			LabelOffset: &scene.Point{X: 0.45, Y: 0.4},
		},
		DotRadius:       0.08,
		LegColor:        scene.Blue,
		DiagonalColor:   scene.Green,
		Braces:          true,
		BraceBuff:       0.3,
		Formula:         TextConfig{Pos: scene.Point{X: 3.2, Y: 0.5}, Scale: 0.8},
		FormulaDecimals: 2,
		FinalWait:       1.5,
	}
}

// DefaultDistance3DConfig reproduces the 3D scene: P(1,1,1), Q(3,2,4).
func DefaultDistance3DConfig() EuclideanConfig {
	return EuclideanConfig{
		Name:  "Distance3D",
		Title: title("Distance in 3D: Euclidean"),
		Axes: scene.AxisSpec{
			Ranges: []scene.Range{
				{Min: 0, Max: 5, Step: 1},
				{Min: 0, Max: 5, Step: 1},
				{Min: 0, Max: 5, Step: 1},
			},
			Lengths: []float64{10.5, 10.5, 6.5},
			Tips:    true,
		},
		P:               PointConfig{Name: "P", Coords: []float64{1, 1, 1}, Color: scene.Yellow},
		Q:               PointConfig{Name: "Q", Coords: []float64{3, 2, 4}, Color: scene.Red},
		DotRadius:       0.06,
		LegColor:        scene.Blue,
		DiagonalColor:   scene.Green,
		Formula:         TextConfig{Pos: scene.Point{X: 3.4, Y: 2.4}, Scale: 0.7},
		FormulaDecimals: 2,
		Camera: &CameraConfig{
			Orientation:  scene.Orientation{Phi: 65, Theta: -45},
			RotationRate: 0.15,
			RotateFor:    3,
			SettleWait:   0.5,
		},
	}
}

// Euclidean builds a distance scene from the shared template.
func Euclidean(cfg EuclideanConfig) (*scene.Scene, error) {
	if cfg.FormulaDecimals < 0 {
		return nil, fmt.Errorf("%s: formula decimals must not be negative, got %d", cfg.Name, cfg.FormulaDecimals)
	}
	dims := cfg.Axes.Dims()
	if len(cfg.P.Coords) != dims || len(cfg.Q.Coords) != dims {
		return nil, fmt.Errorf("%s: points need %d coordinates: %w", cfg.Name, dims, geometry.ErrDimensionMismatch)
	}
	deltas, err := geometry.Deltas(cfg.P.Coords, cfg.Q.Coords)
	if err != nil {
		return nil, err
	}
	dist, err := geometry.Euclidean(cfg.P.Coords, cfg.Q.Coords)
	if err != nil {
		return nil, err
	}
	path, err := geometry.AxisPath(cfg.P.Coords, cfg.Q.Coords)
	if err != nil {
		return nil, err
	}

	fixed := cfg.Camera != nil
	b := scene.NewBuilder(cfg.Name)

	if cfg.Camera != nil {
		if cfg.Camera.MoveTime > 0 {
			b.MoveCamera(cfg.Camera.Orientation, cfg.Camera.MoveTime)
		} else {
			b.Orient(cfg.Camera.Orientation)
		}
	}

	titleID := b.Add(scene.Element{
		ID:           "title",
		Kind:         scene.KindText,
		Text:         cfg.Title.Text,
		Points:       []scene.Point{cfg.Title.Pos},
		Scale:        cfg.Title.Scale,
		Color:        scene.White,
		FixedInFrame: fixed,
	})
	b.Play(scene.FadeIn(titleID))

	axes := cfg.Axes
	axesID := b.Add(scene.Element{ID: "axes", Kind: scene.KindAxes, Color: scene.White, Axis: &axes})
	axisAnims := []scene.Animation{scene.Create(axesID)}
	if len(cfg.AxisLabels) > 0 {
		var ids []string
		for i, name := range cfg.AxisLabels {
			if i >= dims {
				break
			}
			end := make([]float64, dims)
			copy(end, axes.Crossing())
			end[i] = axes.Ranges[i].Max
			offset := scene.Point{}
			switch i {
			case 0:
				offset.X = cfg.AxisLabelBuff
			case 1:
				offset.Y = cfg.AxisLabelBuff
			default:
				offset.Z = cfg.AxisLabelBuff
			}
			ids = append(ids, addMath(b, "axis_label_"+name, TextConfig{
				Text:  name,
				Pos:   axes.C2P(end...).Add(offset),
				Scale: 1,
			}))
		}
		axisAnims = append(axisAnims, scene.FadeIn(b.Group("axis_labels", ids...)))
	}
	b.Play(axisAnims...)

	var pointIDs, labelIDs []string
	for _, p := range []PointConfig{cfg.P, cfg.Q} {
		pos := axes.C2P(p.Coords...)
		pointIDs = append(pointIDs, b.Add(scene.Element{
			ID:     "dot_" + p.Name,
			Kind:   scene.KindDot,
			Points: []scene.Point{pos},
			Radius: cfg.DotRadius,
			Color:  p.Color,
		}))
		if p.LabelOffset != nil {
			labelIDs = append(labelIDs, addMath(b, "label_"+p.Name, TextConfig{
				Text:  coordLabel(p.Name, p.Coords),
				Pos:   pos.Add(*p.LabelOffset),
				Scale: 1,
			}))
		}
	}
	if len(labelIDs) > 0 {
		b.Play(scene.FadeIn(append(append([]string(nil), pointIDs...), labelIDs...)...))
	} else {
		anims := make([]scene.Animation, len(pointIDs))
		for i, id := range pointIDs {
			anims[i] = scene.FadeIn(id)
		}
		b.Play(anims...)
	}

	corners := make([]scene.Point, len(path))
	for i, c := range path {
		corners[i] = axes.C2P(c...)
	}
	legs := make([]scene.Animation, 0, dims)
	legIDs := make([]string, 0, dims)
	for i := 0; i < dims; i++ {
		id := b.Add(scene.Element{
			ID:     "leg_" + axisName(i),
			Kind:   scene.KindDashedLine,
			Points: []scene.Point{corners[i], corners[i+1]},
			Color:  cfg.LegColor,
		})
		legIDs = append(legIDs, id)
		legs = append(legs, scene.Create(id))
	}
	b.Play(legs...)

	b.Play(scene.Create(b.Add(scene.Element{
		ID:     "diagonal",
		Kind:   scene.KindLine,
		Points: []scene.Point{corners[0], corners[dims]},
		Color:  cfg.DiagonalColor,
	})))

	if cfg.Braces {
		for i := 0; i < dims; i++ {
			name := axisName(i)
			brace := b.Add(scene.Element{
				ID:     "brace_" + name,
				Kind:   scene.KindBrace,
				Points: []scene.Point{corners[i], corners[i+1]},
				Color:  scene.White,
			})
			label := addMath(b, "delta_"+name, TextConfig{
				Text: fmt.Sprintf(`\Delta %s = |%s-%s|=%s`, name,
					formatValue(cfg.Q.Coords[i], 2), formatValue(cfg.P.Coords[i], 2), formatValue(deltas[i], 2)),
				Pos:   scene.BraceLabel(corners[i], corners[i+1], cfg.BraceBuff),
				Scale: 0.8,
			})
			b.Play(scene.GrowFromCenter(brace), scene.FadeIn(label))
		}
	}

	formula := cfg.Formula
	if formula.Text == "" {
		formula.Text = pythagoras(cfg.P.Name, cfg.Q.Name, deltas, dist, cfg.FormulaDecimals)
	}
	b.Play(scene.Write(b.Add(scene.Element{
		ID:           "formula",
		Kind:         scene.KindMath,
		Text:         formula.Text,
		Points:       []scene.Point{formula.Pos},
		Scale:        formula.Scale,
		Color:        scene.White,
		FixedInFrame: fixed,
	})))

	if cfg.Camera != nil {
		b.BeginRotation(cfg.Camera.RotationRate)
		b.Wait(cfg.Camera.RotateFor)
		b.StopRotation()
		b.Wait(cfg.Camera.SettleWait)
	}
	if cfg.FinalWait > 0 {
		b.Wait(cfg.FinalWait)
	}

	return b.Build()
}

// pythagoras writes d(P,Q)=\sqrt{(\Delta x)^2+...}=\sqrt{3^2+...}=5.
func pythagoras(p, q string, deltas []float64, dist float64, decimals int) string {
	symbolic := make([]string, len(deltas))
	numeric := make([]string, len(deltas))
	for i, d := range deltas {
		symbolic[i] = fmt.Sprintf(`(\Delta %s)^2`, axisName(i))
		numeric[i] = formatValue(d, decimals) + "^2"
	}
	return fmt.Sprintf(`d(%s,%s)=\sqrt{%s}=\sqrt{%s}=%s`,
		p, q, strings.Join(symbolic, "+"), strings.Join(numeric, "+"), formatValue(dist, decimals))
}
