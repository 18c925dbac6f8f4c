package scenes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/knn2video/internal/geometry"
	"github.com/ivlev/knn2video/internal/scene"
)

// NormConfig is one p-norm ball. Metric names one of the classic metrics
// and takes precedence over P; use .inf in YAML for a bare Chebyshev ball.
// An empty Label is generated from the exponent and the metric name.
type NormConfig struct {
	Metric string      `yaml:"metric,omitempty"`
	P      float64     `yaml:"p"`
	Color  scene.Color `yaml:"color"`
	Label  string      `yaml:"label"`
	Hold   float64     `yaml:"hold"`
}

// MinkowskiConfig holds the layout of the p-norm ball scene.
type MinkowskiConfig struct {
	Title   TextConfig     `yaml:"title"`
	Axes    scene.AxisSpec `yaml:"axes"`
	Radius  float64        `yaml:"radius"`
	Samples int            `yaml:"samples"`
	Norms   []NormConfig   `yaml:"norms"`
	// Witness is a point whose distance from the origin is shown under
	// every metric; nil hides it.
	Witness    *PointConfig `yaml:"witness,omitempty"`
	LabelPos   scene.Point  `yaml:"label_pos"`
	LabelScale float64      `yaml:"label_scale"`
	Formula    TextConfig   `yaml:"formula"`
	FinalWait  float64      `yaml:"final_wait"`
}

// DefaultMinkowskiConfig draws the Euclidean, Manhattan and Chebyshev balls
// of radius 1.5 and measures the point (1,1) with each metric.
func DefaultMinkowskiConfig() MinkowskiConfig {
	return MinkowskiConfig{
		Title: title("Neighborhood shape depends on the metric (p-norm)"),
		Axes: scene.AxisSpec{
			Center:  scene.Point{X: scene.Left(0.6) + 3, Y: -0.3},
			Ranges:  []scene.Range{{Min: -2, Max: 2, Step: 1}, {Min: -2, Max: 2, Step: 1}},
			Lengths: []float64{6, 6},
			Tips:    true,
		},
		Radius:  1.5,
		Samples: 128,
		Norms: []NormConfig{
			{Metric: "euclidean", Color: scene.Blue, Hold: 0.6},
			{Metric: "manhattan", Color: scene.Yellow, Hold: 0.6},
			{Metric: "chebyshev", Color: scene.Red, Hold: 0.6},
		},
		Witness: &PointConfig{
			Name:        "X",
			Coords:      []float64{1, 1},
			Color:       scene.White,
			LabelOffset: &scene.Point{X: 0.3, Y: 0.3},
		},
		LabelPos:   scene.Point{X: scene.Left(0.6) + 3, Y: -3.65},
		LabelScale: 0.6,
		Formula: TextConfig{
			Text:  `\|x\|_p=(\sum_i |x_i|^p)^{1/p}`,
			Pos:   scene.Point{X: 3.4, Y: 0.5},
			Scale: 0.8,
		},
		FinalWait: 1.5,
	}
}

// MinkowskiBalls2D overlays the unit balls of several p-norms on one set
// of axes, swapping the caption as each ball is drawn.
func MinkowskiBalls2D(cfg MinkowskiConfig) (*scene.Scene, error) {
	if cfg.Axes.Dims() != 2 {
		return nil, fmt.Errorf("MinkowskiBalls2D: need 2 axes, got %d", cfg.Axes.Dims())
	}
	b := scene.NewBuilder("MinkowskiBalls2D")

	b.Play(scene.FadeIn(addText(b, "title", cfg.Title)))

	axes := cfg.Axes
	b.Play(scene.Create(b.Add(scene.Element{ID: "axes", Kind: scene.KindAxes, Color: scene.White, Axis: &axes})))

	var witness []float64
	if w := cfg.Witness; w != nil {
		if len(w.Coords) != 2 {
			return nil, fmt.Errorf("MinkowskiBalls2D: witness needs 2 coordinates: %w", geometry.ErrDimensionMismatch)
		}
		witness = w.Coords
		at := axes.C2P(w.Coords...)
		dot := b.Add(scene.Element{ID: "witness", Kind: scene.KindDot, Points: []scene.Point{at}, Color: w.Color})
		anims := []scene.Animation{scene.FadeIn(dot)}
		if w.LabelOffset != nil {
			anims = append(anims, scene.FadeIn(addText(b, "witness_label", TextConfig{
				Text:  w.Name,
				Pos:   at.Add(*w.LabelOffset),
				Scale: cfg.LabelScale,
			})))
		}
		b.Play(anims...)
	}

	prevLabel := ""
	for _, n := range cfg.Norms {
		metric, err := resolveNorm(n)
		if err != nil {
			return nil, err
		}
		suffix := normSuffix(metric.p)

		shape := scene.Element{ID: "ball_" + suffix, Color: n.Color}
		if metric.p == 2 {
			shape.Kind = scene.KindCircle
			shape.Points = []scene.Point{axes.C2P(0, 0)}
			shape.Radius = cfg.Radius * axes.UnitLength(0)
		} else {
			shape.Kind = scene.KindPolygon
			for _, v := range geometry.BallOutline(metric.p, cfg.Radius, cfg.Samples) {
				shape.Points = append(shape.Points, axes.C2P(v[0], v[1]))
			}
		}
		ball := b.Add(shape)

		text := metric.label
		if witness != nil {
			d, err := metric.distance([]float64{0, 0}, witness)
			if err != nil {
				return nil, err
			}
			text += fmt.Sprintf(`\quad d(O,%s)=%s`, cfg.Witness.Name, formatValue(d, 2))
		}
		label := addMath(b, "label_"+suffix, TextConfig{Text: text, Pos: cfg.LabelPos, Scale: cfg.LabelScale})

		anims := []scene.Animation{scene.Create(ball), scene.FadeIn(label)}
		if prevLabel != "" {
			anims = append(anims, scene.FadeOut(prevLabel))
		}
		b.Play(anims...)
		b.Wait(n.Hold)
		prevLabel = label
	}

	if cfg.Formula.Text != "" {
		b.Play(scene.Write(addMath(b, "formula", cfg.Formula)))
	}
	b.Wait(cfg.FinalWait)

	return b.Build()
}

// norm is a NormConfig resolved to an exponent, a caption and a distance
type norm struct {
	p        float64
	label    string
	distance func(p, q []float64) (float64, error)
}

func resolveNorm(n NormConfig) (norm, error) {
	if n.Metric != "" {
		m, err := geometry.ParseMetric(n.Metric)
		if err != nil {
			return norm{}, fmt.Errorf("MinkowskiBalls2D: %w", err)
		}
		res := norm{p: m.P(), label: n.Label, distance: m.Distance}
		if res.label == "" {
			name := m.String()
			res.label = fmt.Sprintf(`p=%s\;(\text{%s})`, exponentTex(res.p), strings.ToUpper(name[:1])+name[1:])
		}
		return res, nil
	}

	if math.IsNaN(n.P) || n.P < 1 {
		return norm{}, fmt.Errorf("MinkowskiBalls2D: p=%v is not a norm", n.P)
	}
	res := norm{p: n.P, label: n.Label, distance: func(a, b []float64) (float64, error) {
		return geometry.Minkowski(a, b, n.P)
	}}
	if res.label == "" {
		res.label = "p=" + exponentTex(n.P)
	}
	return res, nil
}

func exponentTex(p float64) string {
	if math.IsInf(p, 1) {
		return `\infty`
	}
	return formatValue(p, 2)
}

// normSuffix turns an exponent into an id fragment: 2 -> "p2", 1.5 -> "p1_5",
// ∞ -> "pinf". The exponent is written exactly so distinct norms never clash.
func normSuffix(p float64) string {
	if math.IsInf(p, 1) {
		return "pinf"
	}
	return "p" + strings.ReplaceAll(strconv.FormatFloat(p, 'f', -1, 64), ".", "_")
}
