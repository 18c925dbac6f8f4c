package scenes

import (
	"fmt"

	"github.com/ivlev/knn2video/internal/geometry"
	"github.com/ivlev/knn2video/internal/scene"
)

// ValuePoint is a named point on a number line.
type ValuePoint struct {
	Name  string      `yaml:"name"`
	Value float64     `yaml:"value"`
	Color scene.Color `yaml:"color"`
}

// PairConfig selects two points whose distance is shown with a brace.
type PairConfig struct {
	From  string      `yaml:"from"`
	To    string      `yaml:"to"`
	Color scene.Color `yaml:"color"`
	Hold  float64     `yaml:"hold"`
	// Dismiss fades the segment, brace and label out after Hold.
	Dismiss bool `yaml:"dismiss"`
}

// Distance1DConfig holds the layout of the number line scene.
type Distance1DConfig struct {
	Title     TextConfig     `yaml:"title"`
	Line      scene.AxisSpec `yaml:"line"`
	Points    []ValuePoint   `yaml:"points"`
	LabelBuff float64        `yaml:"label_buff"`
	Pairs     []PairConfig   `yaml:"pairs"`
	BraceBuff float64        `yaml:"brace_buff"`
	Decimals  int            `yaml:"decimals"`
	Formula   TextConfig     `yaml:"formula"`
	FinalWait float64        `yaml:"final_wait"`
}

// DefaultDistance1DConfig reproduces the published scene.
func DefaultDistance1DConfig() Distance1DConfig {
	return Distance1DConfig{
		Title: title("Distance in 1D: |a - b|"),
		Line: scene.AxisSpec{
			Center:  scene.Point{Y: -0.5},
			Ranges:  []scene.Range{{Min: 0, Max: 6, Step: 1}},
			Lengths: []float64{10},
			Tips:    true,
			Numbers: true,
		},
		Points: []ValuePoint{
			{Name: "A", Value: 1.0, Color: scene.Yellow},
			{Name: "B", Value: 2.5, Color: scene.Blue},
			{Name: "C", Value: 5.0, Color: scene.Red},
		},
		LabelBuff: 0.45,
		Pairs: []PairConfig{
			{From: "A", To: "B", Color: scene.Blue, Hold: 0.7, Dismiss: true},
			{From: "A", To: "C", Color: scene.Red, Hold: 1.0},
		},
		BraceBuff: 0.3,
		Decimals:  1,
		Formula:   TextConfig{Text: "d(a,b)=|a-b|", Pos: scene.Point{Y: formulaY}, Scale: 1},
		FinalWait: 1.5,
	}
}

// Distance1D shows absolute differences between points on a number line.
func Distance1D(cfg Distance1DConfig) (*scene.Scene, error) {
	if cfg.Decimals < 0 {
		return nil, fmt.Errorf("Distance1D: decimals must not be negative, got %d", cfg.Decimals)
	}
	b := scene.NewBuilder("Distance1D")

	b.Play(scene.FadeIn(addText(b, "title", cfg.Title)))

	line := cfg.Line
	b.Play(scene.Create(b.Add(scene.Element{
		ID:    "number_line",
		Kind:  scene.KindNumberLine,
		Color: scene.White,
		Axis:  &line,
	})))

	values := make(map[string]float64, len(cfg.Points))
	var appear []scene.Animation
	for _, p := range cfg.Points {
		values[p.Name] = p.Value
		pos := line.N2P(p.Value)
		dot := b.Add(scene.Element{
			ID:     "dot_" + p.Name,
			Kind:   scene.KindDot,
			Points: []scene.Point{pos},
			Color:  p.Color,
		})
		lbl := addMath(b, "label_"+p.Name, TextConfig{
			Text:  fmt.Sprintf("%s=%.*f", p.Name, cfg.Decimals, p.Value),
			Pos:   pos.Add(scene.Point{Y: cfg.LabelBuff}),
			Scale: 1,
		})
		appear = append(appear, scene.FadeIn(dot, lbl))
	}
	if len(appear) > 0 {
		b.Play(appear...)
	}

	for _, pair := range cfg.Pairs {
		a, okA := values[pair.From]
		c, okC := values[pair.To]
		if !okA || !okC {
			return nil, fmt.Errorf("Distance1D: pair %s-%s references an unknown point", pair.From, pair.To)
		}
		from, to := line.N2P(a), line.N2P(c)
		suffix := pair.From + "_" + pair.To

		seg := b.Add(scene.Element{
			ID:     "segment_" + suffix,
			Kind:   scene.KindLine,
			Points: []scene.Point{from, to},
			Color:  pair.Color,
		})
		brace := b.Add(scene.Element{
			ID:     "brace_" + suffix,
			Kind:   scene.KindBrace,
			Points: []scene.Point{from, to},
			Color:  scene.White,
		})
		lab := addMath(b, "distance_"+suffix, TextConfig{
			Text:  fmt.Sprintf("|%s-%s|=%.*f", pair.From, pair.To, cfg.Decimals, geometry.Abs1D(a, c)),
			Pos:   scene.BraceLabel(from, to, cfg.BraceBuff),
			Scale: 1,
		})

		b.Play(scene.Create(seg), scene.GrowFromCenter(brace), scene.FadeIn(lab))
		b.Wait(pair.Hold)
		if pair.Dismiss {
			b.Play(scene.FadeOut(seg), scene.FadeOut(brace), scene.FadeOut(lab))
		}
	}

	b.Play(scene.Write(addMath(b, "formula", cfg.Formula)))
	b.Wait(cfg.FinalWait)

	return b.Build()
}
