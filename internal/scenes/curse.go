package scenes

import (
	"fmt"
	"strings"

	"github.com/ivlev/knn2video/internal/geometry"
	"github.com/ivlev/knn2video/internal/scene"
)

// BallPanelConfig is one "ball of radius r in d dimensions" panel.
type BallPanelConfig struct {
	Dim     int         `yaml:"dim"`
	Center  scene.Point `yaml:"center"`
	Color   scene.Color `yaml:"color"`
	Caption string      `yaml:"caption"`
	Formula string      `yaml:"formula"`
}

// CurseConfig holds the layout of the curse of dimensionality scene.
type CurseConfig struct {
	Title        TextConfig        `yaml:"title"`
	Radius       float64           `yaml:"radius"`
	Extent       float64           `yaml:"extent"`
	Size         float64           `yaml:"size"`
	CaptionGap   float64           `yaml:"caption_gap"`
	Panels       []BallPanelConfig `yaml:"panels"`
	PanelWait    float64           `yaml:"panel_wait"`
	General      TextConfig        `yaml:"general"`
	Notes        []string          `yaml:"notes"`
	LineGap      float64           `yaml:"line_gap"`
	RatioHeading TextConfig        `yaml:"ratio_heading"`
	RatioDims    []int             `yaml:"ratio_dims"`
	FinalWait    float64           `yaml:"final_wait"`
}

// DefaultCurseConfig reproduces the published scene.
func DefaultCurseConfig() CurseConfig {
	t := title("Neighborhood size grows ~ r^d (curse of dimensionality)")
	t.Scale = 0.9
	return CurseConfig{
		Title:      t,
		Radius:     1.2,
		Extent:     1.6,
		Size:       2.8,
		CaptionGap: 0.35,
		Panels: []BallPanelConfig{
			{Dim: 1, Center: scene.Point{X: scene.Left(2.5), Y: 1.4}, Color: scene.Yellow,
				Caption: "1D 'ball' (interval)", Formula: `V_1(r)=2r`},
			{Dim: 2, Center: scene.Point{X: 0, Y: 1.4}, Color: scene.Blue,
				Caption: "2D ball (disk)", Formula: `V_2(r)=\pi r^2`},
			{Dim: 3, Center: scene.Point{X: scene.Right(2.5), Y: 1.4}, Color: scene.Red,
				Caption: "3D ball (sphere)", Formula: `V_3(r)=\tfrac{4}{3}\pi r^3`},
		},
		PanelWait: 0.8,
		General: TextConfig{
			Text:  `V_d(r)=\frac{\pi^{d/2}}{\Gamma(\frac d2+1)}\,r^d`,
			Pos:   scene.Point{Y: -2.3},
			Scale: 0.9,
		},
		Notes: []string{
			"For fixed r, the neighborhood volume scales ∝ r^d",
			"Higher d → you sweep a much larger region to gather 'neighbors'",
		},
		LineGap:      0.45,
		RatioHeading: TextConfig{Text: "Ratio: inscribed ball / cube (r=1):", Pos: scene.Point{Y: -1.3}, Scale: 0.5},
		RatioDims:    []int{1, 2, 3},
		FinalWait:    2,
	}
}

// CurseOfDimensionality draws balls of the same radius in 1, 2 and 3
// dimensions and compares them to their bounding cubes.
func CurseOfDimensionality(cfg CurseConfig) (*scene.Scene, error) {
	b := scene.NewBuilder("CurseOfDimensionality")

	b.Play(scene.FadeIn(addText(b, "title", cfg.Title)))

	for _, p := range cfg.Panels {
		if err := ballPanel(b, cfg, p); err != nil {
			return nil, err
		}
	}
	b.Wait(cfg.PanelWait)

	general := []string{addMath(b, "general_formula", cfg.General)}
	for i, note := range cfg.Notes {
		general = append(general, b.Add(scene.Element{
			ID:     fmt.Sprintf("general_note_%d", i+1),
			Kind:   scene.KindText,
			Text:   note,
			Points: []scene.Point{cfg.General.Pos.Add(scene.Point{Y: -cfg.LineGap * float64(i+1)})},
			Scale:  0.5,
			Color:  scene.White,
			Slant:  true,
		}))
	}
	b.Play(scene.Write(b.Group("general", general...)))

	heading := addText(b, "ratio_heading", cfg.RatioHeading)
	values := addMath(b, "ratio_values", TextConfig{
		Text:  RatioText(cfg.RatioDims),
		Pos:   cfg.RatioHeading.Pos.Add(scene.Point{Y: -0.4}),
		Scale: 0.6,
	})
	b.Play(scene.FadeIn(b.Group("ratios", heading, values)))
	b.Wait(cfg.FinalWait)

	return b.Build()
}

func ballPanel(b *scene.Builder, cfg CurseConfig, p BallPanelConfig) error {
	prefix := fmt.Sprintf("d%d_", p.Dim)
	rng := scene.Range{Min: -cfg.Extent, Max: cfg.Extent, Step: cfg.Extent / 4}
	captionAt := p.Center.Add(scene.Point{Y: -cfg.Size/2 - cfg.CaptionGap})

	caption := func() string {
		text := b.Add(scene.Element{
			ID:     prefix + "caption_text",
			Kind:   scene.KindText,
			Text:   p.Caption,
			Points: []scene.Point{captionAt},
			Scale:  0.5,
			Color:  scene.White,
		})
		formula := addMath(b, prefix+"caption_formula", TextConfig{
			Text:  p.Formula,
			Pos:   captionAt.Add(scene.Point{Y: -0.45}),
			Scale: 0.8,
		})
		return b.Group(prefix+"caption", text, formula)
	}

	switch p.Dim {
	case 1:
		axis := scene.AxisSpec{Center: p.Center, Ranges: []scene.Range{rng}, Lengths: []float64{cfg.Size}}
		from, to := axis.N2P(-cfg.Radius), axis.N2P(cfg.Radius)
		line := b.Add(scene.Element{ID: prefix + "line", Kind: scene.KindNumberLine, Color: scene.White, Axis: &axis})
		seg := b.Add(scene.Element{ID: prefix + "ball", Kind: scene.KindLine, Points: []scene.Point{from, to}, Color: p.Color})
		brace := b.Add(scene.Element{ID: prefix + "brace", Kind: scene.KindBrace, Points: []scene.Point{from, to}, Color: scene.White})
		lab := addMath(b, prefix+"length", TextConfig{
			Text:  `\text{length }=2r`,
			Pos:   scene.BraceLabel(from, to, 0.25),
			Scale: 0.6,
		})
		b.Play(scene.Create(line), scene.Create(seg), scene.GrowFromCenter(brace), scene.FadeIn(lab))
		b.Play(scene.FadeIn(caption()))
	case 2, 3:
		axis := scene.AxisSpec{
			Center:  p.Center,
			Ranges:  []scene.Range{rng, rng},
			Lengths: []float64{cfg.Size, cfg.Size},
		}
		ax := b.Add(scene.Element{ID: prefix + "axes", Kind: scene.KindAxes, Color: scene.White, Axis: &axis})
		// The 3D ball is drawn as its equatorial cross-section.
		circle := b.Add(scene.Element{
			ID:     prefix + "ball",
			Kind:   scene.KindCircle,
			Points: []scene.Point{axis.C2P(0, 0)},
			Radius: cfg.Radius * axis.UnitLength(0),
			Color:  p.Color,
		})
		b.Play(scene.Create(ax), scene.Create(circle), scene.FadeIn(caption()))
	default:
		return fmt.Errorf("CurseOfDimensionality: cannot draw a %d-dimensional panel", p.Dim)
	}
	return nil
}

// ratioFractions spells the ball/cube fraction for r=1 the way it is
// usually written for small dimensions.
var ratioFractions = map[int]string{
	1: `\frac{2}{2}`,
	2: `\frac{\pi}{4}`,
	3: `\frac{\tfrac{4}{3}\pi}{8}`,
}

// RatioText lists V_d(1)/(2)^d for the given dimensions, e.g.
// "d=2:\; \frac{\pi}{4}\approx0.785".
func RatioText(dims []int) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		frac, ok := ratioFractions[d]
		if !ok {
			frac = fmt.Sprintf(`\frac{V_{%d}(1)}{2^{%d}}`, d, d)
		}
		v := geometry.BallCubeRatio(d)
		rel := `\approx`
		if d == 1 {
			rel = "="
		}
		parts = append(parts, fmt.Sprintf(`d=%d:\; %s%s%s`, d, frac, rel, formatRatio(v)))
	}
	return strings.Join(parts, `,\quad `)
}

// formatRatio keeps three significant digits: 1.00, 0.785, 0.524.
func formatRatio(v float64) string {
	if v >= 0.9995 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.3f", v)
}
