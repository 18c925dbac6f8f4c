package scenes

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ivlev/knn2video/internal/scene"
)

// TextConfig places a caption.
type TextConfig struct {
	Text  string      `yaml:"text"`
	Pos   scene.Point `yaml:"pos"`
	Scale float64     `yaml:"scale"`
}

// titleY keeps a one-line title half a unit clear of the top frame edge.
var titleY = scene.Top(0.5) - 0.3

// formulaY keeps a one-line formula half a unit clear of the bottom frame edge.
var formulaY = scene.Bottom(0.5) + 0.3

func title(text string) TextConfig {
	return TextConfig{Text: text, Pos: scene.Point{Y: titleY}, Scale: 1}
}

func addText(b *scene.Builder, id string, c TextConfig) string {
	return b.Add(scene.Element{
		ID:     id,
		Kind:   scene.KindText,
		Text:   c.Text,
		Points: []scene.Point{c.Pos},
		Scale:  c.Scale,
		Color:  scene.White,
	})
}

func addMath(b *scene.Builder, id string, c TextConfig) string {
	return b.Add(scene.Element{
		ID:     id,
		Kind:   scene.KindMath,
		Text:   c.Text,
		Points: []scene.Point{c.Pos},
		Scale:  c.Scale,
		Color:  scene.White,
	})
}

// formatValue prints integers without decimals and everything else with
// the given precision: 5 -> "5", √14 -> "3.74".
func formatValue(v float64, decimals int) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// coordLabel formats a point as "P(1,2)".
func coordLabel(name string, coords []float64) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = formatValue(c, 2)
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ","))
}

// axisNames are the coordinate names used in formulas.
var axisNames = []string{"x", "y", "z"}

func axisName(i int) string {
	if i < len(axisNames) {
		return axisNames[i]
	}
	return fmt.Sprintf("x_{%d}", i+1)
}
