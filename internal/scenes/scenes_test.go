package scenes

import (
	"strings"
	"testing"

	"github.com/ivlev/knn2video/internal/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func elementText(t *testing.T, sc *scene.Scene, id string) string {
	t.Helper()
	el, ok := sc.Element(id)
	require.True(t, ok, "element %s not found", id)
	return el.Text
}

func TestAllScenesBuildAndValidate(t *testing.T) {
	for _, name := range DefaultNames() {
		t.Run(name, func(t *testing.T) {
			sc, err := Build(name)
			require.NoError(t, err)
			require.NoError(t, scene.Validate(sc))
			assert.Equal(t, name, sc.Name)
			assert.Greater(t, sc.Duration(), 0.0)

			t.Logf("%s: %d elements, %d steps, %.1fs", name, len(sc.Elements), len(sc.Steps), sc.Duration())
		})
	}
}

func TestScenesAreDeterministic(t *testing.T) {
	for _, name := range DefaultNames() {
		first, err := Build(name)
		require.NoError(t, err)
		second, err := Build(name)
		require.NoError(t, err)

		assert.Equal(t, first.Steps, second.Steps, name)

		f1, err := first.Fingerprint()
		require.NoError(t, err)
		f2, err := second.Fingerprint()
		require.NoError(t, err)
		assert.Equal(t, f1, f2, name)
	}
}

func TestNoDanglingReferences(t *testing.T) {
	for _, name := range DefaultNames() {
		sc, err := Build(name)
		require.NoError(t, err)

		since := map[string]int{}
		for _, e := range sc.Elements {
			since[e.ID] = e.Since
		}
		for _, st := range sc.Steps {
			for _, a := range st.Animations {
				for _, target := range a.Targets {
					ids := sc.Resolve(target)
					require.NotEmpty(t, ids, "%s step %d: %s", name, st.Index, target)
					for _, id := range ids {
						assert.LessOrEqual(t, since[id], st.Index, "%s step %d uses %s", name, st.Index, id)
					}
				}
			}
		}
	}
}

func TestDistance1DLabels(t *testing.T) {
	sc, err := Build("Distance1D")
	require.NoError(t, err)

	assert.Equal(t, "|A-B|=1.5", elementText(t, sc, "distance_A_B"))
	assert.Equal(t, "|A-C|=4.0", elementText(t, sc, "distance_A_C"))
	assert.Equal(t, "A=1.0", elementText(t, sc, "label_A"))
	assert.Equal(t, "d(a,b)=|a-b|", elementText(t, sc, "formula"))

	// The A-B comparison is dismissed before A-C is drawn.
	var dismissed bool
	for _, st := range sc.Steps {
		for _, a := range st.Animations {
			if a.Action == scene.ActionFadeOut && a.Targets[0] == "segment_A_B" {
				dismissed = true
			}
		}
	}
	assert.True(t, dismissed)
}

func TestDistance2DFormula(t *testing.T) {
	sc, err := Build("Distance2D")
	require.NoError(t, err)

	assert.Equal(t, `\Delta x = |4-1|=3`, elementText(t, sc, "delta_x"))
	assert.Equal(t, `\Delta y = |6-2|=4`, elementText(t, sc, "delta_y"))
	assert.Equal(t, `d(P,Q)=\sqrt{(\Delta x)^2+(\Delta y)^2}=\sqrt{3^2+4^2}=5`, elementText(t, sc, "formula"))
	assert.Equal(t, "P(1,2)", elementText(t, sc, "label_P"))
}

func TestDistance3DFormulaAndCamera(t *testing.T) {
	sc, err := Build("Distance3D")
	require.NoError(t, err)

	formula := elementText(t, sc, "formula")
	assert.True(t, strings.HasSuffix(formula, `=\sqrt{2^2+1^2+3^2}=3.74`), formula)

	require.Equal(t, scene.StepOrient, sc.Steps[0].Kind)
	assert.Equal(t, 65.0, sc.Steps[0].Orientation.Phi)

	var begin, stop int
	for _, st := range sc.Steps {
		switch st.Kind {
		case scene.StepBeginRotation:
			begin = st.Index
		case scene.StepStopRotation:
			stop = st.Index
		}
	}
	assert.Greater(t, stop, begin)

	title, ok := sc.Element("title")
	require.True(t, ok)
	assert.True(t, title.FixedInFrame)

	_, ok = sc.Element("leg_z")
	assert.True(t, ok)
}

func TestCurseRatios(t *testing.T) {
	text := RatioText([]int{1, 2, 3})
	assert.Contains(t, text, `\frac{2}{2}=1.00`)
	assert.Contains(t, text, `\frac{\pi}{4}\approx0.785`)
	assert.Contains(t, text, `\approx0.524`)

	sc, err := Build("CurseOfDimensionality")
	require.NoError(t, err)
	assert.Equal(t, text, elementText(t, sc, "ratio_values"))
	assert.ElementsMatch(t, []string{"ratio_heading", "ratio_values"}, sc.Resolve("ratios"))
}

func TestMinkowskiShapes(t *testing.T) {
	sc, err := Build("MinkowskiBalls2D")
	require.NoError(t, err)

	circle, ok := sc.Element("ball_p2")
	require.True(t, ok)
	assert.Equal(t, scene.KindCircle, circle.Kind)

	diamond, ok := sc.Element("ball_p1")
	require.True(t, ok)
	assert.Equal(t, scene.KindPolygon, diamond.Kind)
	assert.Len(t, diamond.Points, 4)

	square, ok := sc.Element("ball_pinf")
	require.True(t, ok)
	assert.Len(t, square.Points, 4)
	assert.Equal(t, scene.Red, square.Color)

	// The same point measured with each metric
	assert.Equal(t, `p=2\;(\text{Euclidean})\quad d(O,X)=1.41`, elementText(t, sc, "label_p2"))
	assert.Equal(t, `p=1\;(\text{Manhattan})\quad d(O,X)=2`, elementText(t, sc, "label_p1"))
	assert.Equal(t, `p=\infty\;(\text{Chebyshev})\quad d(O,X)=1`, elementText(t, sc, "label_pinf"))
	_, ok = sc.Element("witness")
	assert.True(t, ok)
}

func TestMinkowskiNearbyExponents(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
norms:
  - {p: 1.001, color: "#FC6255", hold: 0.2}
  - {p: 1.002, color: "#83C167", hold: 0.2}
`), &node))

	sc, err := Build("MinkowskiBalls2D", &node)
	require.NoError(t, err)

	_, ok := sc.Element("ball_p1_001")
	assert.True(t, ok)
	_, ok = sc.Element("ball_p1_002")
	assert.True(t, ok)
}

func TestMinkowskiMetricNames(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
witness: null
norms:
  - {metric: taxicab, color: "#FFFF00", hold: 0.2}
  - {metric: max, color: "#FC6255", label: "box", hold: 0.2}
`), &node))

	sc, err := Build("MinkowskiBalls2D", &node)
	require.NoError(t, err)
	assert.Equal(t, `p=1\;(\text{Manhattan})`, elementText(t, sc, "label_p1"))
	assert.Equal(t, "box", elementText(t, sc, "label_pinf"))
	_, ok := sc.Element("witness")
	assert.False(t, ok)

	var unknown yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`norms: [{metric: cosine}]`), &unknown))
	_, err = Build("MinkowskiBalls2D", &unknown)
	assert.Error(t, err)
}

func TestNegativeDecimalsRejected(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`decimals: -1`), &node))
	_, err := Build("Distance1D", &node)
	assert.Error(t, err)

	var formula yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`formula_decimals: -1`), &formula))
	_, err = Build("Distance2D", &formula)
	assert.Error(t, err)
}

func TestCursePanelsHugFrameEdges(t *testing.T) {
	cfg := DefaultCurseConfig()
	first, last := cfg.Panels[0].Center, cfg.Panels[len(cfg.Panels)-1].Center
	assert.InDelta(t, scene.FrameWidth/2-2.5, last.X, 1e-9)
	assert.InDelta(t, -last.X, first.X, 1e-9)
}

func TestOverrides(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
points:
  - {name: A, value: 0, color: "#FFFF00"}
  - {name: B, value: 3, color: "#58C4DD"}
pairs:
  - {from: A, to: B, color: "#58C4DD", hold: 0.5}
final_wait: 0.1
`), &node))

	sc, err := Build("Distance1D", &node)
	require.NoError(t, err)
	assert.Equal(t, "|A-B|=3.0", elementText(t, sc, "distance_A_B"))

	// Keys absent from the overrides keep their defaults.
	assert.Equal(t, "Distance in 1D: |a - b|", elementText(t, sc, "title"))
	_, ok := sc.Element("dot_C")
	assert.False(t, ok)
}

func TestMinkowskiInfinityOverride(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(`
norms:
  - {p: .inf, color: "#FC6255", label: "max", hold: 0.2}
  - {p: 3, color: "#83C167", label: "p=3", hold: 0.2}
`), &node))

	sc, err := Build("MinkowskiBalls2D", &node)
	require.NoError(t, err)

	_, ok := sc.Element("ball_pinf")
	assert.True(t, ok)
	p3, ok := sc.Element("ball_p3")
	require.True(t, ok)
	assert.Len(t, p3.Points, 128)
}

func TestEndCardNeedsURL(t *testing.T) {
	_, err := Build("EndCard")
	assert.ErrorIs(t, err, ErrNoURL)

	var node yaml.Node
	require.NoError(t, node.Encode(map[string]string{"url": "https://example.com/knn"}))
	sc, err := Build("EndCard", &node)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/knn", elementText(t, sc, "caption"))
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Equal(t, "Distance1D", names[0])
	assert.Contains(t, names, "EndCard")
	assert.NotContains(t, DefaultNames(), "EndCard")

	_, err := Lookup("Nope")
	assert.Error(t, err)
}
