package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/scene"
	"github.com/ivlev/knn2video/internal/scenes"
	"gopkg.in/yaml.v3"
)

func TestInterpolateKeyframes(t *testing.T) {
	keyframes := []director.Keyframe{
		{Time: 0.0, Phi: 0, Theta: -90, Zoom: 1.0, Easing: director.EasingHold},
		{Time: 1.0, Phi: 65, Theta: -45, Zoom: 1.0, Easing: director.EasingLinear},
		{Time: 3.0, Phi: 65, Theta: -45 + 2*0.15*180/math.Pi, Zoom: 1.0, Easing: director.EasingHold},
	}

	tests := []struct {
		time          float64
		expectedPhi   float64
		expectedTheta float64
	}{
		{0.0, 0, -90},  // First keyframe
		{0.5, 0, -90},  // Hold keeps the first orientation
		{1.0, 65, -45}, // Orient jumps
		{2.0, 65, -45 + 0.15*180/math.Pi},
		{3.0, 65, -45 + 2*0.15*180/math.Pi},
		{5.0, 65, -45 + 2*0.15*180/math.Pi}, // After last keyframe
	}

	for _, tt := range tests {
		state := InterpolateKeyframes(keyframes, tt.time)
		if math.Abs(state.Phi-tt.expectedPhi) > 1e-9 || math.Abs(state.Theta-tt.expectedTheta) > 1e-9 {
			t.Errorf("At time %.1f: expected (%.2f, %.2f), got (%.2f, %.2f)",
				tt.time, tt.expectedPhi, tt.expectedTheta, state.Phi, state.Theta)
		}
	}

	move := []director.Keyframe{
		{Time: 0, Phi: 0, Theta: -90, Easing: director.EasingSmooth},
		{Time: 2, Phi: 60, Theta: -90, Easing: director.EasingHold},
	}
	if got := InterpolateKeyframes(move, 1); math.Abs(got.Phi-30) > 1e-9 {
		t.Errorf("Expected phi 30 halfway through a smooth move, got %.3f", got.Phi)
	}
	if got := InterpolateKeyframes(move, 0.5); got.Phi >= 15 {
		t.Errorf("Expected a smooth move to start slower than linear, got %.3f", got.Phi)
	}

	if got := InterpolateKeyframes(nil, 1); got != FlatCamera {
		t.Errorf("Expected flat camera without keyframes, got %+v", got)
	}
}

func TestStatesAt(t *testing.T) {
	script := &director.Script{
		Name:     "States",
		Duration: 4,
		Cues: []director.Cue{
			{Step: 0, Kind: scene.StepPlay, Time: 0, Duration: 1, Actions: []director.CueAction{
				{Action: scene.ActionCreate, Elements: []string{"line"}},
			}},
			{Step: 1, Kind: scene.StepWait, Time: 1, Duration: 1},
			{Step: 2, Kind: scene.StepPlay, Time: 2, Duration: 1, Actions: []director.CueAction{
				{Action: scene.ActionFadeOut, Elements: []string{"line"}},
				{Action: scene.ActionFadeIn, Elements: []string{"label"}},
			}},
		},
	}

	states := StatesAt(script, 0.5)
	if s := states["line"]; !s.Visible || math.Abs(s.Progress-0.5) > 1e-9 {
		t.Errorf("Expected line half drawn at 0.5s, got %+v", s)
	}
	if _, ok := states["label"]; ok {
		t.Error("Label should not exist before its cue")
	}

	states = StatesAt(script, 1.5)
	if s := states["line"]; s.Progress != 1 || s.Opacity != 1 {
		t.Errorf("Expected line fully drawn at 1.5s, got %+v", s)
	}

	states = StatesAt(script, 3.5)
	if states["line"].Visible {
		t.Error("Line should be hidden after fade out")
	}
	if s := states["label"]; !s.Visible || s.Opacity != 1 {
		t.Errorf("Expected label fully visible, got %+v", s)
	}
}

func TestTexToUnicode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`d(P,Q)=\sqrt{(\Delta x)^2+(\Delta y)^2}=\sqrt{3^2+4^2}=5`, "d(P,Q)=√((Δx)²+(Δy)²)=√(3²+4²)=5"},
		{`\Delta x = |4-1|=3`, "Δx=|4-1|=3"},
		{`V_3(r)=\tfrac{4}{3}\pi r^3`, "V3(r)=4/3πr³"},
		{`d=2:\; \frac{\pi}{4}\approx0.785`, "d=2: π/4≈0.785"},
		{`p=\infty\;(\text{Chebyshev})`, "p=∞ (Chebyshev)"},
		{`\|x\|_p`, "‖x‖p"},
		{`r^d`, "r^d"},
	}

	for _, tt := range tests {
		if got := TexToUnicode(tt.in); got != tt.want {
			t.Errorf("TexToUnicode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProjection(t *testing.T) {
	flat := newProjector(1920, 1080, FlatCamera)
	p := flat.project(scene.Point{X: 1, Y: 2})
	if math.Abs(p.X-1095) > 1e-6 || math.Abs(p.Y-270) > 1e-6 {
		t.Errorf("Flat camera should be the identity, got %+v", p)
	}

	// Looking along -y with phi=90: z points up on screen
	side := newProjector(1920, 1080, CameraState{Phi: 90, Theta: -90, Zoom: 1})
	p = side.project(scene.Point{Z: 1})
	if math.Abs(p.X-960) > 1e-6 || math.Abs(p.Y-405) > 1e-6 {
		t.Errorf("Expected z up, got %+v", p)
	}

	fixed := side.fixed(scene.Point{Y: 1})
	if math.Abs(fixed.Y-405) > 1e-6 {
		t.Errorf("Fixed points must ignore the camera, got %+v", fixed)
	}
}

func TestPartial(t *testing.T) {
	line := []fpt{{0, 0}, {10, 0}, {10, 10}}
	half := partial(line, 0.5, false)
	end := half[len(half)-1]
	if math.Abs(end.X-10) > 1e-9 || math.Abs(end.Y) > 1e-9 {
		t.Errorf("Expected half path to end at the corner, got %+v", end)
	}
	if got := partial(line, 0, false); got != nil {
		t.Errorf("Expected empty path, got %+v", got)
	}
	if got := partial(line, 1, true); len(got) != 4 {
		t.Errorf("Closed full path should repeat the start, got %d points", len(got))
	}
}

func renderLastFrame(t *testing.T, sc *scene.Scene, w, h int) *image.RGBA {
	t.Helper()
	script, err := director.NewDirector(30).Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}
	r, err := New(sc, script, Options{Width: w, Height: h})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	img, err := r.Frame(script.Duration)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	return img
}

func litPixels(img *image.RGBA, rect image.Rectangle) int {
	n := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			i := img.PixOffset(x, y)
			if img.Pix[i] > 32 || img.Pix[i+1] > 32 || img.Pix[i+2] > 32 {
				n++
			}
		}
	}
	return n
}

func TestRenderScenes(t *testing.T) {
	for _, name := range scenes.DefaultNames() {
		t.Run(name, func(t *testing.T) {
			sc, err := scenes.Build(name)
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			img := renderLastFrame(t, sc, 320, 180)
			lit := litPixels(img, img.Bounds())
			if lit == 0 {
				t.Error("Expected a non-empty last frame")
			}
			t.Logf("%s: %d lit pixels", name, lit)
		})
	}
}

func TestRenderEndCardQRCode(t *testing.T) {
	var node yaml.Node
	if err := node.Encode(map[string]string{"url": "https://example.com/knn"}); err != nil {
		t.Fatal(err)
	}
	sc, err := scenes.Build("EndCard", &node)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	img := renderLastFrame(t, sc, 640, 360)
	centre := image.Rect(300, 150, 340, 190)
	if lit := litPixels(img, centre); lit == 0 {
		t.Error("Expected the QR code around the centre of the frame")
	}
}

func TestSequence(t *testing.T) {
	sc, err := scenes.Build("Distance1D")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	script, err := director.NewDirector(10).Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}
	r, err := New(sc, script, Options{Width: 160, Height: 90})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	seq := r.Sequence(10)
	want := int(math.Round(script.Duration * 10))
	if seq.Frames() != want {
		t.Errorf("Expected %d frames, got %d", want, seq.Frames())
	}

	img, err := seq.Frame(seq.Frames() - 1)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if img.Bounds() != seq.Bounds() {
		t.Errorf("Unexpected frame bounds %v", img.Bounds())
	}
	seq.Release(img)
}

func TestNewRejectsMismatchedScript(t *testing.T) {
	sc, err := scenes.Build("Distance1D")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(sc, &director.Script{Name: "Other"}, Options{Width: 16, Height: 9}); err == nil {
		t.Error("Expected an error for a foreign script")
	}
	if _, err := New(sc, &director.Script{Name: sc.Name}, Options{}); err == nil {
		t.Error("Expected an error for an empty frame size")
	}
}

func TestCanvasSegmentsPaintCrossingOnce(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	c := newCanvas(img)
	c.clear(color.Black)

	half := color.NRGBA{R: 255, A: 128}
	c.segments([][2]fpt{
		{{10, 50}, {90, 50}},
		{{50, 10}, {50, 90}},
	}, 6, half)

	cross := img.RGBAAt(50, 50)
	arm := img.RGBAAt(20, 50)
	if cross.R < 120 || cross.R > 136 {
		t.Errorf("Expected the crossing painted once, got R=%d", cross.R)
	}
	if cross.R != arm.R {
		t.Errorf("Expected crossing and arm to match: %d vs %d", cross.R, arm.R)
	}
}

func TestCanvasDashedLeavesGaps(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 40))
	c := newCanvas(img)
	c.clear(color.Black)
	c.dashed(fpt{0, 20}, fpt{100, 20}, 4, 10, 10, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	if img.RGBAAt(5, 20).R < 200 {
		t.Error("Expected a dash at x=5")
	}
	if img.RGBAAt(15, 20).R > 32 {
		t.Error("Expected a gap at x=15")
	}
	if img.RGBAAt(25, 20).R < 200 {
		t.Error("Expected the second dash at x=25")
	}
}
