package director

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ivlev/knn2video/internal/scene"
	"github.com/ivlev/knn2video/internal/scenes"
)

func TestDirector(t *testing.T) {
	director := NewDirector(30)

	sc, err := scenes.Build("Distance1D")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	script, err := director.Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}

	if len(script.Cues) != len(sc.Steps) {
		t.Fatalf("Expected %d cues, got %d", len(sc.Steps), len(script.Cues))
	}

	// Cues are back to back
	for i := 1; i < len(script.Cues); i++ {
		prev, cur := script.Cues[i-1], script.Cues[i]
		if math.Abs(prev.End()-cur.Time) > 1e-9 {
			t.Errorf("Cue %d starts at %.3f, previous ends at %.3f", i, cur.Time, prev.End())
		}
	}

	if math.Abs(script.Duration-sc.Duration()) > 1.0/30 {
		t.Errorf("Expected duration ~%.3f, got %.3f", sc.Duration(), script.Duration)
	}

	// 2D scenes keep the flat camera
	if len(script.Keyframes) != 1 || script.Keyframes[0].Phi != 0 {
		t.Errorf("Expected a single flat keyframe, got %+v", script.Keyframes)
	}

	t.Logf("Directed %s: %d cues, %.2fs", script.Name, len(script.Cues), script.Duration)
}

func TestDirectorExpandsGroups(t *testing.T) {
	b := scene.NewBuilder("Groups")
	a := b.Add(scene.Element{ID: "a", Kind: scene.KindDot})
	c := b.Add(scene.Element{ID: "c", Kind: scene.KindDot})
	b.Group("g", a, c)
	b.Play(scene.FadeIn("g"))
	sc, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	script, err := NewDirector(30).Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}

	got := script.Cues[0].Actions[0].Elements
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Expected [a c], got %v", got)
	}
}

func TestDirectorCameraKeyframes(t *testing.T) {
	sc, err := scenes.Build("Distance3D")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	script, err := NewDirector(30).Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}

	var start, stop *Keyframe
	for i := range script.Keyframes {
		kf := &script.Keyframes[i]
		switch kf.Focus {
		case "rotation_start":
			start = kf
		case "rotation_stop":
			stop = kf
		}
		t.Logf("Keyframe %d: time=%.2fs, focus=%s, phi=%.1f, theta=%.1f", i, kf.Time, kf.Focus, kf.Phi, kf.Theta)
	}
	if start == nil || stop == nil {
		t.Fatalf("Expected rotation keyframes, got %+v", script.Keyframes)
	}

	if script.Keyframes[0].Phi != 65 || script.Keyframes[0].Theta != -45 {
		t.Errorf("Expected camera oriented at t=0, got %+v", script.Keyframes[0])
	}

	// 0.15 rad/s for 3 seconds
	wantTheta := -45 + 0.15*3*180/math.Pi
	if math.Abs(stop.Theta-wantTheta) > 1e-6 {
		t.Errorf("Expected theta %.3f after rotation, got %.3f", wantTheta, stop.Theta)
	}
	if math.Abs(stop.Time-start.Time-3) > 1e-9 {
		t.Errorf("Expected 3s rotation, got %.3f", stop.Time-start.Time)
	}
}

func TestDirectorIsDeterministic(t *testing.T) {
	director := NewDirector(30)
	for _, name := range scenes.DefaultNames() {
		sc1, _ := scenes.Build(name)
		sc2, _ := scenes.Build(name)

		s1, err := director.Direct(sc1)
		if err != nil {
			t.Fatalf("Direct %s failed: %v", name, err)
		}
		s2, _ := director.Direct(sc2)

		if s1.Fingerprint != s2.Fingerprint || len(s1.Cues) != len(s2.Cues) {
			t.Errorf("%s: scripts differ between runs", name)
		}
	}
}

func TestDirectCameraMove(t *testing.T) {
	b := scene.NewBuilder("Move")
	b.MoveCamera(scene.Orientation{Phi: 65, Theta: -45}, 2)
	b.BeginRotation(0.1)
	b.Wait(1)
	sc, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	script, err := NewDirector(30).Direct(sc)
	if err != nil {
		t.Fatalf("Direct failed: %v", err)
	}
	kfs := script.Keyframes
	if len(kfs) != 3 {
		t.Fatalf("Expected 3 keyframes, got %+v", kfs)
	}

	if kfs[0].Easing != EasingSmooth || kfs[0].Phi != 0 || kfs[0].Theta != -90 {
		t.Errorf("Expected a smooth move from the flat view, got %+v", kfs[0])
	}
	if kfs[1].Time != 2 || kfs[1].Phi != 65 || kfs[1].Theta != -45 {
		t.Errorf("Expected the move to end at t=2, got %+v", kfs[1])
	}
	// Rotation starts where the move ended
	wantTheta := -45 + 0.1*180/math.Pi
	if math.Abs(kfs[2].Theta-wantTheta) > 1e-9 {
		t.Errorf("Expected theta %.3f at the end, got %.3f", wantTheta, kfs[2].Theta)
	}
}

func TestDirectorRejectsInvalidScene(t *testing.T) {
	sc := &scene.Scene{
		Name: "Broken",
		Steps: []scene.Step{
			{Index: 0, Kind: scene.StepPlay, Duration: 1, Animations: []scene.Animation{scene.FadeIn("ghost")}},
		},
	}
	if _, err := NewDirector(30).Direct(sc); err == nil {
		t.Error("Expected error for dangling reference, got nil")
	}
}

func TestScenarioWriteRead(t *testing.T) {
	var built []*scene.Scene
	for _, name := range []string{"Distance1D", "Distance3D"} {
		sc, err := scenes.Build(name)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		built = append(built, sc)
	}

	scenario, err := NewDirector(30).GenerateScenario(built, 1280, 720)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	// Write
	tmpFile := filepath.Join(t.TempDir(), "test_scenario.yaml")
	if err := WriteScenario(scenario, tmpFile); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}

	// Read
	readScenario, err := ReadScenario(tmpFile)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	if readScenario.Version != scenario.Version {
		t.Errorf("Version mismatch: expected %s, got %s", scenario.Version, readScenario.Version)
	}

	if len(readScenario.Scripts) != len(scenario.Scripts) {
		t.Fatalf("Script count mismatch: expected %d, got %d", len(scenario.Scripts), len(readScenario.Scripts))
	}

	if readScenario.Scripts[1].ID != 2 || readScenario.Scripts[1].Name != "Distance3D" {
		t.Errorf("Unexpected second script: %d %s", readScenario.Scripts[1].ID, readScenario.Scripts[1].Name)
	}
}

func TestGenerateScenarioEmpty(t *testing.T) {
	if _, err := NewDirector(30).GenerateScenario(nil, 1280, 720); err == nil {
		t.Error("Expected error for empty scene list")
	}
}

func TestCompareScenario(t *testing.T) {
	var built []*scene.Scene
	for _, name := range []string{"Distance1D", "Distance2D"} {
		sc, err := scenes.Build(name)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		built = append(built, sc)
	}
	saved, err := NewDirector(30).GenerateScenario(built, 1280, 720)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "nested", "scenario.yaml")
	if err := WriteScenario(saved, path); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}
	loaded, err := ReadScenario(path)
	if err != nil {
		t.Fatalf("ReadScenario failed: %v", err)
	}

	// Rebuilding the same scenes reproduces the saved scripts
	fresh, err := NewDirector(30).GenerateScenario(built, 1280, 720)
	if err != nil {
		t.Fatalf("GenerateScenario failed: %v", err)
	}
	if diff := Compare(loaded, fresh); len(diff) != 0 {
		t.Errorf("Expected no differences, got %v", diff)
	}

	// An edited scene changes its fingerprint; a dropped scene is reported
	loaded.Scripts[0].Fingerprint = "edited"
	fresh.Scripts = fresh.Scripts[:1]
	diff := Compare(loaded, fresh)
	if len(diff) != 2 {
		t.Fatalf("Expected 2 differences, got %v", diff)
	}
	if diff[0].Scene != "Distance1D" || diff[1].Reason != "scene is missing" {
		t.Errorf("Unexpected differences: %v", diff)
	}
}

func TestReadScenarioRejectsDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dup.yaml")
	scenario := &Scenario{
		Version: ScenarioVersion,
		Scripts: []Script{{ID: 1, Name: "Distance1D"}, {ID: 2, Name: "Distance1D"}},
	}
	if err := WriteScenario(scenario, path); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}
	if _, err := ReadScenario(path); err == nil {
		t.Error("Expected error for a repeated scene")
	}

	scenario.Version = "0.1"
	scenario.Scripts = scenario.Scripts[:1]
	if err := WriteScenario(scenario, path); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}
	if _, err := ReadScenario(path); err == nil {
		t.Error("Expected error for a foreign version")
	}
}
