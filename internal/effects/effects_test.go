package effects

import (
	"strings"
	"testing"

	"github.com/ivlev/knn2video/internal/config"
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/scene"
)

func TestDefaultEffectFades(t *testing.T) {
	eff := &DefaultEffect{}

	filter := eff.GenerateFilter(config.SegmentParams{
		Duration:       6,
		FadeDuration:   0.5,
		TransitionType: "none",
	})
	if !strings.Contains(filter, "fade=t=in:st=0:d=0.500") {
		t.Errorf("Expected fade in, got %s", filter)
	}
	if !strings.Contains(filter, "fade=t=out:st=5.500:d=0.500") {
		t.Errorf("Expected fade out, got %s", filter)
	}

	// xfade handles the transition, nothing to do per segment
	filter = eff.GenerateFilter(config.SegmentParams{
		Duration:       6,
		FadeDuration:   0.5,
		TransitionType: "fade",
	})
	if filter != "null" {
		t.Errorf("Expected null filter, got %s", filter)
	}
}

func TestDefaultEffectShortScene(t *testing.T) {
	filter := (&DefaultEffect{}).GenerateFilter(config.SegmentParams{
		Duration:     0.6,
		FadeDuration: 0.5,
	})
	if !strings.Contains(filter, "fade=t=out:st=0.300:d=0.300") {
		t.Errorf("Fade should be capped at half the scene, got %s", filter)
	}
}

func TestCueOverlays(t *testing.T) {
	script := director.Script{
		Name: "Overlay",
		Cues: []director.Cue{
			{Step: 0, Kind: scene.StepPlay, Time: 0, Duration: 1, Actions: []director.CueAction{
				{Action: scene.ActionFadeIn, Elements: []string{"title"}},
			}},
			{Step: 1, Kind: scene.StepWait, Time: 1, Duration: 2},
			{Step: 2, Kind: scene.StepPlay, Time: 3, Duration: 1, Actions: []director.CueAction{
				{Action: scene.ActionCreate, Elements: []string{"axes"}},
				{Action: scene.ActionWrite, Elements: []string{"formula"}},
			}},
		},
	}

	overlays := CueOverlays(script)
	if len(overlays) != 2 {
		t.Fatalf("Expected 2 overlays, got %d", len(overlays))
	}
	if !strings.Contains(overlays[1], "create + write") || !strings.Contains(overlays[1], "between(t,3.000,4.000)") {
		t.Errorf("Unexpected overlay: %s", overlays[1])
	}
	t.Logf("Overlay: %s", overlays[0])
}
