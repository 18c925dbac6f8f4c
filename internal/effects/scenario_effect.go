package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/knn2video/internal/config"
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/system"
)

// ScenarioEffect adds the step timeline of a scenario to the default effect:
// in debug mode each cue is labelled while it runs.
type ScenarioEffect struct {
	Scenario *director.Scenario
	Base     Effect
}

// NewScenarioEffect creates a new ScenarioEffect
func NewScenarioEffect(scenario *director.Scenario) *ScenarioEffect {
	return &ScenarioEffect{
		Scenario: scenario,
		Base:     &DefaultEffect{},
	}
}

// GenerateFilter generates FFmpeg filter for a specific scene from the scenario
func (e *ScenarioEffect) GenerateFilter(p config.SegmentParams) string {
	base := e.Base.GenerateFilter(p)
	if !p.Debug || e.Scenario == nil || p.SceneIndex >= len(e.Scenario.Scripts) {
		return base
	}
	if !system.CheckFilterSupport("drawtext") {
		return base
	}

	script := e.Scenario.Scripts[p.SceneIndex]
	overlays := CueOverlays(script)
	if len(overlays) == 0 {
		return base
	}
	if base == "null" {
		return strings.Join(overlays, ",")
	}
	return base + "," + strings.Join(overlays, ",")
}

// CueOverlays returns one drawtext filter per play cue, enabled while the
// cue runs
func CueOverlays(script director.Script) []string {
	var filters []string
	for _, cue := range script.Cues {
		if cue.Duration <= 0 || len(cue.Actions) == 0 {
			continue
		}
		var parts []string
		for _, a := range cue.Actions {
			parts = append(parts, string(a.Action))
		}
		filters = append(filters, fmt.Sprintf(
			"drawtext=text='step %d\\: %s':x=10:y=h-40:fontsize=20:fontcolor=white:box=1:boxcolor=black@0.5:enable='between(t,%.3f,%.3f)'",
			cue.Step, strings.Join(parts, " + "), cue.Time, cue.End()))
	}
	return filters
}
