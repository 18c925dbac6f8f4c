package renderer

import (
	"github.com/ivlev/knn2video/internal/director"
	"github.com/ivlev/knn2video/internal/scene"
)

// ElementState is how far an element has been animated at a given time
type ElementState struct {
	Visible  bool
	Opacity  float64 // 0..1
	Progress float64 // Share of the outline or text already drawn
	Scale    float64 // Growth factor around the element centre
}

// StatesAt replays the cues of a script up to currentTime. Elements that no
// cue has touched yet are absent from the result.
func StatesAt(script *director.Script, currentTime float64) map[string]ElementState {
	states := make(map[string]ElementState)

	for _, cue := range script.Cues {
		if cue.Time > currentTime {
			break
		}
		if cue.Kind != scene.StepPlay {
			continue
		}

		a := 1.0
		if cue.Duration > 0 && currentTime < cue.End() {
			a = easeInOutCubic((currentTime - cue.Time) / cue.Duration)
		}

		for _, act := range cue.Actions {
			for _, id := range act.Elements {
				states[id] = apply(states[id], act.Action, a)
			}
		}
	}

	return states
}

func apply(prev ElementState, action scene.Action, a float64) ElementState {
	switch action {
	case scene.ActionCreate, scene.ActionWrite:
		return ElementState{Visible: true, Opacity: 1, Progress: a, Scale: 1}
	case scene.ActionFadeIn:
		return ElementState{Visible: true, Opacity: a, Progress: 1, Scale: 1}
	case scene.ActionGrow:
		return ElementState{Visible: true, Opacity: 1, Progress: 1, Scale: a}
	case scene.ActionFadeOut:
		if !prev.Visible {
			return prev
		}
		next := prev
		next.Opacity = prev.Opacity * (1 - a)
		if a >= 1 {
			next.Visible = false
		}
		return next
	}
	return prev
}
