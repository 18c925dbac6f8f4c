package director

import (
	"fmt"
	"math"

	"github.com/ivlev/knn2video/internal/scene"
)

// Director turns scenes into timed scripts
type Director struct {
	FPS  int
	Tail float64 // Extra hold at the end of every scene (seconds)
}

// NewDirector creates a new Director with default settings
func NewDirector(fps int) *Director {
	return &Director{
		FPS:  fps,
		Tail: 0,
	}
}

// GenerateScenario directs every scene and bundles the scripts
func (d *Director) GenerateScenario(scenes []*scene.Scene, width, height int) (*Scenario, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to direct")
	}

	scenario := &Scenario{
		Version: ScenarioVersion,
		Width:   width,
		Height:  height,
		FPS:     d.FPS,
	}

	for i, sc := range scenes {
		script, err := d.Direct(sc)
		if err != nil {
			return nil, err
		}
		script.ID = i + 1
		scenario.Scripts = append(scenario.Scripts, *script)
	}

	return scenario, nil
}

// Direct validates a scene and lays its steps out on a timeline.
// Steps run strictly one after another; the result only depends on the scene.
func (d *Director) Direct(sc *scene.Scene) (*Script, error) {
	if err := scene.Validate(sc); err != nil {
		return nil, fmt.Errorf("scene %s: %w", sc.Name, err)
	}

	fingerprint, err := sc.Fingerprint()
	if err != nil {
		return nil, err
	}

	script := &Script{
		ID:          1,
		Name:        sc.Name,
		Fingerprint: fingerprint,
	}

	cam := newCameraTrack()
	currentTime := 0.0

	for _, st := range sc.Steps {
		cue := Cue{
			Step:     st.Index,
			Kind:     st.Kind,
			Time:     currentTime,
			Duration: st.Duration,
		}
		for _, a := range st.Animations {
			var ids []string
			for _, t := range a.Targets {
				ids = append(ids, sc.Resolve(t)...)
			}
			cue.Actions = append(cue.Actions, CueAction{Action: a.Action, Elements: ids})
		}
		script.Cues = append(script.Cues, cue)

		switch st.Kind {
		case scene.StepOrient:
			cam.orient(currentTime, st.Duration, *st.Orientation)
		case scene.StepBeginRotation:
			cam.begin(currentTime, st.RotationRate)
		case scene.StepStopRotation:
			cam.stop(currentTime)
		}

		currentTime += st.Duration
	}

	script.Duration = d.alignToFrames(currentTime + d.Tail)
	cam.finish(script.Duration)
	script.Keyframes = cam.keyframes

	return script, nil
}

// alignToFrames rounds a duration up to a whole number of frames
func (d *Director) alignToFrames(seconds float64) float64 {
	if d.FPS <= 0 {
		return seconds
	}
	frames := math.Ceil(seconds*float64(d.FPS) - 1e-9)
	return frames / float64(d.FPS)
}

// cameraTrack converts orient/rotation steps into keyframes
type cameraTrack struct {
	current   scene.Orientation
	rotating  bool
	rate      float64 // radians per second
	since     float64
	keyframes []Keyframe
}

func newCameraTrack() *cameraTrack {
	c := &cameraTrack{current: scene.FlatOrientation}
	c.set(Keyframe{Time: 0, Focus: "start", Easing: EasingHold})
	return c
}

func (c *cameraTrack) set(kf Keyframe) {
	kf.Phi = c.current.Phi
	kf.Theta = c.current.Theta
	kf.Zoom = 1.0

	if n := len(c.keyframes); n > 0 && c.keyframes[n-1].Time == kf.Time {
		c.keyframes[n-1] = kf
		return
	}
	c.keyframes = append(c.keyframes, kf)
}

func (c *cameraTrack) advance(t float64) {
	if c.rotating {
		c.current.Theta += (t - c.since) * c.rate * 180 / math.Pi
		c.since = t
	}
}

// orient turns the camera to o, smoothly when d is positive. An ambient
// rotation resumes from o once the move is over.
func (c *cameraTrack) orient(t, d float64, o scene.Orientation) {
	c.advance(t)
	if d > 0 {
		c.set(Keyframe{Time: t, Focus: "move", Easing: EasingSmooth})
		t += d
		c.since = t
	}
	c.current = o
	easing := EasingHold
	if c.rotating {
		easing = EasingLinear
	}
	c.set(Keyframe{Time: t, Focus: "orient", Easing: easing})
}

func (c *cameraTrack) begin(t float64, rate float64) {
	c.advance(t)
	c.rotating = true
	c.rate = rate
	c.since = t
	c.set(Keyframe{Time: t, Focus: "rotation_start", Easing: EasingLinear})
}

func (c *cameraTrack) stop(t float64) {
	if !c.rotating {
		return
	}
	c.advance(t)
	c.rotating = false
	c.set(Keyframe{Time: t, Focus: "rotation_stop", Easing: EasingHold})
}

func (c *cameraTrack) finish(end float64) {
	if c.rotating {
		c.advance(end)
		c.rotating = false
		c.set(Keyframe{Time: end, Focus: "end", Easing: EasingHold})
	}
}
