package director

import "github.com/ivlev/knn2video/internal/scene"

// ScenarioVersion is written into every scenario file
const ScenarioVersion = "1.0"

// Scenario is the timed script of a whole video
type Scenario struct {
	Version string   `yaml:"version"`
	Width   int      `yaml:"width"`
	Height  int      `yaml:"height"`
	FPS     int      `yaml:"fps"`
	Scripts []Script `yaml:"scenes"`
}

// Script is the timed form of one scene
type Script struct {
	ID          int        `yaml:"id"`
	Name        string     `yaml:"name"`
	Duration    float64    `yaml:"duration"`    // Total duration in seconds, aligned to frames
	Fingerprint string     `yaml:"fingerprint"` // Hash of the scene graph and step list
	Cues        []Cue      `yaml:"cues"`
	Keyframes   []Keyframe `yaml:"keyframes"`
}

// Cue is one scene step placed on the timeline
type Cue struct {
	Step     int            `yaml:"step"`
	Kind     scene.StepKind `yaml:"kind"`
	Time     float64        `yaml:"time"`     // Start offset in seconds
	Duration float64        `yaml:"duration"` // Run time in seconds
	Actions  []CueAction    `yaml:"actions,omitempty"`
}

// End returns the moment the cue finishes
func (c Cue) End() float64 {
	return c.Time + c.Duration
}

// CueAction is an animation with its targets expanded to element ids
type CueAction struct {
	Action   scene.Action `yaml:"action"`
	Elements []string     `yaml:"elements"`
}

// Easing modes of the segment that starts at a keyframe
const (
	EasingHold   = "hold"
	EasingLinear = "linear"
	EasingSmooth = "smooth"
)

// Keyframe represents a camera orientation at a specific time
type Keyframe struct {
	Time   float64 `yaml:"time"`   // Time offset in seconds
	Focus  string  `yaml:"focus"`  // What produced the keyframe
	Phi    float64 `yaml:"phi"`    // Polar angle in degrees
	Theta  float64 `yaml:"theta"`  // Azimuth in degrees
	Zoom   float64 `yaml:"zoom"`   // Zoom level (1.0 = no zoom)
	Easing string  `yaml:"easing"` // How to reach the next keyframe
}
