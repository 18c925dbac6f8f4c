package scene

import (
	"fmt"
)

// Builder assembles a Scene. Calls are recorded in order; the first failing
// call is kept and returned by Build, later calls become no-ops.
type Builder struct {
	name     string
	elements []Element
	groups   []Group
	steps    []Step
	known    map[string]bool
	err      error
}

// NewBuilder starts an empty scene.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		known: make(map[string]bool),
	}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Add registers an element and returns its id. Zero scale defaults to 1.
func (b *Builder) Add(e Element) string {
	if b.err != nil {
		return e.ID
	}
	if e.ID == "" {
		b.fail(fmt.Errorf("%w: element of kind %s without id", ErrInvalidStep, e.Kind))
		return e.ID
	}
	if b.known[e.ID] {
		b.fail(fmt.Errorf("%w: %q", ErrDuplicateElement, e.ID))
		return e.ID
	}
	if e.Scale == 0 {
		e.Scale = 1
	}
	e.Since = len(b.steps)
	b.known[e.ID] = true
	b.elements = append(b.elements, e)
	return e.ID
}

// Group registers a composite group of already added elements or groups.
func (b *Builder) Group(id string, members ...string) string {
	if b.err != nil {
		return id
	}
	if b.known[id] {
		b.fail(fmt.Errorf("%w: %q", ErrDuplicateElement, id))
		return id
	}
	for _, m := range members {
		if !b.known[m] {
			b.fail(fmt.Errorf("%w: group %q member %q", ErrUnknownTarget, id, m))
			return id
		}
	}
	b.known[id] = true
	b.groups = append(b.groups, Group{ID: id, Members: append([]string(nil), members...)})
	return id
}

// Play records one step running all animations together for DefaultRunTime.
func (b *Builder) Play(anims ...Animation) {
	b.PlayFor(DefaultRunTime, anims...)
}

// PlayFor records one step running all animations together for d seconds.
func (b *Builder) PlayFor(d float64, anims ...Animation) {
	if b.err != nil {
		return
	}
	for _, a := range anims {
		for _, t := range a.Targets {
			if !b.known[t] {
				b.fail(fmt.Errorf("%w: step %d (%s) references %q", ErrUnknownTarget, len(b.steps), a.Action, t))
				return
			}
		}
	}
	cp := make([]Animation, len(anims))
	for i, a := range anims {
		cp[i] = Animation{Action: a.Action, Targets: append([]string(nil), a.Targets...)}
	}
	b.push(Step{Kind: StepPlay, Animations: cp, Duration: d})
}

// Wait records a fixed pause.
func (b *Builder) Wait(d float64) {
	b.push(Step{Kind: StepWait, Duration: d})
}

// Orient sets the camera orientation instantly.
func (b *Builder) Orient(o Orientation) {
	b.MoveCamera(o, 0)
}

// MoveCamera turns the camera to o over d seconds, easing in and out.
func (b *Builder) MoveCamera(o Orientation, d float64) {
	b.push(Step{Kind: StepOrient, Orientation: &o, Duration: d})
}

// BeginRotation starts an ambient camera rotation of rate radians per second
// around the z axis. It lasts until StopRotation or the end of the scene.
func (b *Builder) BeginRotation(rate float64) {
	b.push(Step{Kind: StepBeginRotation, RotationRate: rate})
}

// StopRotation ends the ambient camera rotation.
func (b *Builder) StopRotation() {
	b.push(Step{Kind: StepStopRotation})
}

func (b *Builder) push(st Step) {
	if b.err != nil {
		return
	}
	st.Index = len(b.steps)
	if err := checkStep(st); err != nil {
		b.fail(err)
		return
	}
	b.steps = append(b.steps, st)
}

// Build returns the scene or the first recorded error.
func (b *Builder) Build() (*Scene, error) {
	if b.err != nil {
		return nil, fmt.Errorf("scene %s: %w", b.name, b.err)
	}
	sc := &Scene{
		Name:     b.name,
		Elements: append([]Element(nil), b.elements...),
		Groups:   append([]Group(nil), b.groups...),
		Steps:    append([]Step(nil), b.steps...),
	}
	if err := Validate(sc); err != nil {
		return nil, fmt.Errorf("scene %s: %w", b.name, err)
	}
	return sc, nil
}
