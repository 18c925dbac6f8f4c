package scene

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownTarget    = errors.New("unknown target")
	ErrDuplicateElement = errors.New("duplicate element")
	ErrInvalidStep      = errors.New("invalid step")
)

// Scene is a built, immutable scene graph with its step list.
type Scene struct {
	Name     string    `yaml:"name"`
	Elements []Element `yaml:"elements"`
	Groups   []Group   `yaml:"groups,omitempty"`
	Steps    []Step    `yaml:"steps"`
}

// Element returns the element with the given id.
func (s *Scene) Element(id string) (Element, bool) {
	for _, e := range s.Elements {
		if e.ID == id {
			return e, true
		}
	}
	return Element{}, false
}

// Resolve expands a target into element ids. Groups expand recursively in
// member order; unknown ids resolve to nothing.
func (s *Scene) Resolve(target string) []string {
	return s.resolve(target, map[string]bool{})
}

func (s *Scene) resolve(target string, seen map[string]bool) []string {
	if seen[target] {
		return nil
	}
	seen[target] = true

	if _, ok := s.Element(target); ok {
		return []string{target}
	}
	for _, g := range s.Groups {
		if g.ID != target {
			continue
		}
		var ids []string
		for _, m := range g.Members {
			ids = append(ids, s.resolve(m, seen)...)
		}
		return ids
	}
	return nil
}

// Duration returns the total length of the scene in seconds.
func (s *Scene) Duration() float64 {
	total := 0.0
	for _, st := range s.Steps {
		total += st.Duration
	}
	return total
}

// Fingerprint hashes the YAML encoding of the scene. Two builds from the same
// configuration have the same fingerprint.
func (s *Scene) Fingerprint() (string, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Validate checks the invariants a Builder enforces, for scenes that were
// decoded or assembled by hand.
func Validate(s *Scene) error {
	since := make(map[string]int, len(s.Elements)+len(s.Groups))
	for _, e := range s.Elements {
		if e.ID == "" {
			return fmt.Errorf("%w: element without id", ErrInvalidStep)
		}
		if _, dup := since[e.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateElement, e.ID)
		}
		since[e.ID] = e.Since
	}
	for _, g := range s.Groups {
		if _, dup := since[g.ID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateElement, g.ID)
		}
		at := 0
		for _, m := range g.Members {
			idx, ok := since[m]
			if !ok {
				return fmt.Errorf("%w: group %q member %q", ErrUnknownTarget, g.ID, m)
			}
			if idx > at {
				at = idx
			}
		}
		since[g.ID] = at
	}

	for i, st := range s.Steps {
		if st.Index != i {
			return fmt.Errorf("%w: step %d carries index %d", ErrInvalidStep, i, st.Index)
		}
		if err := checkStep(st); err != nil {
			return err
		}
		for _, a := range st.Animations {
			for _, t := range a.Targets {
				idx, ok := since[t]
				if !ok || idx > i {
					return fmt.Errorf("%w: step %d (%s) references %q", ErrUnknownTarget, i, a.Action, t)
				}
			}
		}
	}
	return nil
}

func checkStep(st Step) error {
	if st.Duration < 0 || math.IsNaN(st.Duration) || math.IsInf(st.Duration, 0) {
		return fmt.Errorf("%w: step %d has duration %v", ErrInvalidStep, st.Index, st.Duration)
	}
	switch st.Kind {
	case StepPlay:
		if len(st.Animations) == 0 {
			return fmt.Errorf("%w: step %d plays nothing", ErrInvalidStep, st.Index)
		}
		if st.Duration == 0 {
			return fmt.Errorf("%w: step %d has zero run time", ErrInvalidStep, st.Index)
		}
		for _, a := range st.Animations {
			if len(a.Targets) == 0 {
				return fmt.Errorf("%w: step %d %s without targets", ErrInvalidStep, st.Index, a.Action)
			}
		}
	case StepWait, StepStopRotation:
	case StepOrient:
		if st.Orientation == nil {
			return fmt.Errorf("%w: step %d orients without an orientation", ErrInvalidStep, st.Index)
		}
	case StepBeginRotation:
		if math.IsNaN(st.RotationRate) || math.IsInf(st.RotationRate, 0) {
			return fmt.Errorf("%w: step %d rotation rate %v", ErrInvalidStep, st.Index, st.RotationRate)
		}
	default:
		return fmt.Errorf("%w: step %d has kind %q", ErrInvalidStep, st.Index, st.Kind)
	}
	return nil
}
