package director

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteScenario writes a scenario to a YAML file, creating its directory
func WriteScenario(scenario *Scenario, path string) error {
	data, err := yaml.Marshal(scenario)
	if err != nil {
		return fmt.Errorf("encode scenario: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadScenario loads a scenario written by WriteScenario. Files of another
// version or with unnamed or repeated scenes are rejected.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}
	if scenario.Version != ScenarioVersion {
		return nil, fmt.Errorf("unsupported scenario version %q", scenario.Version)
	}

	seen := make(map[string]bool, len(scenario.Scripts))
	for i, s := range scenario.Scripts {
		if s.Name == "" {
			return nil, fmt.Errorf("scenario %s: scene #%d has no name", path, i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("scenario %s: scene %s appears twice", path, s.Name)
		}
		seen[s.Name] = true
	}
	return &scenario, nil
}

// Mismatch is a saved script that no longer matches its scene
type Mismatch struct {
	Scene  string
	Reason string
}

func (m Mismatch) String() string {
	return m.Scene + ": " + m.Reason
}

// Compare checks saved scripts against freshly directed ones, scene by
// scene. Equal fingerprints mean the scene graph and steps are unchanged;
// durations and cue counts are compared as well since they also depend on
// the frame rate.
func Compare(saved, fresh *Scenario) []Mismatch {
	current := make(map[string]*Script, len(fresh.Scripts))
	for i := range fresh.Scripts {
		current[fresh.Scripts[i].Name] = &fresh.Scripts[i]
	}

	var out []Mismatch
	for _, s := range saved.Scripts {
		c, ok := current[s.Name]
		switch {
		case !ok:
			out = append(out, Mismatch{s.Name, "scene is missing"})
		case s.Fingerprint != c.Fingerprint:
			out = append(out, Mismatch{s.Name, fmt.Sprintf("fingerprint %.12s, now %.12s", s.Fingerprint, c.Fingerprint)})
		case math.Abs(s.Duration-c.Duration) > 1e-6:
			out = append(out, Mismatch{s.Name, fmt.Sprintf("duration %.3fs, now %.3fs", s.Duration, c.Duration)})
		case len(s.Cues) != len(c.Cues):
			out = append(out, Mismatch{s.Name, fmt.Sprintf("%d cues, now %d", len(s.Cues), len(c.Cues))})
		}
	}
	return out
}
