// Package scenes is the catalogue of tutorial scenes. Every scene is a pure
// function from its config struct to a scene.Scene; the defaults reproduce
// the published video and YAML overrides can retune any layout constant.
package scenes

import (
	"fmt"
	"sort"

	"github.com/ivlev/knn2video/internal/scene"
	"gopkg.in/yaml.v3"
)

// Factory builds a scene from optional YAML overrides, applied in order.
type Factory func(overrides ...*yaml.Node) (*scene.Scene, error)

// Entry describes a registered scene.
type Entry struct {
	Name        string
	Description string
	// Order is the position of the scene in the full video.
	Order int
	// Optional scenes are only rendered when asked for by name.
	Optional bool
	Build    Factory
}

var registry = map[string]Entry{
	"Distance1D": {
		Name:        "Distance1D",
		Description: "Distance on a number line: |a - b|",
		Order:       1,
		Build:       factory(DefaultDistance1DConfig, Distance1D),
	},
	"Distance2D": {
		Name:        "Distance2D",
		Description: "Euclidean distance in the plane",
		Order:       2,
		Build:       factory(DefaultDistance2DConfig, Euclidean),
	},
	"Distance3D": {
		Name:        "Distance3D",
		Description: "Euclidean distance in space with a rotating camera",
		Order:       3,
		Build:       factory(DefaultDistance3DConfig, Euclidean),
	},
	"CurseOfDimensionality": {
		Name:        "CurseOfDimensionality",
		Description: "Neighbourhood volume grows like r^d",
		Order:       4,
		Build:       factory(DefaultCurseConfig, CurseOfDimensionality),
	},
	"MinkowskiBalls2D": {
		Name:        "MinkowskiBalls2D",
		Description: "Unit balls of the p-norms in 2D",
		Order:       5,
		Build:       factory(DefaultMinkowskiConfig, MinkowskiBalls2D),
	},
	"EndCard": {
		Name:        "EndCard",
		Description: "Closing card with a QR code to the tutorial",
		Order:       6,
		Optional:    true,
		Build:       factory(DefaultEndCardConfig, EndCard),
	},
}

// Names returns all scene names in video order.
func Names() []string {
	entries := make([]Entry, 0, len(registry))
	for _, e := range registry {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Order < entries[j].Order
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// DefaultNames returns the scenes rendered when none is requested.
func DefaultNames() []string {
	var names []string
	for _, n := range Names() {
		if !registry[n].Optional {
			names = append(names, n)
		}
	}
	return names
}

// Lookup returns the entry registered under name.
func Lookup(name string) (Entry, error) {
	e, ok := registry[name]
	if !ok {
		return Entry{}, fmt.Errorf("unknown scene: %s", name)
	}
	return e, nil
}

// Build builds the named scene with optional overrides.
func Build(name string, overrides ...*yaml.Node) (*scene.Scene, error) {
	e, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Build(overrides...)
}

func factory[C any](defaults func() C, build func(C) (*scene.Scene, error)) Factory {
	return func(overrides ...*yaml.Node) (*scene.Scene, error) {
		cfg := defaults()
		for _, node := range overrides {
			var err error
			if cfg, err = decode(cfg, node); err != nil {
				return nil, err
			}
		}
		return build(cfg)
	}
}

// decode applies YAML overrides on top of a default config. Keys absent
// from the node keep their default values.
func decode[C any](cfg C, node *yaml.Node) (C, error) {
	if node == nil || node.Kind == 0 {
		return cfg, nil
	}
	if err := node.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode scene overrides: %w", err)
	}
	return cfg, nil
}
