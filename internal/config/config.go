package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Scenes           []string             `yaml:"scenes"`
	Overrides        map[string]yaml.Node `yaml:"overrides"` // Per-scene layout overrides
	OutputVideo      string               `yaml:"output"`
	Width            int                  `yaml:"width"`
	Height           int                  `yaml:"height"`
	FPS              int                  `yaml:"fps"`
	Workers          int                  `yaml:"workers"`
	FadeDuration     float64              `yaml:"fade"`
	TransitionType   string               `yaml:"transition"`
	AudioPath        string               `yaml:"audio"`
	BackgroundAudio  string               `yaml:"background_audio"`
	BackgroundVolume float64              `yaml:"background_volume"`
	Preset           string               `yaml:"preset"`
	VideoEncoder     string               `yaml:"encoder"`
	Quality          int                  `yaml:"quality"`
	ScenarioOutput   string               `yaml:"scenario_out"`
	ScenarioOnly     bool                 `yaml:"scenario_only"`
	Backdrop         string               `yaml:"backdrop"`
	BackdropPage     int                  `yaml:"backdrop_page"` // Zero-based
	BackdropDPI      int                  `yaml:"backdrop_dpi"`  // 0 fits the page to the frame height
	BackdropDim      float64              `yaml:"backdrop_dim"`
	URL              string               `yaml:"url"`
	ShowStats        bool                 `yaml:"stats"`
	Debug            bool                 `yaml:"debug"`

	// Filled in by the engine
	TotalDuration  float64   `yaml:"-"`
	SceneDurations []float64 `yaml:"-"`
	BuildVersion   string    `yaml:"-"`
}

type SegmentParams struct {
	Width, Height  int
	FPS            int
	Duration       float64
	FadeDuration   float64
	TransitionType string
	SceneIndex     int
	SceneName      string
	Debug          bool
	Filter         string // -vf chain built by the effect
}

// Default returns the settings used when neither flags nor a project file
// say otherwise
func Default() *Config {
	return &Config{
		Width:            1920,
		Height:           1080,
		FPS:              30,
		Workers:          2,
		FadeDuration:     0.5,
		TransitionType:   "fade",
		BackgroundVolume: 0.2,
		VideoEncoder:     "libx264",
		BackdropDim:      0.7,
	}
}

// LoadFile reads a YAML project file on top of the defaults. Keys missing
// from the file keep their default values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyPreset switches the frame size to a named aspect ratio
func (c *Config) ApplyPreset(preset string) error {
	switch preset {
	case "":
		return nil
	case "16:9":
		c.Width, c.Height = 1920, 1080
	case "720p":
		c.Width, c.Height = 1280, 720
	case "4k":
		c.Width, c.Height = 3840, 2160
	default:
		return fmt.Errorf("unknown preset %q (use 16:9, 720p or 4k)", preset)
	}
	c.Preset = preset
	return nil
}

// Override returns the layout overrides of a scene, or nil
func (c *Config) Override(scene string) *yaml.Node {
	node, ok := c.Overrides[scene]
	if !ok {
		return nil
	}
	return &node
}

// Validate checks the settings the encoder depends on
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 || c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("frame size %dx%d must be positive and even", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.FadeDuration < 0 {
		return fmt.Errorf("fade must not be negative, got %.2f", c.FadeDuration)
	}
	if c.BackdropDim < 0 || c.BackdropDim > 1 {
		return fmt.Errorf("backdrop_dim must be within 0..1, got %.2f", c.BackdropDim)
	}
	return nil
}
