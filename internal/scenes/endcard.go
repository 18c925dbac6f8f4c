package scenes

import (
	"errors"

	"github.com/ivlev/knn2video/internal/scene"
)

// ErrNoURL is returned by EndCard when no tutorial link is configured.
var ErrNoURL = errors.New("EndCard: tutorial URL is not set")

// EndCardConfig holds the closing card layout.
type EndCardConfig struct {
	Title   TextConfig  `yaml:"title"`
	URL     string      `yaml:"url"`
	QRSize  float64     `yaml:"qr_size"`
	QRPos   scene.Point `yaml:"qr_pos"`
	Caption TextConfig  `yaml:"caption"`
	Hold    float64     `yaml:"hold"`
}

// DefaultEndCardConfig leaves URL empty; the card is skipped until set.
func DefaultEndCardConfig() EndCardConfig {
	return EndCardConfig{
		Title:   title("K-Nearest Neighbors: distances"),
		QRSize:  3,
		QRPos:   scene.Point{Y: 0.2},
		Caption: TextConfig{Pos: scene.Point{Y: -2.2}, Scale: 0.5},
		Hold:    3,
	}
}

// EndCard shows a QR code pointing at the written tutorial.
func EndCard(cfg EndCardConfig) (*scene.Scene, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	b := scene.NewBuilder("EndCard")

	b.Play(scene.FadeIn(addText(b, "title", cfg.Title)))

	qr := b.Add(scene.Element{
		ID:     "qr",
		Kind:   scene.KindQRCode,
		Text:   cfg.URL,
		Points: []scene.Point{cfg.QRPos},
		Radius: cfg.QRSize / 2,
		Color:  scene.White,
	})
	caption := cfg.Caption
	if caption.Text == "" {
		caption.Text = cfg.URL
	}
	b.Play(scene.FadeIn(qr, addText(b, "caption", caption)))
	b.Wait(cfg.Hold)

	return b.Build()
}
