package config

import (
	_ "embed"
)

//go:embed defaults/crawler.yaml
var defaultCrawlerYAML []byte

// DefaultCrawlerConfig returns the hardcoded settings used when no YAML
// source is usable.
func DefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		Keys: map[string][]string{
			"up":      {"up", "w"},
			"down":    {"down", "s"},
			"left":    {"left", "a"},
			"right":   {"right", "d"},
			"confirm": {"enter"},
			"pause":   {"p", " "},
			"exit":    {"esc"},
			"quit":    {"ctrl+c"},
		},
		Camera: CameraConfig{
			Speed: 12, // cells per second
		},
		Spin: SpinConfig{
			Rate: 3.14159, // half a turn per second
		},
		People: []string{"Pedro", "Sergio", "Karl"},
		Assets: AssetsConfig{
			Patterns: []string{"sprites/**/*.yaml"},
			Workers:  4,
		},
		Overlay: OverlayConfig{
			Title: "PAUSED",
			Hint:  "press P to resume",
		},
	}
}

// DefaultYAML returns the embedded default settings file.
func DefaultYAML() []byte {
	return defaultCrawlerYAML
}
