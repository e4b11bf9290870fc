// Package config provides YAML-based settings loading for the crawler demos.
package config

import (
	"errors"
	"fmt"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

// CrawlerConfig contains all settings shared by the demos.
type CrawlerConfig struct {
	Keys    map[string][]string `yaml:"keys"` // action name -> key strings
	Camera  CameraConfig        `yaml:"camera"`
	Spin    SpinConfig          `yaml:"spin"`
	People  []string            `yaml:"people"`
	Assets  AssetsConfig        `yaml:"assets"`
	Overlay OverlayConfig       `yaml:"overlay"`
}

// CameraConfig defines camera movement.
type CameraConfig struct {
	Speed float64 `yaml:"speed"` // cells per second
}

// SpinConfig defines the spinner rotation.
type SpinConfig struct {
	Rate float64 `yaml:"rate"` // radians per second
}

// AssetsConfig defines where sprites come from.
type AssetsConfig struct {
	Root      string   `yaml:"root"`     // on-disk directory, empty for embedded sprites
	Patterns  []string `yaml:"patterns"` // doublestar globs relative to root
	Workers   int      `yaml:"workers"`
	HotReload bool     `yaml:"hot_reload"`
}

// OverlayConfig defines the paused overlay text.
type OverlayConfig struct {
	Title string `yaml:"title"`
	Hint  string `yaml:"hint"`
}

// Validate checks the settings for values the demos cannot run with.
func (c *CrawlerConfig) Validate() error {
	var errs []error
	for name := range c.Keys {
		if _, ok := core.ParseAction(name); !ok {
			errs = append(errs, fmt.Errorf("keys: unknown action %q", name))
		}
	}
	if c.Camera.Speed < 0 {
		errs = append(errs, fmt.Errorf("camera.speed must not be negative, got %v", c.Camera.Speed))
	}
	if len(c.Assets.Patterns) == 0 {
		errs = append(errs, errors.New("assets.patterns must list at least one pattern"))
	}
	if c.Assets.Workers < 0 {
		errs = append(errs, fmt.Errorf("assets.workers must not be negative, got %d", c.Assets.Workers))
	}
	return errors.Join(errs...)
}

// Bindings returns the key bindings with action names resolved. Unknown
// action names are skipped; Validate reports them.
func (c *CrawlerConfig) Bindings() map[core.Action][]string {
	out := make(map[core.Action][]string, len(c.Keys))
	for name, keys := range c.Keys {
		if a, ok := core.ParseAction(name); ok {
			out[a] = append([]string(nil), keys...)
		}
	}
	return out
}
