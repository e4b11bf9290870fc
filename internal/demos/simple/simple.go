// Package simple runs SimpleGamePlugin: people greeted once with the name
// fixed first, and the exit key.
package simple

import (
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func init() {
	registry.Register("simple", func() registry.Demo { return &Demo{} })
}

// Demo implements registry.Demo.
type Demo struct{}

func (d *Demo) ID() string    { return "simple" }
func (d *Demo) Title() string { return "Simple Game Plugin" }

func (d *Demo) Description() string {
	return "plugin with a chained startup and exit on escape"
}

func (d *Demo) Build(s *schedule.Scheduler, env registry.Env) error {
	s.AddPlugins(demos.SimpleGamePlugin{Names: env.Settings.People})
	return nil
}
