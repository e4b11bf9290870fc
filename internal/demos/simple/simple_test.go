package simple

import (
	"testing"
	"time"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func TestSimpleDemoExitsOnEscape(t *testing.T) {
	s := schedule.New(engine.NewWorld())
	env := registry.Env{Runtime: core.DefaultConfig(), Settings: config.DefaultCrawlerConfig()}
	env.Settings.People = []string{"Ana", "Sergio"}
	if err := (&Demo{}).Build(s, env); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	greetings := s.World().Console().Drain()
	if len(greetings) != 2 || greetings[1] != "Hello Sérgio!" {
		t.Errorf("Greetings = %v", greetings)
	}

	// exit is eligible while the store never leaves loading
	if err := s.Tick(time.Second/60, core.FrameOf(core.ActionExit)); err != nil {
		t.Fatal(err)
	}
	if !s.World().ExitRequested() {
		t.Error("Escape should request exit")
	}
}
