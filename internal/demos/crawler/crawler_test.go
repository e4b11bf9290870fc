package crawler

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/config"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

const dt = 50 * time.Millisecond

func newCrawler(t *testing.T, mutate func(c *config.CrawlerConfig)) *schedule.Scheduler {
	t.Helper()
	settings := config.DefaultCrawlerConfig()
	if mutate != nil {
		mutate(&settings)
	}

	s := schedule.New(engine.NewWorld(), schedule.WithLogger(log.New(io.Discard)))
	t.Cleanup(func() { s.World().Close() })

	env := registry.Env{Runtime: core.DefaultConfig(), Settings: settings}
	if err := (&Demo{}).Build(s, env); err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	return s
}

func press(t *testing.T, s *schedule.Scheduler, actions ...core.Action) {
	t.Helper()
	if err := s.Tick(dt, core.FrameOf(actions...)); err != nil {
		t.Fatalf("Tick(%v) failed: %v", actions, err)
	}
}

func runUntilRunning(t *testing.T, s *schedule.Scheduler) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Modes().Current() != mode.Running {
		if time.Now().After(deadline) {
			t.Fatal("Sprites did not finish loading in time")
		}
		press(t, s)
		time.Sleep(time.Millisecond)
	}
}

func count(filter *ecs.Filter0) int {
	n := 0
	query := filter.Query()
	for query.Next() {
		n++
	}
	return n
}

func overlays(w *engine.World) int {
	return count(ecs.NewFilter0(w.ECS()).With(ecs.C[PausedOverlay]()))
}

func texts(w *engine.World) int {
	return count(ecs.NewFilter0(w.ECS()).With(ecs.C[engine.Text]()))
}

func cameraPos(w *engine.World) core.Vec2 {
	var pos core.Vec2
	query := ecs.NewFilter1[engine.Transform](w.ECS()).With(ecs.C[engine.Camera]()).Query()
	for query.Next() {
		pos = query.Get().Pos
	}
	return pos
}

func TestStartsLoading(t *testing.T) {
	s := newCrawler(t, nil)
	w := s.World()

	if s.Modes().Current() != mode.Loading {
		t.Fatalf("Initial mode = %v, expected loading", s.Modes().Current())
	}
	if count(ecs.NewFilter0(w.ECS()).With(ecs.C[LoadingText]())) != 1 {
		t.Error("A loading label should be shown while loading")
	}
	if count(ecs.NewFilter0(w.ECS()).With(ecs.C[Spinner]())) != 0 {
		t.Error("The world must not be built before loading finishes")
	}

	// the pause key is ignored while loading
	press(t, s, core.ActionPause)
	if overlays(w) != 0 {
		t.Error("Pause must not be eligible while loading")
	}
}

func TestLoadingToRunningBuildsWorldOnce(t *testing.T) {
	s := newCrawler(t, nil)
	w := s.World()
	runUntilRunning(t, s)

	if s.Modes().Transitions() != 1 {
		t.Errorf("Transitions() = %d, expected 1", s.Modes().Transitions())
	}
	if count(ecs.NewFilter0(w.ECS()).With(ecs.C[LoadingText]())) != 0 {
		t.Error("Loading label should be removed on leaving loading")
	}

	greetings := w.Console().Drain()
	if strings.Join(greetings, "|") != "Hello Pedro!|Hello Sérgio!|Hello Karl!" {
		t.Errorf("Greetings = %v", greetings)
	}
	// three name labels
	if texts(w) != 3 {
		t.Errorf("Text entities = %d, expected 3 labels", texts(w))
	}

	screen := core.NewScreen(80, 24)
	engine.NewRenderer(w).Render(screen)
	if !strings.Contains(screen.String(), "Sérgio") {
		t.Errorf("Rendered world should show the fixed name:\n%s", screen.String())
	}

	for i := 0; i < 5; i++ {
		press(t, s)
	}
	if n := count(ecs.NewFilter0(w.ECS()).With(ecs.C[Spinner]())); n != 1 {
		t.Errorf("Spinner entities = %d, expected world setup to run once", n)
	}
}

func TestPauseOverlayLifecycle(t *testing.T) {
	s := newCrawler(t, nil)
	w := s.World()
	runUntilRunning(t, s)
	labels := texts(w)

	press(t, s, core.ActionPause)
	if s.Modes().Current() != mode.Paused {
		t.Fatalf("Mode after pause = %v, expected paused", s.Modes().Current())
	}
	if overlays(w) != 1 {
		t.Fatalf("Overlay count = %d, expected 1", overlays(w))
	}
	if texts(w) != labels+2 {
		t.Errorf("Overlay should add title and hint texts, got %d texts", texts(w))
	}

	screen := core.NewScreen(80, 24)
	engine.NewRenderer(w).Render(screen)
	if !strings.Contains(screen.String(), "PAUSED") {
		t.Error("Overlay title should be rendered while paused")
	}

	press(t, s, core.ActionPause)
	if s.Modes().Current() != mode.Running {
		t.Fatalf("Mode after second press = %v, expected running", s.Modes().Current())
	}
	if overlays(w) != 0 || texts(w) != labels {
		t.Errorf("Overlay and its texts should be gone, overlays=%d texts=%d", overlays(w), texts(w))
	}

	// a second round trip leaves nothing behind
	press(t, s, core.ActionPause)
	press(t, s, core.ActionPause)
	if overlays(w) != 0 || texts(w) != labels {
		t.Errorf("After two round trips overlays=%d texts=%d", overlays(w), texts(w))
	}
}

func TestPauseParity(t *testing.T) {
	for presses := 1; presses <= 4; presses++ {
		s := newCrawler(t, nil)
		runUntilRunning(t, s)
		for i := 0; i < presses; i++ {
			press(t, s, core.ActionPause)
		}
		want := mode.Running
		if presses%2 == 1 {
			want = mode.Paused
		}
		if s.Modes().Current() != want {
			t.Errorf("After %d presses mode = %v, expected %v", presses, s.Modes().Current(), want)
		}
	}
}

func TestDuplicateOverlayIsContractViolation(t *testing.T) {
	s := newCrawler(t, nil)
	w := s.World()
	runUntilRunning(t, s)
	press(t, s, core.ActionPause)

	extra := ecs.NewMap1[PausedOverlay](w.ECS()).NewEntity(&PausedOverlay{})

	err := s.Tick(dt, core.FrameOf(core.ActionPause))
	if !errors.Is(err, engine.ErrContractViolation) {
		t.Fatalf("Tick() = %v, expected a contract violation", err)
	}
	if s.Modes().Current() != mode.Paused {
		t.Errorf("Mode = %v, a failed exit must leave the store paused", s.Modes().Current())
	}

	// once the stray overlay is gone the pending request goes through
	w.ECS().RemoveEntity(extra)
	press(t, s)
	if s.Modes().Current() != mode.Running || overlays(w) != 0 {
		t.Errorf("Mode = %v with %d overlays after recovery", s.Modes().Current(), overlays(w))
	}
}

func TestExitEligibleInEveryMode(t *testing.T) {
	s := newCrawler(t, nil)
	press(t, s, core.ActionExit)
	if !s.World().ExitRequested() {
		t.Error("Exit should work while loading")
	}

	s = newCrawler(t, nil)
	runUntilRunning(t, s)
	press(t, s, core.ActionExit)
	if !s.World().ExitRequested() {
		t.Error("Exit should work while running")
	}

	s = newCrawler(t, nil)
	runUntilRunning(t, s)
	press(t, s, core.ActionPause)
	press(t, s, core.ActionExit)
	if !s.World().ExitRequested() {
		t.Error("Exit should work while paused")
	}
}

func TestCameraMovesOnlyWhileRunning(t *testing.T) {
	s := newCrawler(t, func(c *config.CrawlerConfig) { c.Camera.Speed = 10 })
	w := s.World()
	runUntilRunning(t, s)

	// one press keeps moving for the hold window: 150ms at 10 cells/s
	press(t, s, core.ActionRight)
	for i := 0; i < 5; i++ {
		press(t, s)
	}
	if got := cameraPos(w); math.Abs(got.X-1.5) > 1e-9 || got.Y != 0 {
		t.Errorf("Camera = %+v, expected (1.5, 0)", got)
	}

	// the pause press and the move land in the same tick; the move still runs
	press(t, s, core.ActionPause, core.ActionUp)
	moved := cameraPos(w)
	if moved.Y >= 0 {
		t.Errorf("Camera should move up in the tick that requested pause, got %+v", moved)
	}

	press(t, s, core.ActionDown)
	press(t, s, core.ActionDown)
	if cameraPos(w) != moved {
		t.Errorf("Camera moved while paused: %+v", cameraPos(w))
	}
}

func TestSpinOnlyWhileRunning(t *testing.T) {
	s := newCrawler(t, func(c *config.CrawlerConfig) { c.Spin.Rate = 1 })
	w := s.World()
	runUntilRunning(t, s)

	rotation := func() float64 {
		var r float64
		query := ecs.NewFilter1[engine.Transform](w.ECS()).With(ecs.C[Spinner]()).Query()
		for query.Next() {
			r = query.Get().Rotation
		}
		return r
	}

	before := rotation()
	press(t, s)
	if got := rotation() - before; math.Abs(got-dt.Seconds()) > 1e-9 {
		t.Errorf("Spinner turned %v, expected %v", got, dt.Seconds())
	}

	press(t, s, core.ActionPause)
	paused := rotation()
	press(t, s)
	press(t, s)
	if rotation() != paused {
		t.Error("Spinner turned while paused")
	}
}

func TestBrokenSpriteFailsLoading(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sprites"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sprites", "bad.yaml"), []byte("name: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := newCrawler(t, func(c *config.CrawlerConfig) { c.Assets.Root = dir })

	deadline := time.Now().Add(2 * time.Second)
	for {
		err := s.Tick(dt, core.NewInputFrame())
		if err != nil {
			var tickErr *schedule.TickError
			if !errors.As(err, &tickErr) || tickErr.Unit != "poll_assets" {
				t.Errorf("Tick() = %v, expected poll_assets failure", err)
			}
			if !errors.Is(err, engine.ErrContractViolation) {
				t.Error("Load failure should be a contract violation")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Broken sprite was never reported")
		}
		time.Sleep(time.Millisecond)
	}
	if s.Modes().Current() != mode.Loading {
		t.Errorf("Mode = %v, expected to stay loading", s.Modes().Current())
	}
}

func TestHotReload(t *testing.T) {
	dir := t.TempDir()
	sprites := filepath.Join(dir, "sprites")
	if err := os.MkdirAll(sprites, 0o755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(sprites, "person.yaml")
	if err := os.WriteFile(file, []byte("name: person\nframes:\n  - [\"o\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := newCrawler(t, func(c *config.CrawlerConfig) {
		c.Assets.Root = dir
		c.Assets.HotReload = true
	})
	runUntilRunning(t, s)

	server := s.World().Assets()
	h, ok := server.Lookup("person")
	if !ok {
		t.Fatal("person sprite should be loaded")
	}

	if err := os.WriteFile(file, []byte("name: person\nframes:\n  - [\"O\"]\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		press(t, s)
		if sp, _ := server.Sprite(h); sp.Frames[0][0] == "O" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Edited sprite was not reloaded")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestRegistered(t *testing.T) {
	d, err := registry.Create("crawler")
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if d.Title() != "Dungeon Crawler" {
		t.Errorf("Title() = %q", d.Title())
	}
}
