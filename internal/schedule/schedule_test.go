package schedule

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
)

const dt = 16 * time.Millisecond

func record(calls *[]string, label string) Unit {
	return Named(label, func(*Context) error {
		*calls = append(*calls, label)
		return nil
	})
}

func TestStartupOrder(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *Scheduler, calls *[]string)
		want  string
	}{
		{
			name: "registration order",
			build: func(s *Scheduler, calls *[]string) {
				s.AddStartup(record(calls, "a"))
				s.AddStartup(record(calls, "b"))
			},
			want: "a b",
		},
		{
			name: "after constraint",
			build: func(s *Scheduler, calls *[]string) {
				s.AddStartup(record(calls, "greet"), "add_people")
				s.AddStartup(record(calls, "add_people"))
				s.AddStartup(record(calls, "hello"))
			},
			want: "add_people greet hello",
		},
		{
			name: "chain",
			build: func(s *Scheduler, calls *[]string) {
				s.AddStartup(record(calls, "camera"))
				s.AddStartupChain(record(calls, "add_people"), record(calls, "fix_names"), record(calls, "greet"))
			},
			want: "camera add_people fix_names greet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			s := New(engine.NewWorld())
			tt.build(s, &calls)
			if err := s.Start(); err != nil {
				t.Fatalf("Start() failed: %v", err)
			}
			if got := strings.Join(calls, " "); got != tt.want {
				t.Errorf("Startup order = %q, expected %q", got, tt.want)
			}
		})
	}
}

func TestStartupOrderErrors(t *testing.T) {
	var calls []string

	s := New(engine.NewWorld())
	s.AddStartup(record(&calls, "a"), "missing")
	if err := s.Start(); err == nil || !strings.Contains(err.Error(), "missing") {
		t.Errorf("Start() with unknown dependency = %v", err)
	}

	s = New(engine.NewWorld())
	s.AddStartup(record(&calls, "a"), "b")
	s.AddStartup(record(&calls, "b"), "a")
	if err := s.Start(); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("Start() with cycle = %v", err)
	}
	if len(calls) != 0 {
		t.Errorf("No startup system should run when ordering fails, ran %v", calls)
	}
}

func TestTickRunsEligibleGroupsThenCommits(t *testing.T) {
	var calls []string
	s := New(engine.NewWorld())
	s.AddGroup("loading", mode.In(mode.Loading), record(&calls, "poll"), Named("finish", func(ctx *Context) error {
		calls = append(calls, "finish")
		return ctx.Modes.Request(mode.Running)
	}))
	s.AddGroup("running", mode.In(mode.Running), record(&calls, "move"))
	s.AddSystems("always", record(&calls, "exit"))

	if err := s.Tick(dt, core.NewInputFrame()); !errors.Is(err, ErrNotStarted) {
		t.Errorf("Tick() before Start = %v, expected ErrNotStarted", err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	if err := s.Tick(dt, core.NewInputFrame()); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	// the running group does not start in the tick that requested running
	if got := strings.Join(calls, " "); got != "poll finish exit" {
		t.Errorf("First tick ran %q", got)
	}
	if s.Modes().Current() != mode.Running {
		t.Fatalf("Mode after first tick = %v, expected running", s.Modes().Current())
	}

	calls = nil
	if err := s.Tick(dt, core.NewInputFrame()); err != nil {
		t.Fatalf("Tick() failed: %v", err)
	}
	if got := strings.Join(calls, " "); got != "move exit" {
		t.Errorf("Second tick ran %q", got)
	}
	if s.World().Tick() != 2 {
		t.Errorf("World tick = %d, expected 2", s.World().Tick())
	}
}

func TestFailingUnitAbortsTick(t *testing.T) {
	var calls []string
	fail := true
	s := New(engine.NewWorld())
	s.AddSystems("first",
		Named("request", func(ctx *Context) error { return ctx.Modes.Request(mode.Running) }),
		Named("check", func(*Context) error {
			if fail {
				return engine.Violation("expected exactly one camera, found 0")
			}
			return nil
		}),
		record(&calls, "after-check"),
	)
	s.AddSystems("second", record(&calls, "second"))
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	err := s.Tick(dt, core.NewInputFrame())
	var tickErr *TickError
	if !errors.As(err, &tickErr) {
		t.Fatalf("Tick() = %v, expected *TickError", err)
	}
	if tickErr.Group != "first" || tickErr.Unit != "check" || tickErr.Tick != 0 {
		t.Errorf("TickError = %+v", tickErr)
	}
	if !errors.Is(err, engine.ErrContractViolation) {
		t.Error("TickError should unwrap to the contract violation")
	}
	if len(calls) != 0 {
		t.Errorf("Units after the failure ran: %v", calls)
	}
	if s.Modes().Current() != mode.Loading {
		t.Error("An aborted tick must not commit")
	}

	fail = false
	if err := s.Tick(dt, core.NewInputFrame()); err != nil {
		t.Fatalf("Next tick should recover, got %v", err)
	}
	if s.Modes().Current() != mode.Running {
		t.Errorf("Mode after recovery = %v, expected running", s.Modes().Current())
	}
}

func TestAbortedTickDropsPendingRequest(t *testing.T) {
	fail := true
	s := New(engine.NewWorld())
	s.AddSystems("first",
		Named("request", func(ctx *Context) error {
			if fail {
				return ctx.Modes.Request(mode.Running)
			}
			return nil
		}),
		Named("check", func(*Context) error {
			if fail {
				return errors.New("bad state")
			}
			return nil
		}),
	)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	if err := s.Tick(dt, core.NewInputFrame()); err == nil {
		t.Fatal("Tick() should fail")
	}
	if _, ok := s.Modes().Pending(); ok {
		t.Error("Pending request should be dropped by the failed tick")
	}

	fail = false
	if err := s.Tick(dt, core.NewInputFrame()); err != nil {
		t.Fatalf("Tick() = %v, expected nil", err)
	}
	if s.Modes().Current() != mode.Loading {
		t.Errorf("Current() = %v, expected loading", s.Modes().Current())
	}
}

func TestCommitErrorIsTickError(t *testing.T) {
	s := New(engine.NewWorld())
	s.AddSystems("request", Named("request", func(ctx *Context) error { return ctx.Modes.Request(mode.Running) }))
	s.OnExit(mode.Loading, "spawn", func(*engine.World) error { return errors.New("no camera sprite") })
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	var tickErr *TickError
	if err := s.Tick(dt, core.NewInputFrame()); !errors.As(err, &tickErr) || tickErr.Group != "commit" {
		t.Errorf("Tick() = %v, expected commit TickError", err)
	}
}

func TestStartEntersInitialMode(t *testing.T) {
	var calls []string
	s := New(engine.NewWorld())
	s.AddStartup(record(&calls, "setup"))
	s.OnEnter(mode.Loading, "load", func(*engine.World) error {
		calls = append(calls, "enter loading")
		return nil
	})
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(calls, " "); got != "setup enter loading" {
		t.Errorf("Start ran %q", got)
	}
	if err := s.Start(); err == nil {
		t.Error("Second Start() should fail")
	}
}

func TestRegistrationAfterStartPanics(t *testing.T) {
	s := New(engine.NewWorld())
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		fn   func()
	}{
		{"group", func() { s.AddSystems("late") }},
		{"startup", func() { s.AddStartup(Named("late", func(*Context) error { return nil })) }},
		{"hook", func() { s.OnEnter(mode.Paused, "late", func(*engine.World) error { return nil }) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("Registering a %s after Start should panic", tt.name)
				}
			}()
			tt.fn()
		})
	}
}

func TestPlugins(t *testing.T) {
	var calls []string
	plugin := PluginFunc(func(s *Scheduler) {
		s.AddStartup(record(&calls, "plugin-startup"))
		s.AddSystems("plugin", record(&calls, "plugin-update"))
	})

	s := New(engine.NewWorld()).AddPlugins(plugin)
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Tick(dt, core.NewInputFrame()); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(calls, " "); got != "plugin-startup plugin-update" {
		t.Errorf("Plugin systems ran %q", got)
	}
	if groups := s.Groups(); len(groups) != 1 || groups[0].Name != "plugin" {
		t.Errorf("Groups() = %+v", groups)
	}
}

func TestDuplicateGroupPanics(t *testing.T) {
	s := New(engine.NewWorld())
	s.AddSystems("dup")
	defer func() {
		if recover() == nil {
			t.Error("Duplicate group names should panic")
		}
	}()
	s.AddSystems("dup")
}
