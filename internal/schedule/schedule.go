// Package schedule drives a demo: startup systems once, then per tick every
// eligible behavior group in registration order followed by a single mode
// commit.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
)

// ErrNotStarted is returned by Tick before Start succeeded.
var ErrNotStarted = errors.New("schedule: not started")

// Context is what a system receives: the world and the mode store, nothing
// pulled in implicitly.
type Context struct {
	World  *engine.World
	Modes  *mode.Store
	Logger *log.Logger
}

// System is one runnable unit.
type System func(ctx *Context) error

// Unit is a named system.
type Unit struct {
	Name string
	Run  System
}

// Named pairs a system with the name used in diagnostics.
func Named(name string, run System) Unit {
	return Unit{Name: name, Run: run}
}

// Group is a behavior group: units sharing one mode predicate.
type Group struct {
	Name      string
	Predicate mode.Predicate
	Units     []Unit
}

// Plugin registers a bundle of systems and bindings.
type Plugin interface {
	Build(s *Scheduler)
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(s *Scheduler)

// Build calls f(s).
func (f PluginFunc) Build(s *Scheduler) {
	f(s)
}

// TickError reports a failed unit or commit. The tick that produced it did
// not commit its pending transition.
type TickError struct {
	Tick  int64
	Group string // "startup" or "commit" outside behavior groups
	Unit  string
	Err   error
}

func (e *TickError) Error() string {
	if e.Unit == "" {
		return fmt.Sprintf("tick %d: %s: %v", e.Tick, e.Group, e.Err)
	}
	return fmt.Sprintf("tick %d: %s/%s: %v", e.Tick, e.Group, e.Unit, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

// Scheduler owns the world, the mode store and the registered systems.
type Scheduler struct {
	ctx     Context
	startup []startupUnit
	groups  []*Group
	names   map[string]bool
	started bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger shared with systems and the mode store.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		s.ctx.Logger = l
	}
}

// New creates a scheduler over w.
func New(w *engine.World, opts ...Option) *Scheduler {
	s := &Scheduler{
		ctx:   Context{World: w, Logger: log.Default()},
		names: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ctx.Modes = mode.NewStore(mode.WithLogger(s.ctx.Logger))
	return s
}

// World returns the scheduled world.
func (s *Scheduler) World() *engine.World {
	return s.ctx.World
}

// Modes returns the mode store.
func (s *Scheduler) Modes() *mode.Store {
	return s.ctx.Modes
}

// Logger returns the shared logger.
func (s *Scheduler) Logger() *log.Logger {
	return s.ctx.Logger
}

// Started reports whether Start succeeded.
func (s *Scheduler) Started() bool {
	return s.started
}

// Groups returns the registered behavior groups in run order.
func (s *Scheduler) Groups() []Group {
	out := make([]Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = *g
	}
	return out
}

func (s *Scheduler) mustBeOpen(what string) {
	if s.started {
		panic(fmt.Sprintf("schedule: %s registered after start", what))
	}
}

// AddPlugins builds each plugin in order.
func (s *Scheduler) AddPlugins(plugins ...Plugin) *Scheduler {
	for _, p := range plugins {
		p.Build(s)
	}
	return s
}

// AddGroup registers a behavior group. Groups run in registration order.
func (s *Scheduler) AddGroup(name string, p mode.Predicate, units ...Unit) *Scheduler {
	s.mustBeOpen("group " + name)
	if s.names["group:"+name] {
		panic(fmt.Sprintf("schedule: duplicate group %q", name))
	}
	s.names["group:"+name] = true
	s.groups = append(s.groups, &Group{Name: name, Predicate: p, Units: units})
	return s
}

// AddSystems registers units that run every tick regardless of mode.
func (s *Scheduler) AddSystems(name string, units ...Unit) *Scheduler {
	return s.AddGroup(name, mode.Always, units...)
}

// OnEnter binds a hook to entering m.
func (s *Scheduler) OnEnter(m mode.Mode, name string, hook mode.Hook) *Scheduler {
	s.mustBeOpen("on-enter hook " + name)
	s.ctx.Modes.OnEnter(m, name, hook)
	return s
}

// OnExit binds a hook to leaving m.
func (s *Scheduler) OnExit(m mode.Mode, name string, hook mode.Hook) *Scheduler {
	s.mustBeOpen("on-exit hook " + name)
	s.ctx.Modes.OnExit(m, name, hook)
	return s
}

// Start orders and runs the startup systems, seals registration and enters
// the initial mode.
func (s *Scheduler) Start() error {
	if s.started {
		return errors.New("schedule: already started")
	}
	order, err := s.startupOrder()
	if err != nil {
		return err
	}

	s.started = true
	s.ctx.Modes.Seal()

	for _, u := range order {
		s.ctx.Logger.Debug("startup system", "name", u.Name)
		if err := u.Run(&s.ctx); err != nil {
			return &TickError{Group: "startup", Unit: u.Name, Err: err}
		}
	}
	if err := s.ctx.Modes.Enter(s.ctx.World); err != nil {
		return &TickError{Group: "startup", Unit: "enter " + s.ctx.Modes.Current().String(), Err: err}
	}
	return nil
}

// Tick runs one scheduling pass: every eligible group, then the commit.
// A failing unit aborts the pass before the commit and drops any pending
// mode request.
func (s *Scheduler) Tick(dt time.Duration, in core.InputFrame) error {
	if !s.started {
		return ErrNotStarted
	}

	w := s.ctx.World
	w.BeginTick(dt, in)
	defer w.EndTick()

	for _, g := range s.groups {
		if !s.ctx.Modes.Eligible(g.Predicate) {
			continue
		}
		for _, u := range g.Units {
			if err := u.Run(&s.ctx); err != nil {
				if s.ctx.Modes.Discard() {
					s.ctx.Logger.Debug("pending transition dropped", "group", g.Name, "unit", u.Name)
				}
				return &TickError{Tick: w.Tick(), Group: g.Name, Unit: u.Name, Err: err}
			}
		}
	}

	if err := s.ctx.Modes.Commit(w); err != nil {
		return &TickError{Tick: w.Tick(), Group: "commit", Err: err}
	}
	return nil
}
