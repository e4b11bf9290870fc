// Package engine is the ECS collaborator the demos run on. It wraps an ark
// world with the resources every tick needs (elapsed time, input edges, a
// console, the exit signal) and the shared components the renderer draws.
package engine

import (
	"errors"
	"io"
	"time"

	"github.com/mlange-42/ark-tools/resource"
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/assets"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

// Time is the per-tick elapsed time resource.
type Time struct {
	Delta   time.Duration // Time covered by the current tick
	Elapsed time.Duration // Sum of all deltas so far
}

// DeltaSeconds returns the current tick length in seconds.
func (t *Time) DeltaSeconds() float64 {
	return t.Delta.Seconds()
}

// Input is the per-tick "newly pressed" signal set.
type Input struct {
	frame core.InputFrame
}

// JustPressed reports whether the action went down this tick.
func (in *Input) JustPressed(a core.Action) bool {
	return in.frame.JustPressed(a)
}

// World owns the ark ECS world and the engine resources.
type World struct {
	ecs ecs.World

	time    Time
	input   Input
	console *Console
	tick    resource.Tick
	exit    resource.Termination
	assets  *assets.Server

	children *ecs.Filter1[ChildOf]
	closers  []io.Closer
}

// NewWorld creates an empty world with all engine resources registered.
func NewWorld() *World {
	w := &World{
		ecs:     ecs.NewWorld(),
		console: NewConsole(defaultConsoleLines),
		input:   Input{frame: core.NewInputFrame()},
	}
	ecs.AddResource(&w.ecs, &w.time)
	ecs.AddResource(&w.ecs, &w.input)
	ecs.AddResource(&w.ecs, w.console)
	ecs.AddResource(&w.ecs, &w.tick)
	ecs.AddResource(&w.ecs, &w.exit)

	w.children = ecs.NewFilter1[ChildOf](&w.ecs)
	return w
}

// ECS exposes the underlying ark world for maps, filters and queries.
func (w *World) ECS() *ecs.World {
	return &w.ecs
}

// Time returns the elapsed time resource.
func (w *World) Time() *Time {
	return &w.time
}

// Input returns the input edge resource for the current tick.
func (w *World) Input() *Input {
	return &w.input
}

// Console returns the text output buffer.
func (w *World) Console() *Console {
	return w.console
}

// Tick returns the number of completed ticks.
func (w *World) Tick() int64 {
	return w.tick.Tick
}

// SetAssets attaches the asset server used by sprites. The world closes it.
func (w *World) SetAssets(s *assets.Server) {
	w.assets = s
	w.AddCloser(closerFunc(func() error {
		s.Close()
		return nil
	}))
}

// AddCloser registers c to be closed with the world.
func (w *World) AddCloser(c io.Closer) {
	w.closers = append(w.closers, c)
}

// Close releases everything registered with AddCloser, newest first.
func (w *World) Close() error {
	var errs []error
	for i := len(w.closers) - 1; i >= 0; i-- {
		if err := w.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	w.closers = nil
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error {
	return f()
}

// Assets returns the attached asset server, or nil.
func (w *World) Assets() *assets.Server {
	return w.assets
}

// BeginTick installs the inputs for the next tick.
func (w *World) BeginTick(dt time.Duration, in core.InputFrame) {
	w.time.Delta = dt
	w.time.Elapsed += dt
	w.input.frame = in.Clone()
}

// EndTick advances the tick counter and drops this tick's input edges.
func (w *World) EndTick() {
	w.tick.Tick++
	w.input.frame.Clear()
}

// RequestExit raises the process-exit signal.
func (w *World) RequestExit() {
	w.exit.Terminate = true
}

// ExitRequested reports whether a system asked to exit.
func (w *World) ExitRequested() bool {
	return w.exit.Terminate
}

// Alive reports whether an entity still exists.
func (w *World) Alive(e ecs.Entity) bool {
	return w.ecs.Alive(e)
}

// Children returns the direct children of parent.
func (w *World) Children(parent ecs.Entity) []ecs.Entity {
	var out []ecs.Entity
	query := w.children.Query()
	for query.Next() {
		if query.Get().Parent == parent {
			out = append(out, query.Entity())
		}
	}
	return out
}

// DespawnRecursive removes an entity and everything parented to it.
// Children are collected before removal since the world is locked while a
// query is open.
func (w *World) DespawnRecursive(e ecs.Entity) int {
	if !w.ecs.Alive(e) {
		return 0
	}
	removed := 0
	for _, child := range w.Children(e) {
		removed += w.DespawnRecursive(child)
	}
	w.ecs.RemoveEntity(e)
	return removed + 1
}
