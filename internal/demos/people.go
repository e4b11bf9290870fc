// Package demos holds the systems shared by the demos: the people that get
// spawned, renamed and greeted, and the exit key.
package demos

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

// Person marks an entity as a person.
type Person struct{}

// Name is a display name.
type Name struct {
	Value string
}

// DefaultPeople are spawned when the settings name nobody.
var DefaultPeople = []string{"Pedro", "Sergio", "Karl"}

// HelloWorld prints a line every tick.
func HelloWorld(ctx *schedule.Context) error {
	ctx.World.Console().Println("Hello world!")
	return nil
}

// SpawnPeople spawns one Person with a Name per entry and returns the
// entities in spawn order.
func SpawnPeople(w *engine.World, names []string) []ecs.Entity {
	if len(names) == 0 {
		names = DefaultPeople
	}
	people := ecs.NewMap2[Person, Name](w.ECS())
	out := make([]ecs.Entity, 0, len(names))
	for _, n := range names {
		out = append(out, people.NewEntity(&Person{}, &Name{Value: n}))
	}
	return out
}

// FixSergio corrects the first misspelled "Sergio".
func FixSergio(w *engine.World) {
	filter := ecs.NewFilter1[Name](w.ECS()).With(ecs.C[Person]())
	query := filter.Query()
	for query.Next() {
		name := query.Get()
		if name.Value == "Sergio" {
			name.Value = "Sérgio"
			query.Close()
			break
		}
	}
}

// Greet prints a greeting for every named person.
func Greet(w *engine.World) {
	filter := ecs.NewFilter1[Name](w.ECS()).With(ecs.C[Person]())
	query := filter.Query()
	for query.Next() {
		w.Console().Printf("Hello %s!", query.Get().Value)
	}
}

// AddPeople is the startup system form of SpawnPeople.
func AddPeople(names []string) schedule.System {
	return func(ctx *schedule.Context) error {
		SpawnPeople(ctx.World, names)
		return nil
	}
}

// FixSergioName is the system form of FixSergio.
func FixSergioName(ctx *schedule.Context) error {
	FixSergio(ctx.World)
	return nil
}

// GreetPeople is the system form of Greet.
func GreetPeople(ctx *schedule.Context) error {
	Greet(ctx.World)
	return nil
}

// ExitOnEscape raises the exit signal when the exit key was pressed.
func ExitOnEscape(ctx *schedule.Context) error {
	if ctx.World.Input().JustPressed(core.ActionExit) {
		ctx.Logger.Info("exit requested")
		ctx.World.RequestExit()
	}
	return nil
}

// SimpleGamePlugin spawns, renames and greets the people once, and exits on
// the exit key.
type SimpleGamePlugin struct {
	Names []string
}

// Build implements schedule.Plugin.
func (p SimpleGamePlugin) Build(s *schedule.Scheduler) {
	s.AddStartupChain(
		schedule.Named("add_people", AddPeople(p.Names)),
		schedule.Named("fix_sergio_name", FixSergioName),
		schedule.Named("greet_people", GreetPeople),
	)
	s.AddSystems("exit_on_escape", schedule.Named("exit_on_escape", ExitOnEscape))
}
