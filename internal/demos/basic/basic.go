// Package basic is the smallest demo: an update system printing every tick
// and a startup chain that spawns and greets people.
package basic

import (
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/registry"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func init() {
	registry.Register("basic", func() registry.Demo { return &Demo{} })
}

// Demo implements registry.Demo.
type Demo struct{}

// ID returns "basic".
func (d *Demo) ID() string { return "basic" }

// Title returns the display name.
func (d *Demo) Title() string { return "Basic Project" }

// Description returns the listing summary.
func (d *Demo) Description() string {
	return "hello world every tick, people greeted once at startup"
}

// Build registers the systems. fix_sergio_name only runs after add_people,
// so it is not guaranteed to run before greet_people: the greeting may
// still use the misspelled name.
func (d *Demo) Build(s *schedule.Scheduler, env registry.Env) error {
	s.AddSystems("hello_world", schedule.Named("hello_world", demos.HelloWorld))
	s.AddStartupChain(
		schedule.Named("add_people", demos.AddPeople(env.Settings.People)),
		schedule.Named("greet_people", demos.GreetPeople),
	)
	s.AddStartup(schedule.Named("fix_sergio_name", demos.FixSergioName), "add_people")
	return nil
}
