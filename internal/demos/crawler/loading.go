package crawler

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/assets"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/demos"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func (d *Demo) spawnCamera(ctx *schedule.Context) error {
	w := ctx.World
	cameras := ecs.NewMap3[engine.Transform, engine.Camera, CameraRig](w.ECS())
	cam := cameras.NewEntity(&engine.Transform{}, &engine.Camera{}, &CameraRig{Speed: d.settings.Camera.Speed})
	ecs.NewMap1[engine.Sprite](w.ECS()).Add(cam, &engine.Sprite{Glyph: '+', Color: core.ColorGray})
	return nil
}

func spawnLoadingText(ctx *schedule.Context) error {
	texts := ecs.NewMap2[engine.Transform, engine.Text](ctx.World.ECS())
	e := texts.NewEntity(&engine.Transform{}, &engine.Text{Value: "Loading...", Color: core.ColorGray, Anchor: engine.AnchorScreen})
	ecs.NewMap1[LoadingText](ctx.World.ECS()).Add(e, &LoadingText{})
	return nil
}

// loadAssets starts the sprite batch. Completion is picked up by pollAssets.
func (d *Demo) loadAssets(w *engine.World) error {
	server := w.Assets()
	if server == nil {
		return engine.Violation("no asset server attached")
	}
	batch, err := server.LoadFolder(d.settings.Assets.Patterns...)
	if err != nil {
		return err
	}
	d.batch = batch
	return nil
}

func (d *Demo) pollAssets(ctx *schedule.Context) error {
	if d.batch == nil {
		return engine.Violation("asset batch was never started")
	}

	done, total := d.batch.Progress()
	query := d.loading.Query()
	for query.Next() {
		query.Get().Value = fmt.Sprintf("Loading sprites %d/%d", done, total)
	}

	if !d.batch.Done() {
		return nil
	}
	if err := d.batch.Err(); err != nil {
		return engine.Violation("sprites failed to load: %v", err)
	}
	ctx.Logger.Info("sprites loaded", "count", total)
	return ctx.Modes.Request(mode.Running)
}

// setupWorld runs once, on leaving Loading.
func (d *Demo) setupWorld(w *engine.World) error {
	var stale []ecs.Entity
	query := d.loading.Query()
	for query.Next() {
		stale = append(stale, query.Entity())
	}
	for _, e := range stale {
		w.DespawnRecursive(e)
	}

	server := w.Assets()
	handle := func(name string) assets.Handle {
		h, _ := server.Lookup(name)
		return h
	}

	cam, err := engine.Single(d.cameras, "camera")
	if err != nil {
		return err
	}
	ecs.NewMap1[engine.Sprite](w.ECS()).Get(cam).Handle = handle("camera")

	people := demos.SpawnPeople(w, d.settings.People)
	demos.FixSergio(w)
	demos.Greet(w)

	bodies := ecs.NewMap2[engine.Transform, engine.Sprite](w.ECS())
	labels := ecs.NewMap3[engine.Transform, engine.Text, engine.ChildOf](w.ECS())
	names := ecs.NewMap1[demos.Name](w.ECS())
	for i, e := range people {
		pos := core.V(float64(i*12-(len(people)-1)*6), 0)
		name := names.Get(e).Value
		bodies.Add(e, &engine.Transform{Pos: pos}, &engine.Sprite{Handle: handle("person"), Glyph: '@'})
		labels.NewEntity(
			&engine.Transform{Pos: pos.Add(core.V(0, 2))},
			&engine.Text{Value: name, Color: core.ColorWhite, Anchor: engine.AnchorWorld},
			&engine.ChildOf{Parent: e},
		)
	}

	spinners := ecs.NewMap3[engine.Transform, engine.Sprite, Spinner](w.ECS())
	spinners.NewEntity(
		&engine.Transform{Pos: core.V(0, -6)},
		&engine.Sprite{Handle: handle("spinner"), Glyph: '*'},
		&Spinner{Rate: d.settings.Spin.Rate},
	)

	walls := ecs.NewMap2[engine.Transform, engine.Sprite](w.ECS())
	for x := -30; x <= 30; x += 10 {
		walls.NewEntity(&engine.Transform{Pos: core.V(float64(x), 5)}, &engine.Sprite{Handle: handle("wall"), Glyph: '#'})
	}
	return nil
}

func (d *Demo) reloadSprites(ctx *schedule.Context) error {
	server := ctx.World.Assets()
	for _, p := range d.watcher.Poll() {
		if _, err := server.Reload(p); err != nil {
			ctx.Logger.Warn("sprite reload failed", "path", p, "error", err)
		}
	}
	return nil
}
