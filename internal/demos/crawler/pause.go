package crawler

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/mode"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

// TogglePause requests Paused from Running and Running from Paused when the
// pause key was pressed this tick.
func TogglePause(ctx *schedule.Context) error {
	if !ctx.World.Input().JustPressed(core.ActionPause) {
		return nil
	}
	switch ctx.Modes.Current() {
	case mode.Running:
		return ctx.Modes.Request(mode.Paused)
	case mode.Paused:
		return ctx.Modes.Request(mode.Running)
	}
	return nil
}

func (d *Demo) spawnOverlay(w *engine.World) error {
	title, hint := d.settings.Overlay.Title, d.settings.Overlay.Hint
	width := core.Max(core.RuneLen(title), core.RuneLen(hint)) + 6

	panels := ecs.NewMap3[engine.Transform, engine.Panel, PausedOverlay](w.ECS())
	overlay := panels.NewEntity(
		&engine.Transform{},
		&engine.Panel{W: width, H: 5, Color: core.ColorBrightWhite},
		&PausedOverlay{},
	)

	texts := ecs.NewMap3[engine.Transform, engine.Text, engine.ChildOf](w.ECS())
	texts.NewEntity(
		&engine.Transform{Pos: core.V(0, -1)},
		&engine.Text{Value: title, Color: core.ColorBrightYellow, Anchor: engine.AnchorScreen},
		&engine.ChildOf{Parent: overlay},
	)
	if hint != "" {
		texts.NewEntity(
			&engine.Transform{Pos: core.V(0, 1)},
			&engine.Text{Value: hint, Color: core.ColorGray, Anchor: engine.AnchorScreen},
			&engine.ChildOf{Parent: overlay},
		)
	}
	return nil
}

// despawnOverlay tolerates a missing overlay; a second one means enter and
// exit got out of step.
func (d *Demo) despawnOverlay(w *engine.World) error {
	overlay, ok, err := engine.AtMostOne(d.overlays, "paused overlay")
	if err != nil {
		return err
	}
	if ok {
		w.DespawnRecursive(overlay)
	}
	return nil
}
