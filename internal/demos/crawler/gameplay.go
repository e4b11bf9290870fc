package crawler

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/engine"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/schedule"
)

func pressedDirection(in *engine.Input) core.Vec2 {
	var dir core.Vec2
	if in.JustPressed(core.ActionUp) {
		dir.Y--
	}
	if in.JustPressed(core.ActionDown) {
		dir.Y++
	}
	if in.JustPressed(core.ActionLeft) {
		dir.X--
	}
	if in.JustPressed(core.ActionRight) {
		dir.X++
	}
	return dir
}

func (d *Demo) moveCamera(ctx *schedule.Context) error {
	w := ctx.World
	cam, err := engine.Single(d.cameras, "camera")
	if err != nil {
		return err
	}
	tf, rig := ecs.NewMap2[engine.Transform, CameraRig](w.ECS()).Get(cam)

	if dir := pressedDirection(w.Input()); dir != (core.Vec2{}) {
		rig.Dir = dir.Normalize()
		rig.Held = holdWindow
	}
	if rig.Held <= 0 {
		return nil
	}

	step := w.Time().Delta
	if step > rig.Held {
		step = rig.Held
	}
	tf.Pos = tf.Pos.Add(rig.Dir.Scale(rig.Speed * step.Seconds()))
	rig.Held -= w.Time().Delta
	return nil
}

func spin(ctx *schedule.Context) error {
	dt := ctx.World.Time().DeltaSeconds()
	filter := ecs.NewFilter2[engine.Transform, Spinner](ctx.World.ECS())
	query := filter.Query()
	for query.Next() {
		tf, s := query.Get()
		tf.Rotation = core.WrapAngle(tf.Rotation + s.Rate*dt)
	}
	return nil
}
