package engine

import (
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

// Renderer draws a world into a screen buffer: sprites and world labels
// relative to the camera, then screen-anchored panels and labels on top.
type Renderer struct {
	world   *World
	cameras *ecs.Filter1[Transform]
	sprites *ecs.Filter2[Transform, Sprite]
	texts   *ecs.Filter2[Transform, Text]
	panels  *ecs.Filter2[Transform, Panel]
}

// NewRenderer creates a renderer for w.
func NewRenderer(w *World) *Renderer {
	return &Renderer{
		world:   w,
		cameras: ecs.NewFilter1[Transform](w.ECS()).With(ecs.C[Camera]()),
		sprites: ecs.NewFilter2[Transform, Sprite](w.ECS()),
		texts:   ecs.NewFilter2[Transform, Text](w.ECS()),
		panels:  ecs.NewFilter2[Transform, Panel](w.ECS()),
	}
}

// Render clears dst and draws the world into it.
func (r *Renderer) Render(dst *core.Screen) {
	dst.Clear()

	center := core.V(float64(dst.Width())/2, float64(dst.Height())/2)
	camera := r.cameraPos()
	toScreen := func(p core.Vec2) core.Vec2 {
		return p.Sub(camera).Add(center)
	}

	sprites := r.sprites.Query()
	for sprites.Next() {
		tf, sp := sprites.Get()
		r.drawSprite(dst, toScreen(tf.Pos), tf.Rotation, sp)
	}

	texts := r.texts.Query()
	for texts.Next() {
		tf, txt := texts.Get()
		if txt.Anchor == AnchorWorld {
			drawLabel(dst, toScreen(tf.Pos), txt)
		}
	}

	panels := r.panels.Query()
	for panels.Next() {
		tf, p := panels.Get()
		cx, cy := center.Add(tf.Pos).Round()
		rect := core.NewRect(cx-p.W/2, cy-p.H/2, p.W, p.H)
		dst.DrawRect(rect, ' ')
		dst.DrawBoxColored(rect, p.Color)
	}

	texts = r.texts.Query()
	for texts.Next() {
		tf, txt := texts.Get()
		if txt.Anchor == AnchorScreen {
			drawLabel(dst, center.Add(tf.Pos), txt)
		}
	}
}

func (r *Renderer) cameraPos() core.Vec2 {
	var pos core.Vec2
	query := r.cameras.Query()
	for query.Next() {
		// first camera wins; extra cameras are ignored when drawing
		pos = query.Get().Pos
	}
	return pos
}

func (r *Renderer) drawSprite(dst *core.Screen, at core.Vec2, rotation float64, sp *Sprite) {
	if server := r.world.Assets(); server != nil {
		if asset, ok := server.Sprite(sp.Handle); ok {
			color := sp.Color
			if color == core.ColorDefault {
				color, _ = core.ParseColor(asset.Color)
			}
			frame := asset.Frame(core.WrapAngle(rotation) / (2 * math.Pi))
			w, h := asset.Size()
			x0, y0 := at.Round()
			x0 -= w / 2
			y0 -= h / 2
			for dy, row := range frame {
				dx := 0
				for _, ch := range row {
					if ch != ' ' {
						dst.SetColored(x0+dx, y0+dy, ch, color)
					}
					dx++
				}
			}
			return
		}
	}

	if sp.Glyph != 0 {
		x, y := at.Round()
		dst.SetColored(x, y, sp.Glyph, sp.Color)
	}
}

func drawLabel(dst *core.Screen, at core.Vec2, txt *Text) {
	x, y := at.Round()
	dst.DrawTextColored(x-core.RuneLen(txt.Value)/2, y, txt.Value, txt.Color)
}
