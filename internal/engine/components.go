package engine

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/assets"
	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

// Transform places an entity in world space. For screen-anchored text and
// panels, Pos is an offset from the screen center instead.
type Transform struct {
	Pos      core.Vec2
	Rotation float64 // radians, counter-clockwise
}

// Sprite draws a loaded glyph-art asset at the entity transform.
// Glyph is drawn while the asset is missing or still loading.
type Sprite struct {
	Handle assets.Handle
	Glyph  rune
	Color  core.Color
}

// Anchor selects the coordinate space of text and panels.
type Anchor int

const (
	AnchorWorld  Anchor = iota // follows the camera
	AnchorScreen               // offset from the screen center
)

// Text is a label drawn centered on its transform.
type Text struct {
	Value  string
	Color  core.Color
	Anchor Anchor
}

// Panel is a filled box drawn centered on the screen plus its transform offset.
type Panel struct {
	W, H  int
	Color core.Color
}

// Camera marks the entity whose transform is the view center.
type Camera struct{}

// ChildOf parents an entity to another; despawning the parent recursively
// removes the child.
type ChildOf struct {
	Parent ecs.Entity
}
