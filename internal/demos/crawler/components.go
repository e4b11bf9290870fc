package crawler

import (
	"time"

	"github.com/onelikeandidie/meetballs-sessions-bevy-dungeon-crawler/internal/core"
)

// LoadingText marks the progress label shown while assets load.
type LoadingText struct{}

// PausedOverlay marks the root of the paused overlay. Its texts are children.
type PausedOverlay struct{}

// Spinner rotates its entity while running.
type Spinner struct {
	Rate float64 // radians per second
}

// CameraRig drives the camera from movement keys. Terminals only report key
// presses and repeats, so a press keeps the camera moving for a short hold.
type CameraRig struct {
	Speed float64 // cells per second
	Dir   core.Vec2
	Held  time.Duration
}

// holdWindow covers the gap between terminal key repeats.
const holdWindow = 150 * time.Millisecond
