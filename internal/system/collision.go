package system

import (
	"time"

	"github.com/l1jgo/bullets/internal/collision"
	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/scene"
)

// CollisionSystem publishes scene bodies to the grid and runs the broad
// phase. Overlaps land in each batch's relay and are replayed on the batch's
// next update. Phase 3 (PostUpdate).
type CollisionSystem struct {
	grid  *collision.Grid
	scene *scene.Scene
}

func NewCollisionSystem(grid *collision.Grid, sc *scene.Scene) *CollisionSystem {
	return &CollisionSystem{grid: grid, scene: sc}
}

func (s *CollisionSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *CollisionSystem) Update(_ time.Duration) {
	if s.scene != nil {
		s.scene.SyncTargets()
	}
	s.grid.Step()
}
