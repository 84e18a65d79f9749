package system

import (
	"time"

	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/scene"
)

// CleanupSystem flushes the scene's deferred destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	scene *scene.Scene
}

func NewCleanupSystem(sc *scene.Scene) *CleanupSystem {
	return &CleanupSystem{scene: sc}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.scene.Flush()
}
