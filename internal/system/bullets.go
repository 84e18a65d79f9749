package system

import (
	"errors"
	"time"

	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/scene"
	"go.uber.org/zap"
)

// BulletSystem advances every active batch. Phase 2 (Update).
type BulletSystem struct {
	factory *factory.Factory
	log     *zap.Logger
	ticks   uint64
}

func NewBulletSystem(f *factory.Factory, log *zap.Logger) *BulletSystem {
	return &BulletSystem{factory: f, log: log}
}

func (s *BulletSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *BulletSystem) Update(dt time.Duration) {
	if err := s.factory.Tick(dt.Seconds()); err != nil {
		if errors.Is(err, factory.ErrBusy) {
			s.log.Debug("工廠忙碌，本 tick 略過")
			return
		}
		s.log.Error("子彈更新失敗", zap.Error(err))
		return
	}
	s.ticks++
}

// Ticks is the number of completed bullet ticks.
func (s *BulletSystem) Ticks() uint64 { return s.ticks }

// SceneSystem moves scene nodes by their velocity. Phase 2 (Update).
type SceneSystem struct {
	scene *scene.Scene
}

func NewSceneSystem(sc *scene.Scene) *SceneSystem {
	return &SceneSystem{scene: sc}
}

func (s *SceneSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SceneSystem) Update(dt time.Duration) {
	s.scene.Step(dt.Seconds())
}
