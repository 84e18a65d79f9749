package system

import (
	"math/rand/v2"
	"time"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/core/ecs"
	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/data"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

// Emitter fires a preset at a fixed interval.
type Emitter struct {
	Preset   string
	Origin   geom.Vec2
	Aim      float64 // radians
	Spin     float64 // radians added to Aim after every shot
	Interval time.Duration
	// Target, when set, becomes the shared homing target of every batch.
	Target ecs.EntityID

	elapsed time.Duration
	failed  bool
}

// EmitterSystem spawns batches from presets. Phase 0 (Input).
type EmitterSystem struct {
	factory  *factory.Factory
	presets  *data.PresetTable
	curves   data.CurveSource
	rng      *rand.Rand
	emitters []*Emitter
	fired    int
	pooling  bool
	log      *zap.Logger
}

func NewEmitterSystem(f *factory.Factory, presets *data.PresetTable, curves data.CurveSource, rng *rand.Rand, log *zap.Logger) *EmitterSystem {
	return &EmitterSystem{
		factory: f,
		presets: presets,
		curves:  curves,
		rng:     rng,
		pooling: true,
		log:     log,
	}
}

func (s *EmitterSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EmitterSystem) Add(e *Emitter) { s.emitters = append(s.emitters, e) }

func (s *EmitterSystem) Emitters() []*Emitter { return s.emitters }

// SetAttachmentAutoPooling decides whether attachments of batches fired from
// now on go back to the attachment pool when their slot is disabled.
func (s *EmitterSystem) SetAttachmentAutoPooling(on bool) { s.pooling = on }

// Fired is the number of batches spawned so far.
func (s *EmitterSystem) Fired() int { return s.fired }

func (s *EmitterSystem) Update(dt time.Duration) {
	for _, e := range s.emitters {
		if e.failed || e.Interval <= 0 {
			continue
		}
		e.elapsed += dt
		for e.elapsed >= e.Interval && !e.failed {
			e.elapsed -= e.Interval
			s.Fire(e)
		}
	}
}

// Fire spawns e's preset once and advances its aim.
func (s *EmitterSystem) Fire(e *Emitter) *bullet.Batch {
	d, err := s.presets.Build(e.Preset, e.Origin, e.Aim, s.curves, s.rng)
	if err != nil {
		e.failed = true
		s.log.Error("發射器停用", zap.String("preset", e.Preset), zap.Error(err))
		return nil
	}
	d.AttachmentAutoPooling = s.pooling
	b, err := s.factory.Spawn(d, geom.Vec2{})
	if err != nil {
		s.log.Warn("發射失敗", zap.String("preset", e.Preset), zap.Error(err))
		return nil
	}
	if !e.Target.IsZero() && b.Kind() == bullet.Directional {
		b.PushSharedTarget(bullet.EntityTarget(e.Target), false)
	}
	e.Aim = geom.WrapAngle(e.Aim + e.Spin)
	s.fired++
	return b
}
