package event

import (
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
)

// HitKind distinguishes what a bullet touched.
type HitKind uint8

const (
	HitArea HitKind = iota
	HitBody
)

// BulletHit is raised when a bullet slot overlaps an area or body. Target is
// zero when the hit object no longer exists.
type BulletHit struct {
	Kind        HitKind
	Target      ecs.EntityID
	TargetShape int
	Batch       uint64
	Slot        int
	CustomData  any
	Transform   geom.Transform2D
}

// LifeTimeOver lists the slots that were still flying when their batch ran
// out of life time.
type LifeTimeOver struct {
	Batch      uint64
	Slots      []int
	Transforms []geom.Transform2D
	CustomData any
}

// HomingTargetReached fires once per target when a homing slot gets within
// the reached distance. Target is zero for position and pointer targets.
type HomingTargetReached struct {
	Batch    uint64
	Slot     int
	Target   ecs.EntityID
	Position geom.Vec2
}

// BatchRetired is raised when a batch's last slot is disabled.
type BatchRetired struct {
	Batch    uint64
	Capacity int
	Pooled   bool
}
