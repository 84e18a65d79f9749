package bullet

import (
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

func (b *Batch) SlotEnabled(i int) bool {
	return b.valid(i, "enabled") && b.enabled[i]
}

func (b *Batch) Collisions(i int) int {
	if !b.valid(i, "collisions") {
		return 0
	}
	return b.collisions[i]
}

// Transform returns the instance transform of slot i. Disabled slots keep
// their last transform.
func (b *Batch) Transform(i int) geom.Transform2D {
	if !b.valid(i, "transform") {
		return geom.Transform2D{}
	}
	return b.transforms[i]
}

func (b *Batch) ShapeTransform(i int) geom.Transform2D {
	if !b.valid(i, "shape_transform") {
		return geom.Transform2D{}
	}
	return b.shapeTransforms[i]
}

// SetTransform moves slot i. With followRotation the direction is taken from
// the new rotation.
func (b *Batch) SetTransform(i int, t geom.Transform2D, followRotation bool) {
	if !b.valid(i, "set_transform") {
		return
	}
	b.transforms[i] = t
	st := &b.shapeTransforms[i]
	st.Origin = t.Origin.Add(b.shapeOffset.Rotated(st.Rotation()))
	if followRotation {
		b.directions[i] = geom.FromAngle(b.baseRotation(i))
		b.velocities[i] = b.directions[i].Scale(b.speeds[i].Speed).Add(b.inherited)
	}
	if b.enabled[i] {
		b.env.Backend.SetShapeTransform(b.group, i, *st)
		b.sink.SetInstanceTransform(i, t)
	}
	b.interp.reset(b, i)
}

func (b *Batch) Direction(i int) geom.Vec2 {
	if !b.valid(i, "direction") {
		return geom.Vec2{}
	}
	return b.directions[i]
}

// SetDirection sets slot i's heading. A zero vector is ignored.
func (b *Batch) SetDirection(i int, d geom.Vec2) {
	if !b.valid(i, "set_direction") || d.IsZero() {
		return
	}
	b.directions[i] = d.Normalized()
	b.velocities[i] = b.directions[i].Scale(b.speeds[i].Speed).Add(b.inherited)
}

func (b *Batch) Velocity(i int) geom.Vec2 {
	if !b.valid(i, "velocity") {
		return geom.Vec2{}
	}
	return b.velocities[i]
}

func (b *Batch) Speed(i int) SpeedData {
	if !b.valid(i, "speed") {
		return SpeedData{}
	}
	return b.speeds[i]
}

func (b *Batch) SetSpeed(i int, s SpeedData) {
	if !b.valid(i, "set_speed") {
		return
	}
	b.speeds[i] = s
	b.velocities[i] = b.directions[i].Scale(s.Speed).Add(b.inherited)
}

func (b *Batch) Rotation(i int) RotationData {
	if !b.valid(i, "rotation") {
		return RotationData{}
	}
	return b.rotations[i]
}

func (b *Batch) SetRotation(i int, r RotationData) {
	if !b.valid(i, "set_rotation") {
		return
	}
	b.rotations[i] = r
	b.hasRotation = true
}

// SetTextureRotation sets the instance rotation of slot i, leaving its
// direction and shape alone.
func (b *Batch) SetTextureRotation(i int, rot float64) {
	if !b.valid(i, "set_texture_rotation") {
		return
	}
	b.transforms[i] = b.transforms[i].WithRotation(rot)
	if b.enabled[i] && !b.env.Interpolation {
		b.sink.SetInstanceTransform(i, b.transforms[i])
	}
}

func (b *Batch) TextureIndex() int { return b.textureIndex }

func (b *Batch) CustomData() any { return b.customData }

func (b *Batch) SetCustomData(v any) { b.customData = v }

// LifeTime returns the remaining and total life time.
func (b *Batch) LifeTime() (remaining, total float64) { return b.lifeTime, b.maxLifeTime }

func (b *Batch) Elapsed() float64 { return b.elapsed }

func (b *Batch) SetLifeTimeInfinite(v bool) { b.infinite = v }

func (b *Batch) SetInheritedVelocity(v geom.Vec2) { b.inherited = v }

func (b *Batch) SetCurves(c *Curves) { b.curves = c }

func (b *Batch) SetAutoPooling(v bool) { b.autoPooling = v }

func (b *Batch) SetAttachmentAutoPooling(v bool) { b.attachmentAutoPooling = v }

func (b *Batch) homingAllowed(i int, op string) bool {
	if !b.valid(i, op) {
		return false
	}
	if b.kind != Directional {
		b.log.Warn("只有方向型子彈支援追蹤", zap.String("op", op))
		return false
	}
	return true
}

// PushHomingTarget queues a target for slot i, at the front when front is set.
func (b *Batch) PushHomingTarget(i int, t Target, front bool) {
	if !b.homingAllowed(i, "push_homing") {
		return
	}
	if front {
		b.homing[i].PushFront(t, b.env.Host)
		return
	}
	b.homing[i].PushBack(t, b.env.Host)
}

func (b *Batch) PopHomingTarget(i int, front bool) (Target, bool) {
	if !b.homingAllowed(i, "pop_homing") {
		return Target{}, false
	}
	if front {
		return b.homing[i].PopFront(b.env.Host)
	}
	return b.homing[i].PopBack(b.env.Host)
}

func (b *Batch) ClearHomingTargets(i int) {
	if !b.valid(i, "clear_homing") {
		return
	}
	b.homing[i].Clear()
}

// HomingTargets returns the number of targets queued for slot i.
func (b *Batch) HomingTargets(i int) int {
	if !b.valid(i, "homing_targets") {
		return 0
	}
	return b.homing[i].Len()
}

// PushSharedTarget queues a target every slot chases. The shared deque takes
// precedence over per-slot deques.
func (b *Batch) PushSharedTarget(t Target, front bool) {
	if b.kind != Directional {
		b.log.Warn("只有方向型子彈支援追蹤", zap.String("op", "push_shared"))
		return
	}
	if front {
		b.shared.PushFront(t, b.env.Host)
		return
	}
	b.shared.PushBack(t, b.env.Host)
}

func (b *Batch) PopSharedTarget(front bool) (Target, bool) {
	if front {
		return b.shared.PopFront(b.env.Host)
	}
	return b.shared.PopBack(b.env.Host)
}

func (b *Batch) ClearSharedTargets() { b.shared.Clear() }

func (b *Batch) SharedTargets() int { return b.shared.Len() }

// SetHoming replaces the homing behavior of the batch.
func (b *Batch) SetHoming(cfg HomingConfig) {
	b.homingCfg = cfg
	b.homingTimer = cfg.UpdateInterval
}

// EnableOrbiting makes slot i circle its homing target at radius.
func (b *Batch) EnableOrbiting(i int, radius float64, dir OrbitDirection, facing OrbitFacing) {
	if !b.homingAllowed(i, "enable_orbiting") {
		return
	}
	if radius <= 0 {
		b.log.Warn("環繞半徑必須大於零", zap.Float64("radius", radius))
		return
	}
	b.orbits[i] = orbit{active: true, radius: radius, dir: dir, facing: facing}
}

func (b *Batch) DisableOrbiting(i int) {
	if !b.valid(i, "disable_orbiting") {
		return
	}
	b.orbits[i] = orbit{}
}

// Orbiting reports whether slot i is locked on its orbit.
func (b *Batch) Orbiting(i int) bool {
	return b.valid(i, "orbiting") && b.orbits[i].active && b.orbits[i].locked
}

// SetMovementPattern makes slot i follow path, rotated to its direction.
// A one-shot pattern removes itself at the end of the path.
func (b *Batch) SetMovementPattern(i int, path *curve.Path, faceMovement, repeat bool) {
	if !b.homingAllowed(i, "set_pattern") {
		return
	}
	if path.Length() <= 0 {
		b.log.Warn("移動路徑長度為零")
		return
	}
	b.patterns[i] = pattern{active: true, path: path, face: faceMovement, repeat: repeat}
}

func (b *Batch) RemoveMovementPattern(i int) {
	if !b.valid(i, "remove_pattern") {
		return
	}
	b.patterns[i] = pattern{}
}

func (b *Batch) HasMovementPattern(i int) bool {
	return b.valid(i, "has_pattern") && b.patterns[i].active
}

// Teleport shifts every slot by shift without affecting motion state.
func (b *Batch) Teleport(shift geom.Vec2) {
	for i := 0; i < b.capacity; i++ {
		b.transforms[i].Origin = b.transforms[i].Origin.Add(shift)
		b.shapeTransforms[i].Origin = b.shapeTransforms[i].Origin.Add(shift)
		if !b.attachments[i].IsZero() {
			b.attachCurrent[i] = b.attachCurrent[i].Translated(shift)
			b.env.Host.SetTransform(b.attachments[i], b.attachCurrent[i])
		}
		if b.enabled[i] {
			b.env.Backend.SetShapeTransform(b.group, i, b.shapeTransforms[i])
			b.sink.SetInstanceTransform(i, b.transforms[i])
		}
		b.interp.reset(b, i)
	}
}
