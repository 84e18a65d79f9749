package bullet

import (
	"math"

	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/geom"
)

// Remaining life below this counts as expired, so that n ticks of 1/n always
// end a life time of 1.
const lifeEpsilon = 1e-9

// Update advances the batch by dt seconds.
func (b *Batch) Update(dt float64) {
	if !b.isActive || b.deleted {
		return
	}
	if b.env.Interpolation {
		b.interp.snapshot(b)
	}
	homing := b.updateHoming(dt)

	for _, i := range b.active.Dense() {
		if homing {
			b.steer(i, dt)
		}
		b.updateSlot(i, dt)
	}
	if homing {
		b.applyPops()
	}

	b.relay.Replay(b.onHit)
	if !b.isActive {
		return
	}

	b.cycleTexture(dt)
	b.advanceTimers(dt)
	b.updateLifeTime(dt)
	b.runDue()
}

func (b *Batch) updateSlot(i int, dt float64) {
	if b.curves.hasDirection() {
		b.applyDirectionCurves(i, dt)
	}
	b.rotate(i, dt)
	if b.adjustDirection {
		b.directions[i] = geom.FromAngle(b.baseRotation(i))
	}
	b.accelerate(i, dt)
	b.velocities[i] = b.directions[i].Scale(b.speeds[i].Speed).Add(b.inherited)

	step := b.velocities[i].Scale(dt)
	if b.patterns[i].active {
		step = b.patternStep(i, step)
	}
	if b.orbits[i].active {
		step = b.orbitStep(i, step, dt)
	}
	b.move(i, step)
}

// curveInput is the x a curve is sampled at.
func (b *Batch) curveInput(unit bool) float64 {
	if unit && !b.infinite && b.maxLifeTime > 0 {
		return geom.Clamp(b.elapsed/b.maxLifeTime, 0, 1)
	}
	return b.elapsed
}

func (b *Batch) applyDirectionCurves(i int, dt float64) {
	c := b.curves
	x := b.curveInput(c.DirectionUnit)
	d := b.directions[i]
	if c.DirectionX != nil {
		v := c.DirectionX.Sample(x) * c.DirectionStrength
		if c.DirectionMode == Override {
			d.X = v
		} else {
			d.X += v * dt
		}
	}
	if c.DirectionY != nil {
		v := c.DirectionY.Sample(x) * c.DirectionStrength
		if c.DirectionMode == Override {
			d.Y = v
		} else {
			d.Y += v * dt
		}
	}
	if d.IsZero() {
		return
	}
	d = d.Normalized()
	b.directions[i] = d
	if c.RotateTowardsAdjusted && !b.texturePermanent {
		b.turnTowards(i, d.Angle(), c.DirectionRotationSpeed*dt)
	}
}

func (b *Batch) rotate(i int, dt float64) {
	var delta float64
	if c := b.curves; c != nil && c.Rotation != nil {
		rs := c.Rotation.Sample(b.curveInput(c.RotationUnit))
		b.rotations[i].Speed = rs
		delta = rs * dt
	} else if b.hasRotation {
		r := &b.rotations[i]
		reached := r.Speed >= r.MaxSpeed
		if r.Speed != 0 && !(reached && b.stopRotationAtMax) {
			delta = r.Speed * dt
		}
		if !reached {
			r.Speed = math.Min(r.Speed+r.Acceleration*dt, r.MaxSpeed)
		}
	}
	if delta != 0 {
		b.rotateSlot(i, delta)
	}
}

// rotateSlot turns the instance, and the shape unless only textures rotate.
func (b *Batch) rotateSlot(i int, delta float64) {
	b.transforms[i] = b.transforms[i].RotatedLocal(delta)
	if !b.rotateOnlyTextures {
		b.shapeTransforms[i] = b.shapeTransforms[i].RotatedLocal(delta)
	}
}

// turnTowards rotates slot i so it faces angle, at most maxTurn radians. A
// non-positive maxTurn turns instantly.
func (b *Batch) turnTowards(i int, angle, maxTurn float64) {
	if !b.texturePermanent {
		angle += b.textureRotation
	}
	delta := geom.WrapAngle(angle - b.transforms[i].Rotation())
	if maxTurn > 0 {
		delta = geom.Clamp(delta, -maxTurn, maxTurn)
	}
	if delta != 0 {
		b.rotateSlot(i, delta)
	}
}

// baseRotation is the slot's heading without the texture rotation.
func (b *Batch) baseRotation(i int) float64 {
	if b.texturePermanent {
		return b.shapeTransforms[i].Rotation()
	}
	return geom.WrapAngle(b.transforms[i].Rotation() - b.textureRotation)
}

func (b *Batch) accelerate(i int, dt float64) {
	s := &b.speeds[i]
	if c := b.curves; c != nil && c.Speed != nil {
		s.Speed = c.Speed.Sample(b.curveInput(c.SpeedUnit))
		return
	}
	// a slot fired above MaxSpeed keeps its speed
	if s.Speed >= s.MaxSpeed {
		return
	}
	s.Speed = math.Min(s.Speed+s.Acceleration*dt, s.MaxSpeed)
}

func (b *Batch) move(i int, step geom.Vec2) {
	t := &b.transforms[i]
	t.Origin = t.Origin.Add(step)
	st := &b.shapeTransforms[i]
	st.Origin = t.Origin.Add(b.shapeOffset.Rotated(st.Rotation()))

	b.env.Backend.SetShapeTransform(b.group, i, *st)
	if !b.env.Interpolation {
		b.sink.SetInstanceTransform(i, *t)
	}
	b.moveAttachment(i, step)
}

func (b *Batch) onHit(h Hit) {
	i := h.Slot
	if i < 0 || i >= b.capacity || !b.enabled[i] {
		return
	}
	b.collisions[i]++

	kind := event.HitArea
	if h.Kind == collision.KindBody {
		kind = event.HitBody
	}
	target := h.Other
	if !b.env.Host.Alive(target) {
		target = ecs.EntityID(0)
	}
	event.Emit(b.env.Bus, event.BulletHit{
		Kind:        kind,
		Target:      target,
		TargetShape: h.OtherShape,
		Batch:       b.id,
		Slot:        i,
		CustomData:  b.customData,
		Transform:   b.transforms[i],
	})

	if b.maxCollisions > 0 && b.collisions[i] >= b.maxCollisions {
		b.DisableSlot(i)
	}
}

func (b *Batch) textureTime(idx int) float64 {
	switch {
	case len(b.changeTimes) == len(b.textures) && idx < len(b.changeTimes):
		return b.changeTimes[idx]
	case len(b.changeTimes) > 0:
		return b.changeTimes[0]
	default:
		return b.defaultChangeTime
	}
}

func (b *Batch) cycleTexture(dt float64) {
	if len(b.textures) < 2 {
		return
	}
	b.textureTimer -= dt
	if b.textureTimer > 0 {
		return
	}
	b.textureIndex = (b.textureIndex + 1) % len(b.textures)
	b.sink.SetTexture(b.textures[b.textureIndex])
	b.textureTimer = b.textureTime(b.textureIndex)
}

func (b *Batch) updateLifeTime(dt float64) {
	b.elapsed += dt
	if b.infinite {
		return
	}
	b.lifeTime -= dt
	if b.lifeTime > lifeEpsilon {
		return
	}
	if b.lifeTimeOverEvent {
		dense := b.active.Dense()
		ev := event.LifeTimeOver{
			Batch:      b.id,
			Slots:      make([]int, len(dense)),
			Transforms: make([]geom.Transform2D, len(dense)),
			CustomData: b.customData,
		}
		for k, i := range dense {
			ev.Slots[k] = i
			ev.Transforms[k] = b.transforms[i]
		}
		event.Emit(b.env.Bus, ev)
	}
	b.Disable()
}
