package bullet

import (
	"math"

	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
)

// updateHoming advances the refresh timer and prunes dead targets. It
// reports whether any slot has something to chase.
func (b *Batch) updateHoming(dt float64) bool {
	loc := b.env.Host
	chasing := false

	b.homingTimer -= dt
	refresh := b.homingTimer <= 0
	if refresh {
		b.homingTimer = b.homingCfg.UpdateInterval
	}

	if b.shared.Len() > 0 {
		b.shared.trim(loc)
		if refresh {
			b.shared.refresh(loc)
		}
		chasing = b.shared.Len() > 0
	}
	for _, i := range b.active.Dense() {
		d := &b.homing[i]
		if d.Len() == 0 {
			continue
		}
		d.trim(loc)
		if refresh {
			d.refresh(loc)
		}
		if d.Len() > 0 {
			chasing = true
		}
	}
	return chasing
}

// chased returns the deque slot i follows. The shared deque wins.
func (b *Batch) chased(i int) *HomingDeque {
	if b.shared.Len() > 0 {
		return &b.shared
	}
	if b.homing[i].Len() > 0 {
		return &b.homing[i]
	}
	return nil
}

func (b *Batch) steer(i int, dt float64) {
	d := b.chased(i)
	if d == nil {
		return
	}
	target := d.cached
	diff := target.Sub(b.transforms[i].Origin)
	maxTurn := b.homingCfg.Smoothing * dt

	if !diff.IsZero() {
		want := diff.Normalized()
		cur := b.directions[i]
		switch {
		case b.patterns[i].active, b.hasRotation, cur.IsZero(), b.homingCfg.Smoothing <= 0:
			b.directions[i] = want
		default:
			delta := geom.Clamp(cur.AngleTo(want), -maxTurn, maxTurn)
			b.directions[i] = cur.Rotated(delta).Normalized()
		}
		if b.homingCfg.TakeControlOfTextureRotation && !b.texturePermanent {
			b.turnTowards(i, b.directions[i].Angle(), maxTurn)
		}
	}

	r := b.homingCfg.ReachedDistance
	if d.reached || diff.LengthSq() > r*r {
		return
	}
	d.reached = true
	front, _ := d.Front()
	event.Emit(b.env.Bus, event.HomingTargetReached{
		Batch:    b.id,
		Slot:     i,
		Target:   front.Entity,
		Position: target,
	})
	if d == &b.shared {
		b.popShared = b.popShared || b.homingCfg.SharedAutoPopReached
	} else if b.homingCfg.AutoPopReached {
		b.popSlots = append(b.popSlots, i)
	}
}

func (b *Batch) applyPops() {
	loc := b.env.Host
	if b.popShared {
		b.shared.PopFront(loc)
		b.popShared = false
	}
	for _, i := range b.popSlots {
		b.homing[i].PopFront(loc)
	}
	b.popSlots = b.popSlots[:0]
}

// OrbitDirection is the sense of rotation around a homing target.
type OrbitDirection int8

const (
	OrbitLeft  OrbitDirection = -1
	OrbitStill OrbitDirection = 0
	OrbitRight OrbitDirection = 1
)

// OrbitFacing decides how an orbiting bullet is rotated.
type OrbitFacing uint8

const (
	FaceUnchanged OrbitFacing = iota
	FaceTarget
	FaceOppositeTarget
	FaceOrbitingDirection
	FaceOppositeOrbitingDirection
)

type orbit struct {
	active bool
	radius float64
	dir    OrbitDirection
	facing OrbitFacing
	angle  float64
	locked bool
}

// orbitStep replaces the linear step once the slot reaches its orbit radius.
// Until then the slot homes in normally, or is pushed out when inside it.
func (b *Batch) orbitStep(i int, step geom.Vec2, dt float64) geom.Vec2 {
	d := b.chased(i)
	if d == nil {
		return step
	}
	o := &b.orbits[i]
	target := d.cached
	pos := b.transforms[i].Origin
	speed := b.speeds[i].Speed

	if !o.locked {
		from := pos.Sub(target)
		dist := from.Length()
		switch {
		case math.Abs(dist-o.radius) <= speed*dt:
			o.locked = true
			o.angle = from.Angle()
		case dist < o.radius:
			if from.IsZero() {
				from = b.directions[i]
			}
			return from.Normalized().Scale(speed * dt)
		default:
			return step
		}
	} else if o.dir != OrbitStill {
		o.angle += speed / o.radius * float64(o.dir) * dt
	}

	next := target.Add(geom.FromAngle(o.angle).Scale(o.radius))
	out := next.Sub(pos)
	switch o.facing {
	case FaceTarget:
		b.turnTowards(i, target.Sub(next).Angle(), 0)
	case FaceOppositeTarget:
		b.turnTowards(i, next.Sub(target).Angle(), 0)
	case FaceOrbitingDirection:
		if !out.IsZero() {
			b.turnTowards(i, out.Angle(), 0)
		}
	case FaceOppositeOrbitingDirection:
		if !out.IsZero() {
			b.turnTowards(i, out.Angle()+math.Pi, 0)
		}
	}
	return out
}

type pattern struct {
	active   bool
	path     *curve.Path
	face     bool
	repeat   bool
	distance float64
}

// offset is the displacement along the path after travelling dist.
func (p *pattern) offset(dist float64) geom.Vec2 {
	length := p.path.Length()
	start := p.path.SampleBaked(0)
	if !p.repeat {
		return p.path.SampleBaked(math.Min(dist, length)).Sub(start)
	}
	laps := math.Floor(dist / length)
	lap := p.path.SampleBaked(length).Sub(start)
	return lap.Scale(laps).Add(p.path.SampleBaked(dist - laps*length).Sub(start))
}

// patternStep bends the step along the path, keeping its length. The path is
// rotated to the slot's direction.
func (b *Batch) patternStep(i int, step geom.Vec2) geom.Vec2 {
	p := &b.patterns[i]
	stepLen := step.Length()
	if p.path.Length() <= 0 || stepLen == 0 {
		return step
	}
	before := p.offset(p.distance)
	p.distance += stepLen
	local := p.offset(p.distance).Sub(before)
	done := !p.repeat && p.distance >= p.path.Length()

	out := step
	if !local.IsZero() {
		out = local.Rotated(b.directions[i].Angle()).Normalized().Scale(stepLen)
		if p.face {
			b.turnTowards(i, out.Angle(), 0)
		}
	}
	if done {
		face := p.face
		*p = pattern{}
		if face {
			b.turnTowards(i, b.directions[i].Angle(), 0)
		}
	}
	return out
}
