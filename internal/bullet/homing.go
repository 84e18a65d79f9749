package bullet

import (
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
)

// TargetKind says how a homing target's position is found.
type TargetKind uint8

const (
	TargetPosition TargetKind = iota
	TargetEntity
	TargetPointer
)

// Target is one entry of a homing deque.
type Target struct {
	Kind     TargetKind   `msgpack:"kind"`
	Position geom.Vec2    `msgpack:"pos"`
	Entity   ecs.EntityID `msgpack:"-"`
}

func PositionTarget(p geom.Vec2) Target { return Target{Kind: TargetPosition, Position: p} }
func EntityTarget(id ecs.EntityID) Target { return Target{Kind: TargetEntity, Entity: id} }
func PointerTarget() Target { return Target{Kind: TargetPointer} }

func (t Target) resolve(loc Locator) (geom.Vec2, bool) {
	switch t.Kind {
	case TargetEntity:
		if !loc.Alive(t.Entity) {
			return geom.Vec2{}, false
		}
		return loc.Position(t.Entity)
	case TargetPointer:
		return loc.Pointer(), true
	default:
		return t.Position, true
	}
}

// HomingDeque is an ordered list of targets. Only the front is chased; its
// position is cached and refreshed on the batch's homing interval.
type HomingDeque struct {
	targets []Target
	cached  geom.Vec2
	reached bool
}

func (d *HomingDeque) Len() int { return len(d.targets) }

// Front returns the target being chased.
func (d *HomingDeque) Front() (Target, bool) {
	if len(d.targets) == 0 {
		return Target{}, false
	}
	return d.targets[0], true
}

// CachedPosition is the front target's position at the last refresh.
func (d *HomingDeque) CachedPosition() geom.Vec2 { return d.cached }

func (d *HomingDeque) setFront(loc Locator) {
	d.reached = false
	if len(d.targets) == 0 {
		return
	}
	if p, ok := d.targets[0].resolve(loc); ok {
		d.cached = p
	}
}

// PushBack appends a target. The cache only changes when the deque was empty.
func (d *HomingDeque) PushBack(t Target, loc Locator) {
	d.targets = append(d.targets, t)
	if len(d.targets) == 1 {
		d.setFront(loc)
	}
}

// PushFront makes t the chased target.
func (d *HomingDeque) PushFront(t Target, loc Locator) {
	d.targets = append(d.targets, Target{})
	copy(d.targets[1:], d.targets)
	d.targets[0] = t
	d.setFront(loc)
}

func (d *HomingDeque) PopFront(loc Locator) (Target, bool) {
	if len(d.targets) == 0 {
		return Target{}, false
	}
	t := d.targets[0]
	copy(d.targets, d.targets[1:])
	d.targets[len(d.targets)-1] = Target{}
	d.targets = d.targets[:len(d.targets)-1]
	d.setFront(loc)
	return t, true
}

func (d *HomingDeque) PopBack(loc Locator) (Target, bool) {
	n := len(d.targets)
	if n == 0 {
		return Target{}, false
	}
	t := d.targets[n-1]
	d.targets = d.targets[:n-1]
	if n == 1 {
		d.reached = false
	}
	return t, true
}

func (d *HomingDeque) Clear() {
	clear(d.targets)
	d.targets = d.targets[:0]
	d.reached = false
}

// trim drops dead entity targets from the front.
func (d *HomingDeque) trim(loc Locator) {
	for len(d.targets) > 0 {
		t := d.targets[0]
		if t.Kind != TargetEntity || loc.Alive(t.Entity) {
			return
		}
		d.PopFront(loc)
	}
}

// refresh re-reads the front target's position.
func (d *HomingDeque) refresh(loc Locator) {
	if len(d.targets) == 0 {
		return
	}
	if p, ok := d.targets[0].resolve(loc); ok {
		d.cached = p
	}
}

// savable returns the targets that survive a restart.
func (d *HomingDeque) savable() []Target {
	var out []Target
	for _, t := range d.targets {
		if t.Kind != TargetEntity {
			out = append(out, t)
		}
	}
	return out
}
