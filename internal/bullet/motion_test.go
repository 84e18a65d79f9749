package bullet

import (
	"math"
	"testing"

	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
)

func TestHomingDequeCache(t *testing.T) {
	h := newFakeHost()
	var d HomingDeque

	d.PushBack(PositionTarget(geom.V(1, 1)), h)
	d.PushBack(PositionTarget(geom.V(2, 2)), h)
	if d.CachedPosition() != geom.V(1, 1) {
		t.Fatalf("push back changed cache: %+v", d.CachedPosition())
	}
	d.PushFront(PositionTarget(geom.V(3, 3)), h)
	if d.CachedPosition() != geom.V(3, 3) {
		t.Fatalf("push front did not set cache: %+v", d.CachedPosition())
	}
	if _, ok := d.PopFront(h); !ok {
		t.Fatal("pop failed")
	}
	if d.CachedPosition() != geom.V(1, 1) || d.Len() != 2 {
		t.Errorf("Expected cache (1,1) with 2 left, got %+v with %d", d.CachedPosition(), d.Len())
	}
	d.Clear()
	if _, ok := d.PopBack(h); ok {
		t.Error("pop from empty deque succeeded")
	}
}

func TestHomingDequeTrimsDeadEntities(t *testing.T) {
	h := newFakeHost()
	dead := h.create()
	live := h.create()
	h.positions[live] = geom.V(9, 9)

	var d HomingDeque
	d.PushBack(EntityTarget(dead), h)
	d.PushBack(EntityTarget(live), h)
	h.Destroy(dead)
	d.trim(h)
	if d.Len() != 1 {
		t.Fatalf("Expected dead target trimmed, %d left", d.Len())
	}
	if d.CachedPosition() != geom.V(9, 9) {
		t.Errorf("Expected cache from live target, got %+v", d.CachedPosition())
	}
}

func TestHomingTurnRate(t *testing.T) {
	tests := []struct {
		name      string
		smoothing float64
		want      geom.Vec2
	}{
		{"instant", 0, geom.V(0, 1)},
		{"limited", 1, geom.FromAngle(0.1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			data := directional(1, SpeedData{Speed: 10})
			data.Homing.Smoothing = tt.smoothing
			b := r.spawn(t, data)
			b.PushHomingTarget(0, PositionTarget(geom.V(0, 1000)), false)

			b.Update(0.1)
			if got := b.Direction(0); !nearVec(got, tt.want) {
				t.Errorf("Expected direction %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestHomingTexturesFollowWhenControlled(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{Speed: 10})
	data.Homing.TakeControlOfTextureRotation = true
	b := r.spawn(t, data)
	b.PushHomingTarget(0, PositionTarget(geom.V(0, 1000)), false)
	b.Update(0.1)
	if got := b.Transform(0).Rotation(); !near(got, math.Pi/2) {
		t.Errorf("Expected instance to face the target, got %v", got)
	}
}

func TestSharedTargetWinsAndAutoPops(t *testing.T) {
	r := newRig(t)
	data := directional(2, SpeedData{Speed: 0})
	data.Homing.ReachedDistance = 5
	data.Homing.SharedAutoPopReached = true
	b := r.spawn(t, data)
	b.PushHomingTarget(1, PositionTarget(geom.V(0, -100)), false)
	b.PushSharedTarget(PositionTarget(geom.V(3, 0)), false)

	b.Update(0.1)
	if got := b.Direction(1); !nearVec(got, geom.V(1, 0)) {
		t.Errorf("shared target should win, slot 1 heading %+v", got)
	}
	if b.SharedTargets() != 0 {
		t.Errorf("Expected reached shared target popped, %d left", b.SharedTargets())
	}
	evs := event.Pending[event.HomingTargetReached](r.bus)
	if len(evs) != 1 {
		t.Fatalf("Expected the reached event once, got %d", len(evs))
	}
	if b.HomingTargets(1) != 1 {
		t.Error("per-slot deque should be untouched")
	}
}

func TestReachedFiresOncePerTarget(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{Speed: 0})
	b := r.spawn(t, data)
	b.PushHomingTarget(0, PositionTarget(geom.V(1, 0)), false)
	for k := 0; k < 3; k++ {
		b.Update(0.1)
	}
	if n := len(event.Pending[event.HomingTargetReached](r.bus)); n != 1 {
		t.Errorf("Expected 1 reached event, got %d", n)
	}
	if b.HomingTargets(0) != 1 {
		t.Error("target popped without auto pop")
	}
}

func TestOrbitLocksAtRadius(t *testing.T) {
	r := newRig(t)
	b := r.spawn(t, directional(1, SpeedData{Speed: 100}))
	target := geom.V(100, 0)
	b.PushHomingTarget(0, PositionTarget(target), false)
	b.EnableOrbiting(0, 50, OrbitRight, FaceTarget)

	for k := 0; k < 4; k++ {
		b.Update(0.1)
		if b.Orbiting(0) {
			t.Fatalf("locked too early at tick %d", k)
		}
	}
	b.Update(0.1)
	if !b.Orbiting(0) {
		t.Fatal("Expected orbit lock at radius")
	}
	for k := 0; k < 5; k++ {
		b.Update(0.1)
		pos := b.Transform(0).Origin
		if d := pos.DistanceTo(target); !near(d, 50) {
			t.Fatalf("tick %d: Expected to stay on radius, distance %v", k, d)
		}
	}
	pos := b.Transform(0).Origin
	if want := target.Sub(pos).Angle(); !near(geom.WrapAngle(b.Transform(0).Rotation()-want), 0) {
		t.Errorf("Expected bullet to face target")
	}
}

func TestOrbitRejectsBadRadius(t *testing.T) {
	r := newRig(t)
	b := r.spawn(t, directional(1, SpeedData{Speed: 100}))
	b.EnableOrbiting(0, 0, OrbitLeft, FaceUnchanged)
	if b.orbits[0].active {
		t.Error("orbit with zero radius enabled")
	}
}

func TestMovementPatternOneShot(t *testing.T) {
	r := newRig(t)
	b := r.spawn(t, directional(1, SpeedData{Speed: 100}))
	b.SetMovementPattern(0, curve.NewPath(geom.V(0, 0), geom.V(0, 10)), false, false)

	b.Update(0.05)
	if got := b.Transform(0).Origin; !nearVec(got, geom.V(0, 5)) {
		t.Fatalf("tick 1: Expected (0,5), got %+v", got)
	}
	b.Update(0.05)
	if got := b.Transform(0).Origin; !nearVec(got, geom.V(0, 10)) {
		t.Fatalf("tick 2: Expected (0,10), got %+v", got)
	}
	if b.HasMovementPattern(0) {
		t.Fatal("Expected one-shot pattern removed at path end")
	}
	b.Update(0.05)
	if got := b.Transform(0).Origin; !nearVec(got, geom.V(5, 10)) {
		t.Errorf("tick 3: Expected plain movement to (5,10), got %+v", got)
	}
}

func TestMovementPatternRepeats(t *testing.T) {
	r := newRig(t)
	b := r.spawn(t, directional(1, SpeedData{Speed: 100}))
	b.SetMovementPattern(0, curve.NewPath(geom.V(0, 0), geom.V(0, 10)), true, true)
	for k := 0; k < 6; k++ {
		b.Update(0.05)
	}
	if !b.HasMovementPattern(0) {
		t.Fatal("repeating pattern removed")
	}
	if got := b.Transform(0).Origin; !nearVec(got, geom.V(0, 30)) {
		t.Errorf("Expected (0,30), got %+v", got)
	}
	if got := b.Transform(0).Rotation(); !near(got, math.Pi/2) {
		t.Errorf("Expected to face movement, got %v", got)
	}
}

func TestAccelerationClampsOnlyUpward(t *testing.T) {
	r := newRig(t)
	fast := r.spawn(t, directional(1, SpeedData{Speed: 200, MaxSpeed: 150, Acceleration: 50}))
	slow := r.spawn(t, directional(1, SpeedData{Speed: 140, MaxSpeed: 150, Acceleration: 50}))

	fast.Update(0.1)
	slow.Update(0.1)
	if got := fast.Speed(0).Speed; got != 200 {
		t.Errorf("Expected speed above max to be kept at 200, got %v", got)
	}
	if got := fast.Transform(0).Origin.X; math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected fast slot at x=20, got %v", got)
	}
	if got := slow.Speed(0).Speed; got != 145 {
		t.Errorf("Expected 140+50*0.1=145, got %v", got)
	}

	slow.Update(0.5)
	if got := slow.Speed(0).Speed; got != 150 {
		t.Errorf("Expected clamp at max 150, got %v", got)
	}
}

func TestSpeedCurveOverridesAcceleration(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{Speed: 10, MaxSpeed: 1000, Acceleration: 1000})
	data.LifeTime = 1
	data.Curves = NewCurves()
	data.Curves.Speed = curve.Linear(0, 0, 1, 100)
	data.Curves.SpeedUnit = true
	b := r.spawn(t, data)

	b.Update(0.5)
	if s := b.Speed(0).Speed; !near(s, 0) {
		t.Errorf("Expected curve speed 0 at start, got %v", s)
	}
	b.Update(0.25)
	if s := b.Speed(0).Speed; !near(s, 50) {
		t.Errorf("Expected curve speed 50 at half life, got %v", s)
	}
}

func TestDirectionCurveOverride(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{Speed: 10})
	data.Curves = NewCurves()
	data.Curves.DirectionX = curve.Constant(0)
	data.Curves.DirectionY = curve.Constant(1)
	data.Curves.DirectionMode = Override
	data.Curves.DirectionRotationSpeed = 0
	b := r.spawn(t, data)
	b.Update(0.1)
	if got := b.Direction(0); !nearVec(got, geom.V(0, 1)) {
		t.Errorf("Expected direction (0,1), got %+v", got)
	}
	if got := b.Transform(0).Origin; !nearVec(got, geom.V(0, 1)) {
		t.Errorf("Expected to move up, got %+v", got)
	}
	if got := b.Transform(0).Rotation(); !near(got, math.Pi/2) {
		t.Errorf("Expected instance turned to the new direction, got %v", got)
	}
}
