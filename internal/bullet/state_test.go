package bullet

import (
	"testing"

	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
)

func TestAttachmentsArePooled(t *testing.T) {
	r := newRig(t)
	data := directional(2, SpeedData{Speed: 10})
	data.Attachment = &AttachmentSpec{Template: "spark", PoolingID: 7, Offset: geom.V(2, 0)}
	b := r.spawn(t, data)

	if r.host.spawned != 2 || b.AttachmentCount() != 2 {
		t.Fatalf("Expected 2 attachments, spawned=%d count=%d", r.host.spawned, b.AttachmentCount())
	}
	id := b.Attachment(0)
	if got, _ := r.host.Transform(id); got.Origin != geom.V(2, 0) {
		t.Errorf("Expected attachment at offset, got %+v", got.Origin)
	}

	b.Update(0.5)
	if got, _ := r.host.Transform(id); !nearVec(got.Origin, geom.V(7, 0)) {
		t.Errorf("Expected attachment to follow, got %+v", got.Origin)
	}

	b.DisableSlot(0)
	if r.host.enabled[id] {
		t.Error("Expected attachment disabled")
	}
	if r.env.Attachments.Count(7) != 1 {
		t.Fatalf("Expected attachment pooled under id 7, pool=%v", r.env.Attachments.Info())
	}

	other := r.spawn(t, func() *SpawnData {
		d := directional(1, SpeedData{})
		d.Attachment = &AttachmentSpec{Template: "spark", PoolingID: 7}
		return d
	}())
	if other.Attachment(0) != id || r.host.spawned != 2 {
		t.Errorf("Expected pooled attachment reused, got %v spawned=%d", other.Attachment(0), r.host.spawned)
	}
	if !r.host.enabled[id] {
		t.Error("Expected reused attachment enabled")
	}
}

func TestAttachmentDestroyedWithoutPooling(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{})
	data.Attachment = &AttachmentSpec{Template: "spark", PoolingID: 1}
	data.AttachmentAutoPooling = false
	b := r.spawn(t, data)
	id := b.Attachment(0)
	b.DisableSlot(0)
	if r.host.Alive(id) || r.env.Attachments.Len() != 0 {
		t.Errorf("Expected attachment destroyed, alive=%v pooled=%d", r.host.Alive(id), r.env.Attachments.Len())
	}
}

func TestStickAttachmentFollowsRotation(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{})
	data.Rotation = []RotationData{{Speed: geom.Tau / 4, MaxSpeed: geom.Tau / 4}}
	data.Attachment = &AttachmentSpec{Template: "halo", Offset: geom.V(10, 0), Stick: true}
	b := r.spawn(t, data)
	b.Update(1)
	got, _ := r.host.Transform(b.Attachment(0))
	if !nearVec(got.Origin, geom.V(0, 10)) {
		t.Errorf("Expected stuck attachment rotated to (0,10), got %+v", got.Origin)
	}
}

func TestStaleAttachmentCleared(t *testing.T) {
	r := newRig(t)
	data := directional(1, SpeedData{Speed: 1})
	data.Attachment = &AttachmentSpec{Template: "spark"}
	b := r.spawn(t, data)
	r.host.Destroy(b.Attachment(0))
	b.Update(0.1)
	if !b.Attachment(0).IsZero() {
		t.Error("Expected dead attachment handle cleared")
	}
}

func TestSaveLoadContinuesIdentically(t *testing.T) {
	r := newRig(t)
	data := directional(3, SpeedData{Speed: 40, MaxSpeed: 90, Acceleration: 30})
	data.Transforms[1] = geom.NewTransform(1.2, geom.V(10, 10))
	data.Rotation = []RotationData{{Speed: 0.5, MaxSpeed: 3, Acceleration: 1}}
	data.Curves = NewCurves()
	data.Curves.DirectionY = curve.Linear(0, 0, 10, 2)
	data.CustomData = "payload"
	b := r.spawn(t, data)
	b.PushHomingTarget(2, PositionTarget(geom.V(-50, 20)), false)
	b.SetMovementPattern(0, curve.NewPath(geom.V(0, 0), geom.V(5, 5), geom.V(10, 0)), true, true)
	b.EnableOrbiting(2, 15, OrbitLeft, FaceOrbitingDirection)
	b.DisableSlot(1)
	for k := 0; k < 5; k++ {
		b.Update(1.0 / 60)
	}

	s := b.Save()
	loaded := New(99, s.Kind, r.env)
	if !loaded.Load(s) {
		t.Fatal("Load failed")
	}
	if loaded.ActiveCount() != b.ActiveCount() || loaded.SlotEnabled(1) {
		t.Fatalf("active mismatch: %d vs %d", loaded.ActiveCount(), b.ActiveCount())
	}

	for k := 0; k < 30; k++ {
		b.Update(1.0 / 60)
		loaded.Update(1.0 / 60)
	}
	for i := 0; i < 3; i++ {
		if a, c := b.Transform(i), loaded.Transform(i); a != c {
			t.Errorf("slot %d diverged: %+v vs %+v", i, a, c)
		}
		if a, c := b.Speed(i), loaded.Speed(i); a != c {
			t.Errorf("slot %d speed diverged: %+v vs %+v", i, a, c)
		}
	}
	if loaded.CustomData() != "payload" {
		t.Errorf("custom data lost: %v", loaded.CustomData())
	}
}

func TestSaveKeepsUnreplayedHits(t *testing.T) {
	r := newRig(t)
	data := directional(2, SpeedData{Speed: 10})
	data.MaxCollisions = 1
	b := r.spawn(t, data)
	b.relay.Record(collision.Overlap{Status: collision.StatusAdded, Kind: collision.KindArea, Other: 42, OwnShape: 0})

	s := b.Save()
	if len(s.Pending) != 1 {
		t.Fatalf("Expected 1 pending hit saved, got %d", len(s.Pending))
	}
	loaded := New(99, s.Kind, r.env)
	if !loaded.Load(s) {
		t.Fatal("Load failed")
	}

	b.Update(0.1)
	loaded.Update(0.1)
	for _, x := range []*Batch{b, loaded} {
		if x.SlotEnabled(0) || x.Collisions(0) != 1 {
			t.Errorf("batch %d: expected slot 0 disabled after 1 hit, enabled=%v collisions=%d",
				x.ID(), x.SlotEnabled(0), x.Collisions(0))
		}
		if !x.SlotEnabled(1) {
			t.Errorf("batch %d: slot 1 should be untouched", x.ID())
		}
	}
}

func TestLoadRejectsBadState(t *testing.T) {
	r := newRig(t)
	b := New(1, Directional, r.env)
	if b.Load(&State{Capacity: 2, Transforms: line(1), Enabled: make([]bool, 2)}) {
		t.Error("Load accepted mismatched slices")
	}
}
