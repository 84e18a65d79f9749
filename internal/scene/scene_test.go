package scene

import (
	"errors"
	"testing"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

var _ bullet.Host = (*Scene)(nil)

func TestLifecycleHooks(t *testing.T) {
	s := New(zap.NewNop())
	var calls []string
	rec := func(name string) Hook {
		return func(*Scene, ecs.EntityID) { calls = append(calls, name) }
	}
	err := s.Register(Template{
		Name:          "spark",
		OnSpawn:       rec("spawn"),
		OnSpawnInPool: rec("pool"),
		OnEnable:      rec("enable"),
		OnDisable:     rec("disable"),
	})
	if err != nil {
		t.Fatal(err)
	}

	pooled := s.InstantiateInPool("spark")
	if s.Enabled(pooled) {
		t.Error("pooled instance should start disabled")
	}
	s.Enable(pooled)
	s.Enable(pooled)
	s.Disable(pooled)
	live := s.Instantiate("spark")
	if !s.Enabled(live) {
		t.Error("instance should start enabled")
	}

	want := []string{"pool", "enable", "disable", "spawn"}
	if len(calls) != len(want) {
		t.Fatalf("Expected %v, got %v", want, calls)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("call %d: Expected %s, got %s", i, want[i], calls[i])
		}
	}
}

func TestDuplicateTemplate(t *testing.T) {
	s := New(zap.NewNop())
	if err := s.Register(Template{Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Register(Template{Name: "a"}); !errors.Is(err, ErrDuplicateTemplate) {
		t.Errorf("Expected ErrDuplicateTemplate, got %v", err)
	}
	if err := s.Register(Template{}); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestDestroyReadsDeadBeforeFlush(t *testing.T) {
	s := New(zap.NewNop())
	id := s.Spawn("unknown", geom.NewTransform(0, geom.V(3, 4)))
	if p, ok := s.Position(id); !ok || p != geom.V(3, 4) {
		t.Fatalf("Expected position (3,4), got %+v %v", p, ok)
	}
	s.Destroy(id)
	if s.Alive(id) {
		t.Error("destroyed node still alive")
	}
	if _, ok := s.Position(id); ok {
		t.Error("destroyed node still has a position")
	}
	if s.Len() != 1 {
		t.Errorf("Expected entity kept until flush, got %d", s.Len())
	}
	s.Flush()
	if s.Len() != 0 {
		t.Errorf("Expected entity gone after flush, got %d", s.Len())
	}
}

func TestSyncTargets(t *testing.T) {
	s := New(zap.NewNop())
	g := collision.NewGrid(16, zap.NewNop())
	s.AttachGrid(g)
	if err := s.Register(Template{Name: "dummy", Body: &Body{Kind: collision.KindBody, Layer: 1, Size: geom.V(10, 10)}}); err != nil {
		t.Fatal(err)
	}
	a := s.Spawn("dummy", geom.Identity())
	b := s.Spawn("dummy", geom.Identity())
	s.SyncTargets()
	if g.TargetCount() != 2 {
		t.Fatalf("Expected 2 targets, got %d", g.TargetCount())
	}
	s.Disable(a)
	s.SyncTargets()
	if g.TargetCount() != 1 {
		t.Errorf("Expected disabled body withdrawn, got %d", g.TargetCount())
	}
	s.Destroy(b)
	s.Flush()
	if g.TargetCount() != 0 {
		t.Errorf("Expected destroyed body withdrawn, got %d", g.TargetCount())
	}
}

func TestStepMovesEnabledNodes(t *testing.T) {
	s := New(zap.NewNop())
	id := s.Instantiate("drone")
	s.SetVelocity(id, geom.V(10, 0))
	s.Step(0.5)
	if p, _ := s.Position(id); p != geom.V(5, 0) {
		t.Errorf("Expected (5,0), got %+v", p)
	}
	s.SetPointer(geom.V(1, 2))
	if s.Pointer() != geom.V(1, 2) {
		t.Error("pointer not stored")
	}
}
