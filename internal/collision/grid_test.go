package collision

import (
	"testing"

	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

func TestGridEnterExit(t *testing.T) {
	g := NewGrid(32, zap.NewNop())
	var got []Overlap
	gid := g.CreateShapeGroup(GroupConfig{Layer: 1, Mask: 2}, func(o Overlap) { got = append(got, o) })
	idx := g.AddShape(gid, geom.V(4, 4))
	g.SetShapeTransform(gid, idx, geom.NewTransform(0, geom.V(100, 100)))

	target := ecs.NewEntityID(7, 0)
	g.PutTarget(Target{ID: target, Kind: KindBody, Layer: 2, Position: geom.V(102, 100), Size: geom.V(10, 10)})

	g.Step()
	if len(got) != 1 || got[0].Status != StatusAdded || got[0].Other != target || got[0].Kind != KindBody || got[0].OwnShape != idx {
		t.Fatalf("first step overlaps = %+v", got)
	}

	g.Step()
	if len(got) != 1 {
		t.Fatalf("steady contact should not re-notify, got %+v", got)
	}

	g.SetShapeDisabled(gid, idx, true)
	g.Step()
	if len(got) != 2 || got[1].Status != StatusRemoved {
		t.Fatalf("disabling should report exit, got %+v", got)
	}
}

func TestGridReportsTargetShape(t *testing.T) {
	g := NewGrid(32, zap.NewNop())
	var got []Overlap
	gid := g.CreateShapeGroup(GroupConfig{Layer: 1, Mask: 2}, func(o Overlap) { got = append(got, o) })
	g.AddShape(gid, geom.V(4, 4))
	idx := g.AddShape(gid, geom.V(4, 4))
	g.SetShapeTransform(gid, idx, geom.NewTransform(0, geom.V(50, 0)))

	g.PutTarget(Target{ID: ecs.NewEntityID(3, 0), Kind: KindArea, Layer: 2, Shape: 2, Position: geom.V(50, 0), Size: geom.V(8, 8)})
	g.Step()
	if len(got) != 1 || got[0].OwnShape != idx || got[0].OtherShape != 2 {
		t.Fatalf("overlaps = %+v", got)
	}

	g.RemoveTarget(ecs.NewEntityID(3, 0))
	g.Step()
	if len(got) != 2 || got[1].Status != StatusRemoved || got[1].OtherShape != 2 {
		t.Fatalf("exit should carry the target shape, got %+v", got)
	}
}

func TestGridRespectsMask(t *testing.T) {
	g := NewGrid(0, zap.NewNop())
	calls := 0
	gid := g.CreateShapeGroup(GroupConfig{Mask: 1}, func(Overlap) { calls++ })
	g.AddShape(gid, geom.V(10, 10))
	g.PutTarget(Target{ID: ecs.NewEntityID(1, 0), Layer: 4, Size: geom.V(10, 10)})

	g.Step()
	if calls != 0 {
		t.Fatalf("mask mismatch produced %d overlaps", calls)
	}
}

func TestGridTargetAcrossCells(t *testing.T) {
	g := NewGrid(8, zap.NewNop())
	calls := 0
	gid := g.CreateShapeGroup(GroupConfig{Mask: 1}, func(Overlap) { calls++ })
	g.AddShape(gid, geom.V(2, 2))
	g.SetShapeTransform(gid, 0, geom.NewTransform(0, geom.V(-20, 30)))
	g.PutTarget(Target{ID: ecs.NewEntityID(1, 0), Layer: 1, Position: geom.V(0, 0), Size: geom.V(64, 64)})

	g.Step()
	if calls != 1 {
		t.Fatalf("expected one overlap with a large target, got %d", calls)
	}
}

func TestGridDestroyGroup(t *testing.T) {
	g := NewGrid(16, zap.NewNop())
	gid := g.CreateShapeGroup(GroupConfig{Mask: 1}, nil)
	g.AddShape(gid, geom.V(1, 1))
	g.DestroyShapeGroup(gid)
	if g.GroupCount() != 0 || g.ShapeCount(gid) != 0 {
		t.Fatal("group still registered after destroy")
	}
	if !g.ShapeDisabled(gid, 0) {
		t.Fatal("unknown shape should report disabled")
	}
}
