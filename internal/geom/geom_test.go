package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{3 * math.Pi / 2, -math.Pi / 2},
		{-3 * math.Pi / 2, math.Pi / 2},
		{5 * math.Pi, math.Pi}, // folds onto ±π
	}
	for _, tt := range tests {
		got := WrapAngle(tt.in)
		if !near(math.Abs(got), math.Abs(tt.want)) {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLerpAngleShortestArc(t *testing.T) {
	from := math.Pi - 0.1
	to := -math.Pi + 0.1
	mid := LerpAngle(from, to, 0.5)
	if !near(math.Abs(WrapAngle(mid)), math.Pi) {
		t.Fatalf("expected midpoint at ±π, got %v", mid)
	}
}

func TestTransformRotationKeepsScale(t *testing.T) {
	tr := NewTransform(0, V(3, 4))
	tr.X = tr.X.Scale(2)
	tr.Y = tr.Y.Scale(3)

	r := tr.WithRotation(math.Pi / 2)
	if !near(r.Rotation(), math.Pi/2) {
		t.Errorf("rotation = %v, want π/2", r.Rotation())
	}
	sc := r.Scale()
	if !near(sc.X, 2) || !near(sc.Y, 3) {
		t.Errorf("scale = %+v, want {2 3}", sc)
	}
	if r.Origin != tr.Origin {
		t.Errorf("origin changed: %+v", r.Origin)
	}
}

func TestTransformXform(t *testing.T) {
	tr := NewTransform(math.Pi/2, V(10, 0))
	p := tr.Xform(V(1, 0))
	if !near(p.X, 10) || !near(p.Y, 1) {
		t.Errorf("Xform = %+v, want {10 1}", p)
	}
}

func TestTransformLerpEndpoints(t *testing.T) {
	a := NewTransform(0.3, V(1, 2))
	b := NewTransform(2.0, V(5, -2))

	got := a.Lerp(b, 0.5)
	if !near(got.Origin.X, 3) || !near(got.Origin.Y, 0) {
		t.Errorf("mid origin = %+v", got.Origin)
	}
	if !near(got.Rotation(), 1.15) {
		t.Errorf("mid rotation = %v, want 1.15", got.Rotation())
	}
}

func TestMoveToward(t *testing.T) {
	if got := MoveToward(0, 10, 3); got != 3 {
		t.Errorf("MoveToward(0,10,3) = %v", got)
	}
	if got := MoveToward(0, 2, 3); got != 2 {
		t.Errorf("MoveToward(0,2,3) = %v", got)
	}
	if got := MoveToward(0, -10, 3); got != -3 {
		t.Errorf("MoveToward(0,-10,3) = %v", got)
	}
}
