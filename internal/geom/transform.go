package geom

import "math"

// Transform2D is a 2x3 affine transform stored as two basis columns plus an
// origin. Xform(p) = X*p.X + Y*p.Y + Origin.
type Transform2D struct {
	X      Vec2 `msgpack:"x"`
	Y      Vec2 `msgpack:"y"`
	Origin Vec2 `msgpack:"o"`
}

func Identity() Transform2D {
	return Transform2D{X: Vec2{1, 0}, Y: Vec2{0, 1}}
}

// NewTransform builds a unit-scale transform rotated by rot and placed at pos.
func NewTransform(rot float64, pos Vec2) Transform2D {
	s, c := math.Sincos(rot)
	return Transform2D{X: Vec2{c, s}, Y: Vec2{-s, c}, Origin: pos}
}

func (t Transform2D) Rotation() float64 { return math.Atan2(t.X.Y, t.X.X) }

func (t Transform2D) Determinant() float64 { return t.X.X*t.Y.Y - t.X.Y*t.Y.X }

// Scale returns the per-axis scale. A mirrored basis reports a negative Y.
func (t Transform2D) Scale() Vec2 {
	sy := t.Y.Length()
	if t.Determinant() < 0 {
		sy = -sy
	}
	return Vec2{t.X.Length(), sy}
}

// WithRotation returns t rotated to rot while keeping its scale and origin.
func (t Transform2D) WithRotation(rot float64) Transform2D {
	sc := t.Scale()
	s, c := math.Sincos(rot)
	return Transform2D{
		X:      Vec2{c * sc.X, s * sc.X},
		Y:      Vec2{-s * sc.Y, c * sc.Y},
		Origin: t.Origin,
	}
}

// RotatedLocal rotates the basis by angle around the transform's own origin.
func (t Transform2D) RotatedLocal(angle float64) Transform2D {
	return Transform2D{X: t.X.Rotated(angle), Y: t.Y.Rotated(angle), Origin: t.Origin}
}

func (t Transform2D) Translated(offset Vec2) Transform2D {
	t.Origin = t.Origin.Add(offset)
	return t
}

// BasisXform applies the basis without the origin.
func (t Transform2D) BasisXform(v Vec2) Vec2 {
	return Vec2{t.X.X*v.X + t.Y.X*v.Y, t.X.Y*v.X + t.Y.Y*v.Y}
}

func (t Transform2D) Xform(v Vec2) Vec2 {
	return t.BasisXform(v).Add(t.Origin)
}

// Mul composes t with o, applying o first.
func (t Transform2D) Mul(o Transform2D) Transform2D {
	return Transform2D{
		X:      t.BasisXform(o.X),
		Y:      t.BasisXform(o.Y),
		Origin: t.Xform(o.Origin),
	}
}

// ZeroScaled collapses the basis so the instance is invisible, keeping the origin.
func (t Transform2D) ZeroScaled() Transform2D {
	return Transform2D{Origin: t.Origin}
}

// Lerp blends origin and scale linearly and rotation along the shortest arc.
func (t Transform2D) Lerp(o Transform2D, w float64) Transform2D {
	s1, s2 := t.Scale(), o.Scale()
	rot := LerpAngle(t.Rotation(), o.Rotation(), w)
	sc := s1.Lerp(s2, w)
	s, c := math.Sincos(rot)
	return Transform2D{
		X:      Vec2{c * sc.X, s * sc.X},
		Y:      Vec2{-s * sc.Y, c * sc.Y},
		Origin: t.Origin.Lerp(o.Origin, w),
	}
}
