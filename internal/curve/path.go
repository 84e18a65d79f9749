package curve

import "github.com/l1jgo/bullets/internal/geom"

// Path is a 2D polyline with cumulative arc lengths, used for movement
// patterns. Points are relative to the path start.
type Path struct {
	Points []geom.Vec2 `msgpack:"points"`

	lengths []float64
}

func NewPath(points ...geom.Vec2) *Path {
	p := &Path{Points: append([]geom.Vec2(nil), points...)}
	p.bake()
	return p
}

func (p *Path) bake() {
	p.lengths = make([]float64, len(p.Points))
	for i := 1; i < len(p.Points); i++ {
		p.lengths[i] = p.lengths[i-1] + p.Points[i].Sub(p.Points[i-1]).Length()
	}
}

// Length returns the total baked length.
func (p *Path) Length() float64 {
	if p == nil {
		return 0
	}
	if len(p.lengths) != len(p.Points) {
		p.bake()
	}
	if len(p.lengths) == 0 {
		return 0
	}
	return p.lengths[len(p.lengths)-1]
}

// SampleBaked returns the point at distance along the path, clamped to its ends.
func (p *Path) SampleBaked(distance float64) geom.Vec2 {
	if p == nil || len(p.Points) == 0 {
		return geom.Vec2{}
	}
	total := p.Length()
	if distance <= 0 || len(p.Points) == 1 {
		return p.Points[0]
	}
	if distance >= total {
		return p.Points[len(p.Points)-1]
	}
	for i := 1; i < len(p.lengths); i++ {
		if p.lengths[i] < distance {
			continue
		}
		seg := p.lengths[i] - p.lengths[i-1]
		if seg == 0 {
			return p.Points[i]
		}
		t := (distance - p.lengths[i-1]) / seg
		return p.Points[i-1].Lerp(p.Points[i], t)
	}
	return p.Points[len(p.Points)-1]
}
