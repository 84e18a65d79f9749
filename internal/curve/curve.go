package curve

import "sort"

// DefaultBakeResolution is the LUT size used by Bake when none is given.
const DefaultBakeResolution = 100

// Point is one control point of a Curve.
type Point struct {
	X float64 `msgpack:"x" yaml:"x"`
	Y float64 `msgpack:"y" yaml:"y"`
}

// Curve is a piecewise-linear function sampled over [MinX, MaxX]. Outside the
// control points the first/last Y is held. Bake builds a lookup table that
// Sample prefers once present.
type Curve struct {
	Points []Point `msgpack:"points"`
	// Resolution is the LUT size of the last Bake; decoded curves rebake
	// lazily so they sample exactly like the encoded one.
	Resolution int `msgpack:"resolution"`

	baked []float64
	minX  float64
	maxX  float64
}

// New returns a curve through the given points sorted by X.
func New(points ...Point) *Curve {
	c := &Curve{Points: append([]Point(nil), points...)}
	c.sortPoints()
	return c
}

// Linear returns a straight curve from (x0,y0) to (x1,y1).
func Linear(x0, y0, x1, y1 float64) *Curve {
	return New(Point{x0, y0}, Point{x1, y1})
}

// Constant returns a flat curve.
func Constant(y float64) *Curve {
	return New(Point{0, y}, Point{1, y})
}

func (c *Curve) sortPoints() {
	sort.SliceStable(c.Points, func(i, j int) bool { return c.Points[i].X < c.Points[j].X })
}

// AddPoint inserts a control point and invalidates the baked table. A baked
// curve rebakes on the next Sample.
func (c *Curve) AddPoint(x, y float64) {
	c.Points = append(c.Points, Point{x, y})
	c.sortPoints()
	c.baked = nil
}

// Bake precomputes resolution evenly spaced samples.
func (c *Curve) Bake(resolution int) {
	if len(c.Points) == 0 {
		c.baked = nil
		return
	}
	if resolution < 2 {
		resolution = DefaultBakeResolution
	}
	c.Resolution = resolution
	c.minX = c.Points[0].X
	c.maxX = c.Points[len(c.Points)-1].X
	c.baked = make([]float64, resolution)
	for i := range c.baked {
		x := c.minX + (c.maxX-c.minX)*float64(i)/float64(resolution-1)
		c.baked[i] = c.interpolate(x)
	}
}

func (c *Curve) IsBaked() bool { return c.baked != nil }

// Sample evaluates the curve at x. An empty curve returns 0.
func (c *Curve) Sample(x float64) float64 {
	if c == nil || len(c.Points) == 0 {
		return 0
	}
	if c.baked == nil && c.Resolution > 0 {
		c.Bake(c.Resolution)
	}
	if c.baked == nil || c.maxX <= c.minX {
		return c.interpolate(x)
	}
	if x <= c.minX {
		return c.baked[0]
	}
	if x >= c.maxX {
		return c.baked[len(c.baked)-1]
	}
	pos := (x - c.minX) / (c.maxX - c.minX) * float64(len(c.baked)-1)
	i := int(pos)
	frac := pos - float64(i)
	if i+1 >= len(c.baked) {
		return c.baked[len(c.baked)-1]
	}
	return c.baked[i] + (c.baked[i+1]-c.baked[i])*frac
}

func (c *Curve) interpolate(x float64) float64 {
	pts := c.Points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	i := sort.Search(len(pts), func(i int) bool { return pts[i].X > x })
	a, b := pts[i-1], pts[i]
	if b.X == a.X {
		return b.Y
	}
	t := (x - a.X) / (b.X - a.X)
	return a.Y + (b.Y-a.Y)*t
}
