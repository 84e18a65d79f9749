package bullet

import "github.com/l1jgo/bullets/internal/geom"

// Blend returns the render transform at fraction f between two ticks. The
// endpoints are returned exactly.
func Blend(prev, curr geom.Transform2D, f float64) geom.Transform2D {
	if f <= 0 {
		return prev
	}
	if f >= 1 {
		return curr
	}
	return prev.Lerp(curr, f)
}

// Interpolator keeps the transforms of the previous tick.
type Interpolator struct {
	prev       []geom.Transform2D
	prevAttach []geom.Transform2D
}

func (ip *Interpolator) alloc(n int) {
	ip.prev = make([]geom.Transform2D, n)
	ip.prevAttach = make([]geom.Transform2D, n)
}

// Previous returns the cached transform of slot i.
func (ip *Interpolator) Previous(i int) geom.Transform2D { return ip.prev[i] }

func (ip *Interpolator) snapshot(b *Batch) {
	for _, i := range b.active.Dense() {
		ip.prev[i] = b.transforms[i]
		ip.prevAttach[i] = b.attachCurrent[i]
	}
}

// reset makes slot i render at its current transform.
func (ip *Interpolator) reset(b *Batch, i int) {
	ip.prev[i] = b.transforms[i]
	ip.prevAttach[i] = b.attachCurrent[i]
}

// Interpolate writes blended transforms of every enabled slot to the sink
// and moves their attachments.
func (b *Batch) Interpolate(f float64) {
	if !b.isActive {
		return
	}
	host := b.env.Host
	for _, i := range b.active.Dense() {
		b.sink.SetInstanceTransform(i, Blend(b.interp.prev[i], b.transforms[i], f))
		if id := b.attachments[i]; !id.IsZero() {
			host.SetTransform(id, Blend(b.interp.prevAttach[i], b.attachCurrent[i], f))
		}
	}
}
