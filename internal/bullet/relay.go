package bullet

import (
	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
)

// Hit is one recorded contact start.
type Hit struct {
	Slot       int            `msgpack:"slot"`
	Other      ecs.EntityID   `msgpack:"other"`
	OtherShape int            `msgpack:"other_shape"`
	Kind       collision.Kind `msgpack:"kind"`
}

// Relay buffers backend notifications so they are applied inside the
// batch's own update, never from the backend's step.
type Relay struct {
	pending []Hit
}

// Record is the collision.Listener of a batch's shape group. Contact ends are
// ignored.
func (r *Relay) Record(o collision.Overlap) {
	if o.Status != collision.StatusAdded {
		return
	}
	r.pending = append(r.pending, Hit{Slot: o.OwnShape, Other: o.Other, OtherShape: o.OtherShape, Kind: o.Kind})
}

// Replay visits the recorded hits in arrival order and empties the buffer.
// Clearing the relay from inside fn stops the replay.
func (r *Relay) Replay(fn func(Hit)) {
	for k := 0; k < len(r.pending); k++ {
		fn(r.pending[k])
	}
	r.pending = r.pending[:0]
}

func (r *Relay) Len() int { return len(r.pending) }

// Pending copies the hits not yet replayed.
func (r *Relay) Pending() []Hit {
	if len(r.pending) == 0 {
		return nil
	}
	return append([]Hit(nil), r.pending...)
}

// Restore replaces the buffer with hits, as if they had just been recorded.
func (r *Relay) Restore(hits []Hit) { r.pending = append(r.pending[:0], hits...) }

func (r *Relay) Clear() { r.pending = r.pending[:0] }
