package bullet

import (
	"math"
	"testing"

	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func nearVec(a, b geom.Vec2) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

// fakeHost is an in-memory scene.
type fakeHost struct {
	next      ecs.EntityID
	alive     map[ecs.EntityID]bool
	enabled   map[ecs.EntityID]bool
	xforms    map[ecs.EntityID]geom.Transform2D
	positions map[ecs.EntityID]geom.Vec2
	pointer   geom.Vec2

	spawned, pooled, destroyed, enables, disables int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		alive:     map[ecs.EntityID]bool{},
		enabled:   map[ecs.EntityID]bool{},
		xforms:    map[ecs.EntityID]geom.Transform2D{},
		positions: map[ecs.EntityID]geom.Vec2{},
	}
}

func (h *fakeHost) create() ecs.EntityID {
	h.next++
	h.alive[h.next] = true
	h.xforms[h.next] = geom.Identity()
	return h.next
}

func (h *fakeHost) Alive(id ecs.EntityID) bool { return h.alive[id] }

func (h *fakeHost) Position(id ecs.EntityID) (geom.Vec2, bool) {
	p, ok := h.positions[id]
	return p, ok && h.alive[id]
}

func (h *fakeHost) Pointer() geom.Vec2 { return h.pointer }

func (h *fakeHost) Instantiate(string) ecs.EntityID {
	h.spawned++
	id := h.create()
	h.enabled[id] = true
	return id
}

func (h *fakeHost) InstantiateInPool(string) ecs.EntityID {
	h.pooled++
	return h.create()
}

func (h *fakeHost) Enable(id ecs.EntityID) {
	h.enables++
	h.enabled[id] = true
}

func (h *fakeHost) Disable(id ecs.EntityID) {
	h.disables++
	h.enabled[id] = false
}

func (h *fakeHost) SetTransform(id ecs.EntityID, t geom.Transform2D) { h.xforms[id] = t }

func (h *fakeHost) Transform(id ecs.EntityID) (geom.Transform2D, bool) {
	t, ok := h.xforms[id]
	return t, ok
}

func (h *fakeHost) Destroy(id ecs.EntityID) {
	h.destroyed++
	delete(h.alive, id)
}

type retirement struct {
	batch  *Batch
	pooled bool
}

type rig struct {
	env      *Env
	renderer *render.RecordingRenderer
	host     *fakeHost
	bus      *event.Bus
	retired  []retirement
	nextID   uint64
}

func newRig(t *testing.T) *rig {
	t.Helper()
	r := &rig{
		renderer: &render.RecordingRenderer{},
		host:     newFakeHost(),
		bus:      event.NewBus(),
	}
	r.env = &Env{
		Renderer: r.renderer,
		Host:     r.host,
		Bus:      r.bus,
		Retire: func(b *Batch, pooled bool) {
			r.retired = append(r.retired, retirement{b, pooled})
		},
	}
	return r
}

func (r *rig) spawn(t *testing.T, data *SpawnData) *Batch {
	t.Helper()
	r.nextID++
	b := New(r.nextID, data.Kind, r.env)
	if !b.Spawn(data, geom.Vec2{}) {
		t.Fatalf("Spawn failed")
	}
	return b
}

func (r *rig) sink(b *Batch) *render.Recorder {
	return b.Sink().(*render.Recorder)
}

// line returns n transforms at the origin facing +X.
func line(n int) []geom.Transform2D {
	out := make([]geom.Transform2D, n)
	for i := range out {
		out[i] = geom.Identity()
	}
	return out
}

func directional(n int, speed SpeedData) *SpawnData {
	d := NewSpawnData(Directional, line(n))
	d.Speed = []SpeedData{speed}
	d.LifeTime = 10
	return d
}
