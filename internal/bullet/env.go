package bullet

import (
	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/pool"
	"github.com/l1jgo/bullets/internal/render"
	"go.uber.org/zap"
)

// Locator resolves homing targets.
type Locator interface {
	Alive(id ecs.EntityID) bool
	Position(id ecs.EntityID) (geom.Vec2, bool)
	Pointer() geom.Vec2
}

// Host owns the scene objects attached to bullets. Enable and Disable run the
// object's enable/disable hooks; Instantiate runs its spawn hook and
// InstantiateInPool its spawn-in-pool hook (the object starts disabled).
type Host interface {
	Locator
	Instantiate(template string) ecs.EntityID
	InstantiateInPool(template string) ecs.EntityID
	Enable(id ecs.EntityID)
	Disable(id ecs.EntityID)
	SetTransform(id ecs.EntityID, t geom.Transform2D)
	Transform(id ecs.EntityID) (geom.Transform2D, bool)
	Destroy(id ecs.EntityID)
}

// Env is what every batch of one factory shares.
type Env struct {
	Backend  collision.Backend
	Renderer render.Renderer
	Host     Host
	Bus      *event.Bus
	// Attachments holds idle attachments keyed by pooling id.
	Attachments *pool.Pool[uint32, ecs.EntityID]
	// Interpolation defers sink writes to Interpolate.
	Interpolation bool
	Log           *zap.Logger
	// Retire is called when a batch's last slot is disabled. pooled reports
	// whether the batch asked to be kept for reuse.
	Retire func(b *Batch, pooled bool)
}

// Defaults fills unset collaborators with no-op implementations and creates
// the attachment pool.
func (e *Env) Defaults() *Env {
	if e.Backend == nil {
		e.Backend = nopBackend{}
	}
	if e.Renderer == nil {
		e.Renderer = render.NopRenderer{}
	}
	if e.Host == nil {
		e.Host = nopHost{}
	}
	if e.Log == nil {
		e.Log = zap.NewNop()
	}
	if e.Attachments == nil {
		host := e.Host
		e.Attachments = pool.New[uint32, ecs.EntityID](func(id ecs.EntityID) { host.Destroy(id) })
	}
	return e
}

type nopBackend struct{}

func (nopBackend) CreateShapeGroup(collision.GroupConfig, collision.Listener) collision.GroupID {
	return 0
}
func (nopBackend) SetGroupConfig(collision.GroupID, collision.GroupConfig) {}
func (nopBackend) AddShape(collision.GroupID, geom.Vec2) int { return 0 }
func (nopBackend) SetShapeSize(collision.GroupID, int, geom.Vec2) {}
func (nopBackend) SetShapeTransform(collision.GroupID, int, geom.Transform2D) {}
func (nopBackend) SetShapeDisabled(collision.GroupID, int, bool) {}
func (nopBackend) DestroyShapeGroup(collision.GroupID) {}

type nopHost struct{}

func (nopHost) Alive(ecs.EntityID) bool { return false }
func (nopHost) Position(ecs.EntityID) (geom.Vec2, bool) { return geom.Vec2{}, false }
func (nopHost) Pointer() geom.Vec2 { return geom.Vec2{} }
func (nopHost) Instantiate(string) ecs.EntityID { return 0 }
func (nopHost) InstantiateInPool(string) ecs.EntityID { return 0 }
func (nopHost) Enable(ecs.EntityID) {}
func (nopHost) Disable(ecs.EntityID) {}
func (nopHost) SetTransform(ecs.EntityID, geom.Transform2D) {}
func (nopHost) Transform(ecs.EntityID) (geom.Transform2D, bool) { return geom.Transform2D{}, false }
func (nopHost) Destroy(ecs.EntityID) {}
