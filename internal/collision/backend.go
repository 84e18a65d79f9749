package collision

import (
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
)

// Status reports whether an overlap started or ended.
type Status int

const (
	StatusAdded Status = iota
	StatusRemoved
)

// Kind tells what sort of object a bullet shape touched.
type Kind int

const (
	KindArea Kind = iota
	KindBody
)

func (k Kind) String() string {
	if k == KindBody {
		return "body"
	}
	return "area"
}

// GroupID identifies one shape group (one per batch).
type GroupID uint32

// GroupConfig holds the collision filter of a shape group.
type GroupConfig struct {
	Layer       uint32
	Mask        uint32
	Monitorable bool
}

// Overlap is delivered to a group's listener for every start or end of
// contact between one of its shapes and a target.
type Overlap struct {
	Status     Status
	Kind       Kind
	Other      ecs.EntityID
	OtherShape int
	OwnShape   int
}

// Listener receives overlaps. It may be called at any point inside the
// backend's own step and must not mutate simulation state.
type Listener func(Overlap)

// Backend is the broad-phase service bullets register their shapes with.
type Backend interface {
	CreateShapeGroup(cfg GroupConfig, listener Listener) GroupID
	SetGroupConfig(g GroupID, cfg GroupConfig)
	// AddShape registers a rectangle of the given full size and returns its
	// index inside the group. Indexes are dense and start at 0.
	AddShape(g GroupID, size geom.Vec2) int
	SetShapeSize(g GroupID, shape int, size geom.Vec2)
	SetShapeTransform(g GroupID, shape int, t geom.Transform2D)
	SetShapeDisabled(g GroupID, shape int, disabled bool)
	DestroyShapeGroup(g GroupID)
}
