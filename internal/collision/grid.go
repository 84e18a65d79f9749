package collision

import (
	"math"

	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

// DefaultCellSize is used when NewGrid is given a non-positive cell size.
const DefaultCellSize = 64.0

type cellKey struct{ cx, cy int32 }

type pairKey struct {
	group       GroupID
	shape       int
	target      ecs.EntityID
	targetShape int
}

type aabb struct {
	min, max geom.Vec2
}

func (a aabb) overlaps(b aabb) bool {
	return a.min.X <= b.max.X && a.max.X >= b.min.X &&
		a.min.Y <= b.max.Y && a.max.Y >= b.min.Y
}

type shape struct {
	size     geom.Vec2
	xform    geom.Transform2D
	disabled bool
}

type group struct {
	cfg      GroupConfig
	listener Listener
	shapes   []shape
}

// Target is an area or body bullets can hit. The grid keeps one box per ID;
// Shape is that box's index on its owner and is reported as
// Overlap.OtherShape.
type Target struct {
	ID       ecs.EntityID
	Kind     Kind
	Layer    uint32
	Shape    int
	Position geom.Vec2
	Size     geom.Vec2
}

func (t *Target) bounds() aabb {
	half := t.Size.Scale(0.5)
	return aabb{min: t.Position.Sub(half), max: t.Position.Add(half)}
}

// Grid is a uniform spatial hash broad phase. Targets are re-hashed on every
// Step; bullet shapes query the hash and overlap changes are reported to the
// owning group's listener from inside Step.
type Grid struct {
	cellSize float64
	groups   map[GroupID]*group
	nextID   GroupID
	targets  map[ecs.EntityID]*Target
	cells    map[cellKey][]*Target
	current  map[pairKey]Kind
	previous map[pairKey]Kind
	seen     map[ecs.EntityID]struct{}
	log      *zap.Logger
}

func NewGrid(cellSize float64, log *zap.Logger) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		groups:   make(map[GroupID]*group, 64),
		targets:  make(map[ecs.EntityID]*Target, 64),
		cells:    make(map[cellKey][]*Target, 256),
		current:  make(map[pairKey]Kind, 256),
		previous: make(map[pairKey]Kind, 256),
		seen:     make(map[ecs.EntityID]struct{}, 16),
		log:      log,
	}
}

func (g *Grid) CreateShapeGroup(cfg GroupConfig, listener Listener) GroupID {
	g.nextID++
	g.groups[g.nextID] = &group{cfg: cfg, listener: listener}
	return g.nextID
}

func (g *Grid) SetGroupConfig(id GroupID, cfg GroupConfig) {
	if grp, ok := g.groups[id]; ok {
		grp.cfg = cfg
	}
}

func (g *Grid) AddShape(id GroupID, size geom.Vec2) int {
	grp, ok := g.groups[id]
	if !ok {
		g.log.Warn("add shape to unknown group", zap.Uint32("group", uint32(id)))
		return -1
	}
	grp.shapes = append(grp.shapes, shape{size: size, xform: geom.Identity()})
	return len(grp.shapes) - 1
}

func (g *Grid) shape(id GroupID, idx int) *shape {
	grp, ok := g.groups[id]
	if !ok || idx < 0 || idx >= len(grp.shapes) {
		return nil
	}
	return &grp.shapes[idx]
}

func (g *Grid) SetShapeSize(id GroupID, idx int, size geom.Vec2) {
	if s := g.shape(id, idx); s != nil {
		s.size = size
	}
}

func (g *Grid) SetShapeTransform(id GroupID, idx int, t geom.Transform2D) {
	if s := g.shape(id, idx); s != nil {
		s.xform = t
	}
}

func (g *Grid) SetShapeDisabled(id GroupID, idx int, disabled bool) {
	if s := g.shape(id, idx); s != nil {
		s.disabled = disabled
	}
}

// DestroyShapeGroup drops the group. No exit notifications are sent for its
// open overlaps.
func (g *Grid) DestroyShapeGroup(id GroupID) {
	delete(g.groups, id)
	for k := range g.previous {
		if k.group == id {
			delete(g.previous, k)
		}
	}
}

// GroupCount returns the number of live shape groups.
func (g *Grid) GroupCount() int { return len(g.groups) }

// ShapeCount returns the number of shapes in a group, or 0 if unknown.
func (g *Grid) ShapeCount(id GroupID) int {
	if grp, ok := g.groups[id]; ok {
		return len(grp.shapes)
	}
	return 0
}

// ShapeDisabled reports whether a shape is disabled. Unknown shapes report true.
func (g *Grid) ShapeDisabled(id GroupID, idx int) bool {
	s := g.shape(id, idx)
	return s == nil || s.disabled
}

// ShapeTransform returns the last transform pushed for a shape.
func (g *Grid) ShapeTransform(id GroupID, idx int) geom.Transform2D {
	if s := g.shape(id, idx); s != nil {
		return s.xform
	}
	return geom.Transform2D{}
}

// Config returns a group's filter.
func (g *Grid) Config(id GroupID) (GroupConfig, bool) {
	grp, ok := g.groups[id]
	if !ok {
		return GroupConfig{}, false
	}
	return grp.cfg, true
}

// PutTarget registers or moves a target.
func (g *Grid) PutTarget(t Target) {
	if cur, ok := g.targets[t.ID]; ok {
		*cur = t
		return
	}
	tt := t
	g.targets[t.ID] = &tt
}

func (g *Grid) RemoveTarget(id ecs.EntityID) {
	delete(g.targets, id)
}

func (g *Grid) TargetCount() int { return len(g.targets) }

func (g *Grid) cellRange(b aabb) (cellKey, cellKey) {
	lo := cellKey{int32(math.Floor(b.min.X / g.cellSize)), int32(math.Floor(b.min.Y / g.cellSize))}
	hi := cellKey{int32(math.Floor(b.max.X / g.cellSize)), int32(math.Floor(b.max.Y / g.cellSize))}
	return lo, hi
}

func (g *Grid) rebuild() {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		g.cells[k] = bucket[:0]
	}
	for _, t := range g.targets {
		lo, hi := g.cellRange(t.bounds())
		for cy := lo.cy; cy <= hi.cy; cy++ {
			for cx := lo.cx; cx <= hi.cx; cx++ {
				k := cellKey{cx, cy}
				g.cells[k] = append(g.cells[k], t)
			}
		}
	}
}

func shapeBounds(s *shape) aabb {
	hx, hy := s.size.X*0.5, s.size.Y*0.5
	corners := [4]geom.Vec2{{X: -hx, Y: -hy}, {X: hx, Y: -hy}, {X: hx, Y: hy}, {X: -hx, Y: hy}}
	b := aabb{min: geom.V(math.Inf(1), math.Inf(1)), max: geom.V(math.Inf(-1), math.Inf(-1))}
	for _, c := range corners {
		p := s.xform.Xform(c)
		b.min.X = math.Min(b.min.X, p.X)
		b.min.Y = math.Min(b.min.Y, p.Y)
		b.max.X = math.Max(b.max.X, p.X)
		b.max.Y = math.Max(b.max.Y, p.Y)
	}
	return b
}

// Step recomputes every overlap and notifies listeners of changes: added
// overlaps first, then removed ones.
func (g *Grid) Step() {
	g.rebuild()
	clear(g.current)

	for gid, grp := range g.groups {
		if grp.cfg.Mask == 0 {
			continue
		}
		for si := range grp.shapes {
			s := &grp.shapes[si]
			if s.disabled {
				continue
			}
			b := shapeBounds(s)
			lo, hi := g.cellRange(b)
			clear(g.seen)
			for cy := lo.cy; cy <= hi.cy; cy++ {
				for cx := lo.cx; cx <= hi.cx; cx++ {
					for _, t := range g.cells[cellKey{cx, cy}] {
						if _, dup := g.seen[t.ID]; dup {
							continue
						}
						g.seen[t.ID] = struct{}{}
						if grp.cfg.Mask&t.Layer == 0 || !b.overlaps(t.bounds()) {
							continue
						}
						g.current[pairKey{gid, si, t.ID, t.Shape}] = t.Kind
					}
				}
			}
		}
	}

	for k, kind := range g.current {
		if _, was := g.previous[k]; was {
			continue
		}
		g.notify(k, kind, StatusAdded)
	}
	for k, kind := range g.previous {
		if _, still := g.current[k]; still {
			continue
		}
		g.notify(k, kind, StatusRemoved)
	}
	g.previous, g.current = g.current, g.previous
}

func (g *Grid) notify(k pairKey, kind Kind, status Status) {
	grp, ok := g.groups[k.group]
	if !ok || grp.listener == nil {
		return
	}
	grp.listener(Overlap{
		Status:     status,
		Kind:       kind,
		Other:      k.target,
		OtherShape: k.targetShape,
		OwnShape:   k.shape,
	})
}
