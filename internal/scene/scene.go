package scene

import (
	"errors"
	"fmt"

	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

var ErrDuplicateTemplate = errors.New("duplicate template")

// Hook runs on a node lifecycle transition.
type Hook func(s *Scene, id ecs.EntityID)

// Body makes a node a collision target.
type Body struct {
	Kind  collision.Kind
	Layer uint32
	Size  geom.Vec2
}

// Template describes what Instantiate builds.
type Template struct {
	Name string
	Body *Body

	OnSpawn       Hook
	OnSpawnInPool Hook
	OnEnable      Hook
	OnDisable     Hook
}

// Node is the scene component every entity carries.
type Node struct {
	Template  string
	Transform geom.Transform2D
	Velocity  geom.Vec2
	Enabled   bool
	dying     bool
}

// Scene is a flat entity scene backed by the ECS world. It hosts bullet
// attachments and homing targets and, when a grid is attached, mirrors its
// bodies into the collision backend.
type Scene struct {
	world     *ecs.World
	nodes     *ecs.PtrComponentStore[Node]
	bodies    *ecs.PtrComponentStore[Body]
	templates map[string]*Template
	pointer   geom.Vec2
	grid      *collision.Grid
	warned    map[string]bool
	log       *zap.Logger
}

func New(log *zap.Logger) *Scene {
	s := &Scene{
		world:     ecs.NewWorld(),
		nodes:     ecs.NewPtrComponentStore[Node](),
		bodies:    ecs.NewPtrComponentStore[Body](),
		templates: make(map[string]*Template, 16),
		warned:    make(map[string]bool),
		log:       log,
	}
	s.world.Registry().Register(s.nodes)
	s.world.Registry().Register(s.bodies)
	s.world.OnDestroy(func(id ecs.EntityID) {
		if s.grid != nil && s.bodies.Has(id) {
			s.grid.RemoveTarget(id)
		}
	})
	return s
}

// AttachGrid makes SyncTargets publish bodies to g.
func (s *Scene) AttachGrid(g *collision.Grid) { s.grid = g }

func (s *Scene) Register(t Template) error {
	if t.Name == "" {
		return fmt.Errorf("register template: empty name")
	}
	if _, ok := s.templates[t.Name]; ok {
		return fmt.Errorf("register template %q: %w", t.Name, ErrDuplicateTemplate)
	}
	tt := t
	s.templates[t.Name] = &tt
	return nil
}

func (s *Scene) Template(name string) (*Template, bool) {
	t, ok := s.templates[name]
	return t, ok
}

func (s *Scene) create(template string, enabled bool) (ecs.EntityID, *Template) {
	id := s.world.CreateEntity()
	s.nodes.Set(id, &Node{Template: template, Transform: geom.Identity(), Enabled: enabled})
	tmpl, ok := s.templates[template]
	if !ok {
		if !s.warned[template] {
			s.warned[template] = true
			s.log.Warn("未知的場景模板，建立空節點", zap.String("template", template))
		}
		return id, nil
	}
	if tmpl.Body != nil {
		b := *tmpl.Body
		s.bodies.Set(id, &b)
	}
	return id, tmpl
}

// Instantiate creates an enabled node and runs its spawn hook.
func (s *Scene) Instantiate(template string) ecs.EntityID {
	id, tmpl := s.create(template, true)
	if tmpl != nil && tmpl.OnSpawn != nil {
		tmpl.OnSpawn(s, id)
	}
	return id
}

// InstantiateInPool creates a disabled node and runs its spawn-in-pool hook.
func (s *Scene) InstantiateInPool(template string) ecs.EntityID {
	id, tmpl := s.create(template, false)
	if tmpl != nil && tmpl.OnSpawnInPool != nil {
		tmpl.OnSpawnInPool(s, id)
	}
	return id
}

// Spawn instantiates template at t.
func (s *Scene) Spawn(template string, t geom.Transform2D) ecs.EntityID {
	id := s.Instantiate(template)
	s.SetTransform(id, t)
	return id
}

func (s *Scene) node(id ecs.EntityID) (*Node, bool) {
	if !s.world.Alive(id) {
		return nil, false
	}
	n, ok := s.nodes.Get(id)
	if !ok || n.dying {
		return nil, false
	}
	return n, true
}

func (s *Scene) hook(n *Node, pick func(*Template) Hook, id ecs.EntityID) {
	if tmpl, ok := s.templates[n.Template]; ok {
		if h := pick(tmpl); h != nil {
			h(s, id)
		}
	}
}

func (s *Scene) Enable(id ecs.EntityID) {
	n, ok := s.node(id)
	if !ok || n.Enabled {
		return
	}
	n.Enabled = true
	s.hook(n, func(t *Template) Hook { return t.OnEnable }, id)
}

func (s *Scene) Disable(id ecs.EntityID) {
	n, ok := s.node(id)
	if !ok || !n.Enabled {
		return
	}
	n.Enabled = false
	s.hook(n, func(t *Template) Hook { return t.OnDisable }, id)
}

// TemplateOf returns the template name id was instantiated from.
func (s *Scene) TemplateOf(id ecs.EntityID) (string, bool) {
	n, ok := s.node(id)
	if !ok {
		return "", false
	}
	return n.Template, true
}

func (s *Scene) Enabled(id ecs.EntityID) bool {
	n, ok := s.node(id)
	return ok && n.Enabled
}

// Alive reports whether id names a node that is not queued for destruction.
func (s *Scene) Alive(id ecs.EntityID) bool {
	_, ok := s.node(id)
	return ok
}

func (s *Scene) Position(id ecs.EntityID) (geom.Vec2, bool) {
	n, ok := s.node(id)
	if !ok {
		return geom.Vec2{}, false
	}
	return n.Transform.Origin, true
}

func (s *Scene) SetTransform(id ecs.EntityID, t geom.Transform2D) {
	if n, ok := s.node(id); ok {
		n.Transform = t
	}
}

func (s *Scene) Transform(id ecs.EntityID) (geom.Transform2D, bool) {
	n, ok := s.node(id)
	if !ok {
		return geom.Transform2D{}, false
	}
	return n.Transform, true
}

func (s *Scene) SetVelocity(id ecs.EntityID, v geom.Vec2) {
	if n, ok := s.node(id); ok {
		n.Velocity = v
	}
}

// Destroy queues id for the next Flush. The node reads as dead right away.
func (s *Scene) Destroy(id ecs.EntityID) {
	n, ok := s.node(id)
	if !ok {
		return
	}
	n.dying = true
	n.Enabled = false
	s.world.MarkForDestruction(id)
}

// Flush destroys every node queued by Destroy.
func (s *Scene) Flush() { s.world.FlushDestroyQueue() }

func (s *Scene) Pointer() geom.Vec2 { return s.pointer }

func (s *Scene) SetPointer(p geom.Vec2) { s.pointer = p }

// Len is the number of live nodes.
func (s *Scene) Len() int { return s.world.Len() }

// Each visits every live node.
func (s *Scene) Each(fn func(ecs.EntityID, *Node)) {
	s.nodes.Each(func(id ecs.EntityID, n *Node) {
		if !n.dying {
			fn(id, n)
		}
	})
}

// Step moves enabled nodes by their velocity.
func (s *Scene) Step(dt float64) {
	s.nodes.Each(func(_ ecs.EntityID, n *Node) {
		if n.Enabled && !n.Velocity.IsZero() {
			n.Transform.Origin = n.Transform.Origin.Add(n.Velocity.Scale(dt))
		}
	})
}

// SyncTargets publishes every enabled body to the attached grid and withdraws
// disabled ones.
func (s *Scene) SyncTargets() {
	if s.grid == nil {
		return
	}
	ecs.Each2(s.nodes, s.bodies, func(id ecs.EntityID, n *Node, b *Body) {
		if !n.Enabled || n.dying {
			s.grid.RemoveTarget(id)
			return
		}
		s.grid.PutTarget(collision.Target{
			ID:       id,
			Kind:     b.Kind,
			Layer:    b.Layer,
			Position: n.Transform.Origin,
			Size:     b.Size,
		})
	})
}
