package bullet

import (
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
	"go.uber.org/zap"
)

// AttachmentState restores one live attachment.
type AttachmentState struct {
	Slot    int              `msgpack:"slot"`
	Spec    AttachmentSpec   `msgpack:"spec"`
	Current geom.Transform2D `msgpack:"current"`
}

// HomingState holds the targets of one deque. Slot -1 is the shared deque.
// Entity targets are not kept.
type HomingState struct {
	Slot    int       `msgpack:"slot"`
	Targets []Target  `msgpack:"targets"`
	Cached  geom.Vec2 `msgpack:"cached"`
	Reached bool      `msgpack:"reached"`
}

type OrbitState struct {
	Slot   int            `msgpack:"slot"`
	Radius float64        `msgpack:"radius"`
	Dir    OrbitDirection `msgpack:"dir"`
	Facing OrbitFacing    `msgpack:"facing"`
	Angle  float64        `msgpack:"angle"`
	Locked bool           `msgpack:"locked"`
}

type PatternState struct {
	Slot     int         `msgpack:"slot"`
	Path     *curve.Path `msgpack:"path"`
	Face     bool        `msgpack:"face"`
	Repeat   bool        `msgpack:"repeat"`
	Distance float64     `msgpack:"distance"`
}

// State is everything needed to continue simulating a batch.
type State struct {
	Kind     Kind `msgpack:"kind"`
	Capacity int  `msgpack:"capacity"`

	Transforms      []geom.Transform2D `msgpack:"transforms"`
	ShapeTransforms []geom.Transform2D `msgpack:"shape_transforms"`
	Previous        []geom.Transform2D `msgpack:"previous"`
	Velocities      []geom.Vec2        `msgpack:"velocities"`
	Directions      []geom.Vec2        `msgpack:"directions"`
	Speeds          []SpeedData        `msgpack:"speeds"`
	Rotations       []RotationData     `msgpack:"rotations"`
	Enabled         []bool             `msgpack:"enabled"`
	Collisions      []int              `msgpack:"collisions"`
	Pending         []Hit              `msgpack:"pending"`

	Textures          []render.TextureID `msgpack:"textures"`
	TextureIndex      int                `msgpack:"texture_index"`
	TextureTimer      float64            `msgpack:"texture_timer"`
	ChangeTimes       []float64          `msgpack:"change_times"`
	DefaultChangeTime float64            `msgpack:"default_change_time"`
	TextureSize       geom.Vec2          `msgpack:"texture_size"`
	TextureRotation   float64            `msgpack:"texture_rotation"`
	TexturePermanent  bool               `msgpack:"texture_permanent"`

	LifeTime          float64 `msgpack:"life_time"`
	MaxLifeTime       float64 `msgpack:"max_life_time"`
	Elapsed           float64 `msgpack:"elapsed"`
	Infinite          bool    `msgpack:"infinite"`
	LifeTimeOverEvent bool    `msgpack:"life_time_over_event"`

	Curves             *Curves   `msgpack:"curves"`
	Inherited          geom.Vec2 `msgpack:"inherited"`
	HasRotation        bool      `msgpack:"has_rotation"`
	RotateOnlyTextures bool      `msgpack:"rotate_only_textures"`
	StopRotationAtMax  bool      `msgpack:"stop_rotation_at_max"`
	AdjustDirection    bool      `msgpack:"adjust_direction"`
	BlockRotation      float64   `msgpack:"block_rotation"`

	Layer         uint32    `msgpack:"layer"`
	Mask          uint32    `msgpack:"mask"`
	Monitorable   bool      `msgpack:"monitorable"`
	MaxCollisions int       `msgpack:"max_collisions"`
	ShapeSize     geom.Vec2 `msgpack:"shape_size"`
	ShapeOffset   geom.Vec2 `msgpack:"shape_offset"`

	Attachments []AttachmentState `msgpack:"attachments"`
	Homing      HomingConfig      `msgpack:"homing"`
	HomingTimer float64           `msgpack:"homing_timer"`
	Targets     []HomingState     `msgpack:"targets"`
	Orbits      []OrbitState      `msgpack:"orbits"`
	Patterns    []PatternState    `msgpack:"patterns"`

	AutoPooling           bool `msgpack:"auto_pooling"`
	AttachmentAutoPooling bool `msgpack:"attachment_auto_pooling"`
	CustomData            any  `msgpack:"custom_data"`
}

// Save captures the batch. Timers are not saved.
func (b *Batch) Save() *State {
	s := &State{
		Kind:     b.kind,
		Capacity: b.capacity,

		Transforms:      append([]geom.Transform2D(nil), b.transforms...),
		ShapeTransforms: append([]geom.Transform2D(nil), b.shapeTransforms...),
		Previous:        append([]geom.Transform2D(nil), b.interp.prev...),
		Velocities:      append([]geom.Vec2(nil), b.velocities...),
		Directions:      append([]geom.Vec2(nil), b.directions...),
		Speeds:          append([]SpeedData(nil), b.speeds...),
		Rotations:       append([]RotationData(nil), b.rotations...),
		Enabled:         append([]bool(nil), b.enabled...),
		Collisions:      append([]int(nil), b.collisions...),
		Pending:         b.relay.Pending(),

		Textures:          append([]render.TextureID(nil), b.textures...),
		TextureIndex:      b.textureIndex,
		TextureTimer:      b.textureTimer,
		ChangeTimes:       append([]float64(nil), b.changeTimes...),
		DefaultChangeTime: b.defaultChangeTime,
		TextureSize:       b.textureSize,
		TextureRotation:   b.textureRotation,
		TexturePermanent:  b.texturePermanent,

		LifeTime:          b.lifeTime,
		MaxLifeTime:       b.maxLifeTime,
		Elapsed:           b.elapsed,
		Infinite:          b.infinite,
		LifeTimeOverEvent: b.lifeTimeOverEvent,

		Curves:             b.curves,
		Inherited:          b.inherited,
		HasRotation:        b.hasRotation,
		RotateOnlyTextures: b.rotateOnlyTextures,
		StopRotationAtMax:  b.stopRotationAtMax,
		AdjustDirection:    b.adjustDirection,
		BlockRotation:      b.blockRotation,

		Layer:         b.cfg.Layer,
		Mask:          b.cfg.Mask,
		Monitorable:   b.cfg.Monitorable,
		MaxCollisions: b.maxCollisions,
		ShapeSize:     b.shapeSize,
		ShapeOffset:   b.shapeOffset,

		Homing:      b.homingCfg,
		HomingTimer: b.homingTimer,

		AutoPooling:           b.autoPooling,
		AttachmentAutoPooling: b.attachmentAutoPooling,
		CustomData:            b.customData,
	}

	if t := b.shared.savable(); len(t) > 0 {
		s.Targets = append(s.Targets, HomingState{Slot: -1, Targets: t, Cached: b.shared.cached, Reached: b.shared.reached})
	}
	for i := 0; i < b.capacity; i++ {
		if !b.attachments[i].IsZero() && b.enabled[i] {
			s.Attachments = append(s.Attachments, AttachmentState{Slot: i, Spec: b.attachSpecs[i], Current: b.attachCurrent[i]})
		}
		if t := b.homing[i].savable(); len(t) > 0 {
			s.Targets = append(s.Targets, HomingState{Slot: i, Targets: t, Cached: b.homing[i].cached, Reached: b.homing[i].reached})
		}
		if o := b.orbits[i]; o.active {
			s.Orbits = append(s.Orbits, OrbitState{Slot: i, Radius: o.radius, Dir: o.dir, Facing: o.facing, Angle: o.angle, Locked: o.locked})
		}
		if p := b.patterns[i]; p.active {
			s.Patterns = append(s.Patterns, PatternState{Slot: i, Path: p.path, Face: p.face, Repeat: p.repeat, Distance: p.distance})
		}
	}
	return s
}

// Load rebuilds a fresh batch from s. It returns false when s is unusable.
func (b *Batch) Load(s *State) bool {
	n := s.Capacity
	if b.capacity != 0 || n <= 0 || len(s.Transforms) != n || len(s.Enabled) != n {
		b.log.Warn("快照資料無效", zap.Int("capacity", n), zap.Int("transforms", len(s.Transforms)))
		return false
	}
	b.kind = s.Kind
	b.cfg.Layer, b.cfg.Mask, b.cfg.Monitorable = s.Layer, s.Mask, s.Monitorable
	b.shapeSize = s.ShapeSize
	b.alloc(n)

	copy(b.transforms, s.Transforms)
	copy(b.shapeTransforms, s.ShapeTransforms)
	copy(b.velocities, s.Velocities)
	copy(b.directions, s.Directions)
	copy(b.speeds, s.Speeds)
	copy(b.rotations, s.Rotations)
	copy(b.collisions, s.Collisions)

	b.textures = append(b.textures[:0], s.Textures...)
	b.textureIndex = s.TextureIndex
	b.textureTimer = s.TextureTimer
	b.changeTimes = append(b.changeTimes[:0], s.ChangeTimes...)
	b.defaultChangeTime = s.DefaultChangeTime
	b.textureSize = s.TextureSize
	b.textureRotation = s.TextureRotation
	b.texturePermanent = s.TexturePermanent

	b.lifeTime, b.maxLifeTime, b.elapsed = s.LifeTime, s.MaxLifeTime, s.Elapsed
	b.infinite = s.Infinite
	b.lifeTimeOverEvent = s.LifeTimeOverEvent

	b.curves = s.Curves
	b.inherited = s.Inherited
	b.hasRotation = s.HasRotation
	b.rotateOnlyTextures = s.RotateOnlyTextures
	b.stopRotationAtMax = s.StopRotationAtMax
	b.adjustDirection = s.AdjustDirection
	b.blockRotation = s.BlockRotation
	b.maxCollisions = s.MaxCollisions
	b.shapeOffset = s.ShapeOffset
	b.homingCfg = s.Homing
	b.homingTimer = s.HomingTimer
	b.autoPooling = s.AutoPooling
	b.attachmentAutoPooling = s.AttachmentAutoPooling
	b.customData = s.CustomData

	for i := 0; i < n; i++ {
		b.env.Backend.SetShapeTransform(b.group, i, b.shapeTransforms[i])
		if s.Enabled[i] {
			b.enabled[i] = true
			b.active.Activate(i)
			b.activeCount++
			b.sink.SetInstanceTransform(i, b.transforms[i])
			b.env.Backend.SetShapeDisabled(b.group, i, false)
		} else {
			b.sink.SetInstanceTransform(i, b.transforms[i].ZeroScaled())
			b.env.Backend.SetShapeDisabled(b.group, i, true)
		}
		b.interp.reset(b, i)
		if len(s.Previous) == n {
			b.interp.prev[i] = s.Previous[i]
		}
	}
	// hits recorded in the saved tick replay on the next update
	hits := s.Pending[:0:0]
	for _, h := range s.Pending {
		if h.Slot >= 0 && h.Slot < n {
			hits = append(hits, h)
		}
	}
	b.relay.Restore(hits)

	loc := b.env.Host
	for _, h := range s.Targets {
		d := &b.shared
		if h.Slot >= 0 {
			if h.Slot >= n {
				continue
			}
			d = &b.homing[h.Slot]
		}
		for _, t := range h.Targets {
			d.PushBack(t, loc)
		}
		d.cached, d.reached = h.Cached, h.Reached
	}
	for _, o := range s.Orbits {
		if o.Slot >= 0 && o.Slot < n {
			b.orbits[o.Slot] = orbit{active: true, radius: o.Radius, dir: o.Dir, facing: o.Facing, angle: o.Angle, locked: o.Locked}
		}
	}
	for _, p := range s.Patterns {
		if p.Slot >= 0 && p.Slot < n && p.Path != nil {
			b.patterns[p.Slot] = pattern{active: true, path: p.Path, face: p.Face, repeat: p.Repeat, distance: p.Distance}
		}
	}
	for _, a := range s.Attachments {
		if a.Slot < 0 || a.Slot >= n || !b.enabled[a.Slot] {
			continue
		}
		b.attach(a.Slot, a.Spec)
		if id := b.attachments[a.Slot]; !id.IsZero() {
			b.attachCurrent[a.Slot] = a.Current
			b.interp.prevAttach[a.Slot] = a.Current
			loc.SetTransform(id, a.Current)
		}
	}

	if len(b.textures) > 0 && b.textureIndex < len(b.textures) {
		b.sink.SetTexture(b.textures[b.textureIndex])
	}
	b.isActive = b.activeCount > 0
	b.sink.SetVisible(b.isActive)
	return true
}
