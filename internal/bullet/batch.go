package bullet

import (
	"github.com/l1jgo/bullets/internal/collision"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/core/event"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
	"github.com/l1jgo/bullets/internal/sparse"
	"go.uber.org/zap"
)

// Batch is a fixed-capacity group of bullets stored as parallel slices. All
// slot slices are allocated by the first Spawn and never resized.
type Batch struct {
	id   uint64
	kind Kind
	env  *Env
	log  *zap.Logger

	capacity    int
	activeCount int
	active      *sparse.ActiveSet
	isActive    bool
	deleted     bool

	sink     render.Sink
	group    collision.GroupID
	hasGroup bool
	relay    Relay
	interp   Interpolator

	// per slot
	transforms      []geom.Transform2D
	shapeTransforms []geom.Transform2D
	velocities      []geom.Vec2
	directions      []geom.Vec2
	speeds          []SpeedData
	rotations       []RotationData
	enabled         []bool
	collisions      []int
	attachments     []ecs.EntityID
	attachSpecs     []AttachmentSpec
	attachLocal     []geom.Transform2D
	attachCurrent   []geom.Transform2D
	homing          []HomingDeque
	orbits          []orbit
	patterns        []pattern

	// textures
	textures          []render.TextureID
	textureIndex      int
	textureTimer      float64
	changeTimes       []float64
	defaultChangeTime float64
	textureSize       geom.Vec2
	textureRotation   float64
	texturePermanent  bool

	// life time
	lifeTime          float64
	maxLifeTime       float64
	elapsed           float64
	infinite          bool
	lifeTimeOverEvent bool

	// movement
	curves             *Curves
	inherited          geom.Vec2
	hasRotation        bool
	rotateOnlyTextures bool
	stopRotationAtMax  bool
	adjustDirection    bool
	blockRotation      float64

	// collision
	cfg           collision.GroupConfig
	maxCollisions int
	shapeSize     geom.Vec2
	shapeOffset   geom.Vec2

	// homing
	homingCfg   HomingConfig
	homingTimer float64
	shared      HomingDeque
	popSlots    []int
	popShared   bool

	autoPooling           bool
	attachmentAutoPooling bool
	customData            any

	timers    []timer
	nextTimer TimerID
	dueTimers []dueTimer
}

// New returns an empty batch. It holds no slots until Spawn, SpawnDisabled
// or Load.
func New(id uint64, kind Kind, env *Env) *Batch {
	env.Defaults()
	return &Batch{
		id:     id,
		kind:   kind,
		env:    env,
		log:    env.Log.With(zap.Uint64("batch", id), zap.Stringer("kind", kind)),
		active: sparse.NewActiveSet(0),
	}
}

func (b *Batch) ID() uint64 { return b.id }
func (b *Batch) Kind() Kind { return b.kind }
func (b *Batch) Capacity() int { return b.capacity }
func (b *Batch) ActiveCount() int { return b.activeCount }

// Active reports whether the batch is being simulated. A retired batch is
// inactive until Enable.
func (b *Batch) Active() bool { return b.isActive }
func (b *Batch) Deleted() bool { return b.deleted }

// Sink returns the render sink the batch writes to.
func (b *Batch) Sink() render.Sink { return b.sink }

// ShapeGroup returns the backend group holding the slot shapes.
func (b *Batch) ShapeGroup() collision.GroupID { return b.group }

func (b *Batch) alloc(n int) {
	b.capacity = n
	b.active.Resize(n)
	b.transforms = make([]geom.Transform2D, n)
	b.shapeTransforms = make([]geom.Transform2D, n)
	b.velocities = make([]geom.Vec2, n)
	b.directions = make([]geom.Vec2, n)
	b.speeds = make([]SpeedData, n)
	b.rotations = make([]RotationData, n)
	b.enabled = make([]bool, n)
	b.collisions = make([]int, n)
	b.attachments = make([]ecs.EntityID, n)
	b.attachSpecs = make([]AttachmentSpec, n)
	b.attachLocal = make([]geom.Transform2D, n)
	b.attachCurrent = make([]geom.Transform2D, n)
	b.homing = make([]HomingDeque, n)
	b.orbits = make([]orbit, n)
	b.patterns = make([]pattern, n)
	b.interp.alloc(n)

	b.sink = b.env.Renderer.NewBatch(n)
	b.group = b.env.Backend.CreateShapeGroup(b.cfg, b.relay.Record)
	b.hasGroup = true
	for i := 0; i < n; i++ {
		b.env.Backend.AddShape(b.group, b.shapeSize)
	}
}

// Spawn allocates the batch for data and activates every slot. offset is
// added to every slot's velocity.
func (b *Batch) Spawn(data *SpawnData, offset geom.Vec2) bool {
	if b.capacity != 0 {
		b.log.Warn("批次已經生成過", zap.Int("capacity", b.capacity))
		return false
	}
	n := data.Capacity()
	if n == 0 {
		b.log.Warn("生成資料沒有任何 transform")
		return false
	}
	b.applyConfig(data, offset)
	b.alloc(n)
	b.applySlots(data)
	return true
}

// SpawnDisabled allocates capacity slots with every slot disabled, ready to be
// pushed into a pool.
func (b *Batch) SpawnDisabled(capacity int) bool {
	if b.capacity != 0 || capacity <= 0 {
		return false
	}
	b.cfg = collision.GroupConfig{Layer: 1, Mask: 1}
	b.shapeSize = DefaultShapeSize
	b.alloc(capacity)
	for i := 0; i < capacity; i++ {
		b.sink.SetInstanceTransform(i, geom.Transform2D{})
		b.env.Backend.SetShapeDisabled(b.group, i, true)
	}
	b.sink.SetVisible(false)
	b.autoPooling = true
	return true
}

// Enable reuses a retired batch for data. The payload must have exactly the
// batch's capacity; no slot slice is reallocated.
func (b *Batch) Enable(data *SpawnData, offset geom.Vec2) bool {
	if b.deleted {
		return false
	}
	if data.Capacity() != b.capacity {
		b.log.Warn("容量不符，無法重用批次",
			zap.Int("capacity", b.capacity), zap.Int("transforms", data.Capacity()))
		return false
	}
	if b.isActive {
		b.log.Warn("批次仍在使用中")
		return false
	}
	b.applyConfig(data, offset)
	b.env.Backend.SetGroupConfig(b.group, b.cfg)
	for i := 0; i < b.capacity; i++ {
		b.env.Backend.SetShapeSize(b.group, i, b.shapeSize)
	}
	b.applySlots(data)
	return true
}

func (b *Batch) applyConfig(data *SpawnData, offset geom.Vec2) {
	b.kind = data.Kind
	b.inherited = offset

	b.textures = append(b.textures[:0], data.Textures...)
	b.textureIndex = 0
	if data.TextureIndex >= 0 && data.TextureIndex < len(b.textures) {
		b.textureIndex = data.TextureIndex
	}
	b.changeTimes = append(b.changeTimes[:0], data.ChangeTextureTimes...)
	b.defaultChangeTime = data.DefaultChangeTextureTime
	if b.defaultChangeTime <= 0 {
		b.defaultChangeTime = DefaultChangeTextureTime
	}
	b.textureTimer = b.textureTime(b.textureIndex)
	b.textureSize = data.TextureSize
	b.textureRotation = data.TextureRotation
	b.texturePermanent = data.TextureRotationPermanent

	b.maxLifeTime = data.LifeTime
	b.lifeTime = data.LifeTime
	b.elapsed = 0
	b.infinite = data.LifeTimeInfinite
	b.lifeTimeOverEvent = data.LifeTimeOverEvent

	b.curves = data.Curves
	b.hasRotation = len(data.Rotation) > 0
	b.rotateOnlyTextures = data.RotateOnlyTextures
	b.stopRotationAtMax = data.StopRotationWhenMaxReached
	b.adjustDirection = data.AdjustDirectionBasedOnRotation
	b.blockRotation = data.BlockRotation

	b.cfg = collision.GroupConfig{Layer: data.Layer, Mask: data.Mask, Monitorable: data.Monitorable}
	b.maxCollisions = data.MaxCollisions
	b.shapeSize = data.ShapeSize
	b.shapeOffset = data.ShapeOffset

	b.homingCfg = data.Homing
	b.homingTimer = data.Homing.UpdateInterval
	b.shared.Clear()
	b.popSlots = b.popSlots[:0]
	b.popShared = false

	b.autoPooling = data.AutoPooling
	b.attachmentAutoPooling = data.AttachmentAutoPooling
	b.customData = data.CustomData
	b.relay.Clear()
}

func (b *Batch) applySlots(data *SpawnData) {
	n := b.capacity
	var malformed []string
	if b.kind == Directional && len(data.Speed) != n && len(data.Speed) != 1 {
		malformed = append(malformed, "speed")
	}
	if len(data.Rotation) > 1 && len(data.Rotation) != n {
		malformed = append(malformed, "rotation")
	}
	if len(data.ChangeTextureTimes) > 1 && len(data.ChangeTextureTimes) != len(data.Textures) {
		malformed = append(malformed, "change_texture_times")
	}
	if len(malformed) > 0 {
		b.log.Warn("生成資料長度不符，改用第一個元素", zap.Strings("fields", malformed), zap.Int("capacity", n))
	}

	blockDir := geom.FromAngle(b.blockRotation)
	for i := 0; i < n; i++ {
		t := data.Transforms[i]
		rot := t.Rotation()

		inst := t
		switch {
		case b.texturePermanent:
			inst = t.WithRotation(b.textureRotation)
		case b.textureRotation != 0:
			inst = t.RotatedLocal(b.textureRotation)
		}
		b.transforms[i] = inst

		shape := t
		shape.Origin = t.Origin.Add(b.shapeOffset.Rotated(rot))
		b.shapeTransforms[i] = shape

		if b.kind == Block {
			b.directions[i] = blockDir
			b.speeds[i] = data.BlockSpeed
		} else {
			b.directions[i] = geom.FromAngle(rot)
			b.speeds[i] = pick(data.Speed, i, n)
		}
		b.velocities[i] = b.directions[i].Scale(b.speeds[i].Speed).Add(b.inherited)
		b.rotations[i] = pick(data.Rotation, i, n)

		b.enabled[i] = true
		b.collisions[i] = 0
		b.homing[i].Clear()
		b.orbits[i] = orbit{}
		b.patterns[i] = pattern{}

		b.sink.SetInstanceTransform(i, inst)
		b.env.Backend.SetShapeTransform(b.group, i, shape)
		b.env.Backend.SetShapeDisabled(b.group, i, false)

		if data.Attachment != nil {
			b.attach(i, *data.Attachment)
		} else {
			b.attachSpecs[i] = AttachmentSpec{}
		}
		b.interp.reset(b, i)
	}
	b.active.ActivateAll()
	b.activeCount = n
	b.isActive = true

	if len(b.textures) > 0 {
		b.sink.SetTexture(b.textures[b.textureIndex])
	}
	b.sink.SetVisible(true)
}

// pick returns src[i] for per-slot slices and src[0] otherwise.
func pick[T any](src []T, i, n int) T {
	if len(src) == n {
		return src[i]
	}
	if len(src) > 0 {
		return src[0]
	}
	var zero T
	return zero
}

func (b *Batch) valid(i int, op string) bool {
	if i >= 0 && i < b.capacity {
		return true
	}
	b.log.Warn("子彈索引超出範圍", zap.String("op", op), zap.Int("slot", i), zap.Int("capacity", b.capacity))
	return false
}

// DisableSlot hides slot i, disables its shape and releases its attachment.
// Disabling the last enabled slot retires the batch. Calling it on a disabled
// slot does nothing.
func (b *Batch) DisableSlot(i int) {
	if !b.valid(i, "disable") || !b.enabled[i] {
		return
	}
	b.enabled[i] = false
	b.active.Deactivate(i)
	b.activeCount--

	b.sink.SetInstanceTransform(i, b.transforms[i].ZeroScaled())
	b.env.Backend.SetShapeDisabled(b.group, i, true)
	b.disableAttachment(i)

	if b.activeCount == 0 {
		b.retire()
	}
}

// EnableSlot re-enables a disabled slot of an active batch at its last
// transform. collisions seeds the slot's collision counter.
func (b *Batch) EnableSlot(i int, collisions int) {
	if !b.valid(i, "enable") || b.enabled[i] {
		return
	}
	if !b.isActive {
		b.log.Warn("批次已退役，無法啟用單一子彈", zap.Int("slot", i))
		return
	}
	if collisions < 0 {
		collisions = 0
	}
	if b.maxCollisions > 0 && collisions >= b.maxCollisions {
		collisions = b.maxCollisions - 1
	}
	b.enabled[i] = true
	b.active.Activate(i)
	b.activeCount++
	b.collisions[i] = collisions

	b.sink.SetInstanceTransform(i, b.transforms[i])
	b.env.Backend.SetShapeTransform(b.group, i, b.shapeTransforms[i])
	b.env.Backend.SetShapeDisabled(b.group, i, false)
	if spec := b.attachSpecs[i]; spec.Template != "" && b.attachments[i].IsZero() {
		b.attach(i, spec)
	}
	b.interp.reset(b, i)
}

// Disable disables every enabled slot, retiring the batch.
func (b *Batch) Disable() {
	for b.active.Len() > 0 {
		dense := b.active.Dense()
		b.DisableSlot(dense[len(dense)-1])
	}
}

func (b *Batch) retire() {
	b.isActive = false
	b.elapsed = 0
	b.sink.SetVisible(false)
	b.relay.Clear()
	b.shared.Clear()
	if b.autoPooling {
		b.UnscheduleAll()
	}
	event.Emit(b.env.Bus, event.BatchRetired{Batch: b.id, Capacity: b.capacity, Pooled: b.autoPooling})
	if b.env.Retire != nil {
		b.env.Retire(b, b.autoPooling)
	}
}

// ForceDelete releases the batch's sink, shapes and attachments. The batch
// can not be used afterwards.
func (b *Batch) ForceDelete() {
	if b.deleted {
		return
	}
	for i := 0; i < b.capacity; i++ {
		b.disableAttachment(i)
	}
	if b.hasGroup {
		b.env.Backend.DestroyShapeGroup(b.group)
		b.hasGroup = false
	}
	if b.sink != nil {
		b.env.Renderer.Release(b.sink)
	}
	b.UnscheduleAll()
	b.relay.Clear()
	b.active.Clear()
	b.activeCount = 0
	b.isActive = false
	b.deleted = true
}
