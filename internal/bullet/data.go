package bullet

import (
	"math/rand/v2"

	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
)

// Kind selects which behavior modules a batch runs.
type Kind uint8

const (
	// Directional batches keep per-slot speed and direction and support
	// homing, orbiting and movement patterns.
	Directional Kind = iota
	// Block batches move every slot with one shared speed in one direction.
	Block
)

func (k Kind) String() string {
	if k == Block {
		return "block"
	}
	return "directional"
}

// Spawn defaults.
const (
	DefaultChangeTextureTime      = 0.3
	DefaultMaxCollisions          = 1
	DefaultLifeTime               = 2.0
	DefaultHomingReachedDistance  = 5.0
	DefaultDirectionRotationSpeed = 18.0
)

var (
	DefaultTextureSize = geom.V(32, 32)
	DefaultShapeSize   = geom.V(5, 5)
)

// SpeedData is the linear speed state of one slot.
type SpeedData struct {
	Speed        float64 `msgpack:"speed" yaml:"speed"`
	MaxSpeed     float64 `msgpack:"max_speed" yaml:"max_speed"`
	Acceleration float64 `msgpack:"acceleration" yaml:"acceleration"`
}

// RotationData is the angular speed state of one slot, in radians.
type RotationData struct {
	Speed        float64 `msgpack:"speed" yaml:"speed"`
	MaxSpeed     float64 `msgpack:"max_speed" yaml:"max_speed"`
	Acceleration float64 `msgpack:"acceleration" yaml:"acceleration"`
}

// Range is an inclusive random range.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) pick(rng *rand.Rand) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// RandomSpeedData generates n speed entries with every field drawn from its
// range. A nil rng uses the global source.
func RandomSpeedData(n int, speed, maxSpeed, accel Range, rng *rand.Rand) []SpeedData {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]SpeedData, n)
	for i := range out {
		out[i] = SpeedData{
			Speed:        speed.pick(rng),
			MaxSpeed:     maxSpeed.pick(rng),
			Acceleration: accel.pick(rng),
		}
	}
	return out
}

// RandomRotationData is the rotation counterpart of RandomSpeedData.
func RandomRotationData(n int, speed, maxSpeed, accel Range, rng *rand.Rand) []RotationData {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	out := make([]RotationData, n)
	for i := range out {
		out[i] = RotationData{
			Speed:        speed.pick(rng),
			MaxSpeed:     maxSpeed.pick(rng),
			Acceleration: accel.pick(rng),
		}
	}
	return out
}

// DirectionMode decides how a direction curve value is applied.
type DirectionMode uint8

const (
	// Additive adds value·dt to the direction component.
	Additive DirectionMode = iota
	// Override replaces the direction component with the value.
	Override
)

// Curves drive batch-wide speed, rotation and direction over time. Curves
// marked as unit curves are sampled at elapsed/lifeTime in [0, 1]; the others
// are sampled at elapsed seconds. Unit curves fall back to seconds when the
// life time is infinite.
type Curves struct {
	Speed                 *curve.Curve  `msgpack:"speed"`
	SpeedUnit             bool          `msgpack:"speed_unit"`
	Rotation              *curve.Curve  `msgpack:"rotation"`
	RotationUnit          bool          `msgpack:"rotation_unit"`
	DirectionX            *curve.Curve  `msgpack:"dir_x"`
	DirectionY            *curve.Curve  `msgpack:"dir_y"`
	DirectionUnit         bool          `msgpack:"dir_unit"`
	DirectionStrength     float64       `msgpack:"dir_strength"`
	DirectionMode         DirectionMode `msgpack:"dir_mode"`
	RotateTowardsAdjusted bool          `msgpack:"rotate_towards_adjusted"`

	// DirectionRotationSpeed caps how fast the instance turns towards the
	// adjusted direction, in radians per second.
	DirectionRotationSpeed float64 `msgpack:"dir_rotation_speed"`
}

// NewCurves returns curves with the direction defaults filled in.
func NewCurves() *Curves {
	return &Curves{
		DirectionStrength:      1,
		RotateTowardsAdjusted:  true,
		DirectionRotationSpeed: DefaultDirectionRotationSpeed,
	}
}

func (c *Curves) hasDirection() bool {
	return c != nil && (c.DirectionX != nil || c.DirectionY != nil)
}

// AttachmentSpec describes the scene object that rides along each slot.
type AttachmentSpec struct {
	Template  string    `msgpack:"template" yaml:"template"`
	PoolingID uint32    `msgpack:"pooling_id" yaml:"pooling_id"`
	Offset    geom.Vec2 `msgpack:"offset" yaml:"offset"`
	// Stick recomputes the attachment from the bullet transform every tick
	// so it follows rotation; otherwise it is only translated.
	Stick bool `msgpack:"stick" yaml:"stick"`
}

// HomingConfig is the batch-wide homing behavior.
type HomingConfig struct {
	// Smoothing is the maximum turn rate in radians per second. Zero or
	// negative turns instantly.
	Smoothing float64 `msgpack:"smoothing"`
	// UpdateInterval is how often cached target positions are refreshed, in
	// seconds. Zero refreshes every tick.
	UpdateInterval               float64 `msgpack:"update_interval"`
	TakeControlOfTextureRotation bool    `msgpack:"take_texture_rotation"`
	ReachedDistance              float64 `msgpack:"reached_distance"`
	AutoPopReached               bool    `msgpack:"auto_pop"`
	SharedAutoPopReached         bool    `msgpack:"shared_auto_pop"`
}

// SpawnData is the payload a batch is spawned from. Transforms decide the
// capacity. Slices that should hold one entry per slot fall back to their
// first element (or a zero default) when their length is wrong.
type SpawnData struct {
	Kind       Kind
	Transforms []geom.Transform2D

	Textures                 []render.TextureID
	TextureIndex             int
	DefaultChangeTextureTime float64
	ChangeTextureTimes       []float64
	TextureSize              geom.Vec2
	TextureRotation          float64
	// TextureRotationPermanent sets each instance rotation to exactly
	// TextureRotation instead of adding it to the transform's rotation.
	TextureRotationPermanent bool

	// Speed has one entry per slot for Directional batches.
	Speed []SpeedData
	// BlockSpeed and BlockRotation drive Block batches.
	BlockSpeed    SpeedData
	BlockRotation float64

	// Rotation has one entry per slot or a single shared entry.
	Rotation                       []RotationData
	RotateOnlyTextures             bool
	StopRotationWhenMaxReached     bool
	AdjustDirectionBasedOnRotation bool

	MaxCollisions int
	Layer         uint32
	Mask          uint32
	Monitorable   bool
	ShapeSize     geom.Vec2
	ShapeOffset   geom.Vec2

	LifeTime          float64
	LifeTimeInfinite  bool
	LifeTimeOverEvent bool

	Attachment *AttachmentSpec
	Curves     *Curves
	Homing     HomingConfig

	CustomData any

	// AutoPooling returns the batch to the factory pool when its last slot
	// is disabled; otherwise the batch is deleted.
	AutoPooling bool
	// AttachmentAutoPooling keeps released attachments in the attachment
	// pool instead of destroying them.
	AttachmentAutoPooling bool
}

// NewSpawnData returns a payload for the given transforms with every default
// applied.
func NewSpawnData(kind Kind, transforms []geom.Transform2D) *SpawnData {
	return &SpawnData{
		Kind:                     kind,
		Transforms:               transforms,
		DefaultChangeTextureTime: DefaultChangeTextureTime,
		TextureSize:              DefaultTextureSize,
		RotateOnlyTextures:       true,
		MaxCollisions:            DefaultMaxCollisions,
		Layer:                    1,
		Mask:                     1,
		ShapeSize:                DefaultShapeSize,
		LifeTime:                 DefaultLifeTime,
		Homing:                   HomingConfig{ReachedDistance: DefaultHomingReachedDistance},
		AutoPooling:              true,
		AttachmentAutoPooling:    true,
	}
}

// Capacity is the number of slots a batch spawned from d will have.
func (d *SpawnData) Capacity() int { return len(d.Transforms) }
