package data

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
	"gopkg.in/yaml.v3"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Formation lays out the spawn transforms of a preset around the emitter.
type Formation struct {
	Shape   string  `yaml:"shape"` // ring, fan, line, grid
	Count   int     `yaml:"count"`
	Radius  float64 `yaml:"radius"`
	Spread  float64 `yaml:"spread"`  // fan arc in degrees
	Spacing float64 `yaml:"spacing"` // line and grid
	Columns int     `yaml:"columns"` // grid
}

// RandomSpeed draws per-slot speed data instead of using Speed.
type RandomSpeed struct {
	Speed        bullet.Range `yaml:"speed"`
	MaxSpeed     bullet.Range `yaml:"max_speed"`
	Acceleration bullet.Range `yaml:"acceleration"`
}

// CurveRefs names the scripted curves a preset uses.
type CurveRefs struct {
	Speed             string  `yaml:"speed"`
	Rotation          string  `yaml:"rotation"`
	DirectionX        string  `yaml:"direction_x"`
	DirectionY        string  `yaml:"direction_y"`
	Unit              bool    `yaml:"unit"`
	DirectionStrength float64 `yaml:"direction_strength"`
	Override          bool    `yaml:"override"`
}

type HomingEntry struct {
	Smoothing       float64 `yaml:"smoothing"`
	UpdateInterval  float64 `yaml:"update_interval"`
	ReachedDistance float64 `yaml:"reached_distance"`
	AutoPop         bool    `yaml:"auto_pop"`
	TextureControl  bool    `yaml:"texture_control"`
}

// PresetEntry is one named spawn recipe.
type PresetEntry struct {
	Name      string    `yaml:"name"`
	Kind      string    `yaml:"kind"` // directional or block
	Formation Formation `yaml:"formation"`

	Textures          []uint32  `yaml:"textures"`
	ChangeTextureTime float64   `yaml:"change_texture_time"`
	TextureSize       geom.Vec2 `yaml:"texture_size"`
	TextureRotation   float64   `yaml:"texture_rotation"` // degrees

	Speed       bullet.SpeedData     `yaml:"speed"`
	RandomSpeed *RandomSpeed         `yaml:"random_speed"`
	Rotation    *bullet.RotationData `yaml:"rotation"`
	BlockSpin   float64              `yaml:"block_spin"` // degrees per second

	LifeTime      float64   `yaml:"life_time"`
	LifeTimeEvent bool      `yaml:"life_time_event"`
	MaxCollisions *int      `yaml:"max_collisions"`
	Layer         uint32    `yaml:"layer"`
	Mask          uint32    `yaml:"mask"`
	ShapeSize     geom.Vec2 `yaml:"shape_size"`

	Attachment *bullet.AttachmentSpec `yaml:"attachment"`
	Homing     *HomingEntry           `yaml:"homing"`
	Curves     *CurveRefs             `yaml:"curves"`
}

// CurveSource resolves curve names, typically backed by Lua scripts.
type CurveSource interface {
	Curve(name string) (*curve.Curve, error)
}

// PresetTable provides lookup of spawn presets by name.
type PresetTable struct {
	presets map[string]*PresetEntry
}

// LoadPresetTable loads presets.yaml.
func LoadPresetTable(path string) (*PresetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return ParsePresetTable(raw)
}

func ParsePresetTable(raw []byte) (*PresetTable, error) {
	var entries []PresetEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	t := &PresetTable{
		presets: make(map[string]*PresetEntry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("parse presets: entry %d has no name", i)
		}
		if _, dup := t.presets[e.Name]; dup {
			return nil, fmt.Errorf("parse presets: duplicate name %q", e.Name)
		}
		if _, err := parseKind(e.Kind); err != nil {
			return nil, fmt.Errorf("parse presets %q: %w", e.Name, err)
		}
		t.presets[e.Name] = e
	}
	return t, nil
}

func parseKind(s string) (bullet.Kind, error) {
	switch s {
	case "", "directional":
		return bullet.Directional, nil
	case "block":
		return bullet.Block, nil
	}
	return 0, fmt.Errorf("unknown kind %q", s)
}

// Get returns the preset with the given name, or nil.
func (t *PresetTable) Get(name string) *PresetEntry {
	return t.presets[name]
}

// Count returns the number of presets loaded.
func (t *PresetTable) Count() int {
	return len(t.presets)
}

// Names returns every preset name in sorted order.
func (t *PresetTable) Names() []string {
	out := make([]string, 0, len(t.presets))
	for name := range t.presets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Build turns the named preset into a spawn payload fired from origin
// towards aim (radians). curves may be nil when no preset references one.
func (t *PresetTable) Build(name string, origin geom.Vec2, aim float64, curves CurveSource, rng *rand.Rand) (*bullet.SpawnData, error) {
	e := t.presets[name]
	if e == nil {
		return nil, fmt.Errorf("build preset %q: %w", name, ErrUnknownPreset)
	}
	kind, _ := parseKind(e.Kind)
	xforms := e.Formation.transforms(origin, aim)
	d := bullet.NewSpawnData(kind, xforms)

	for _, tex := range e.Textures {
		d.Textures = append(d.Textures, render.TextureID(tex))
	}
	if e.ChangeTextureTime > 0 {
		d.DefaultChangeTextureTime = e.ChangeTextureTime
	}
	if !e.TextureSize.IsZero() {
		d.TextureSize = e.TextureSize
	}
	d.TextureRotation = e.TextureRotation * math.Pi / 180

	switch {
	case kind == bullet.Block:
		d.BlockSpeed = e.Speed
		d.BlockRotation = e.BlockSpin * math.Pi / 180
	case e.RandomSpeed != nil:
		r := e.RandomSpeed
		d.Speed = bullet.RandomSpeedData(len(xforms), r.Speed, r.MaxSpeed, r.Acceleration, rng)
	default:
		d.Speed = []bullet.SpeedData{e.Speed}
		for len(d.Speed) < len(xforms) {
			d.Speed = append(d.Speed, e.Speed)
		}
	}
	if e.Rotation != nil {
		d.Rotation = []bullet.RotationData{*e.Rotation}
	}

	if e.LifeTime > 0 {
		d.LifeTime = e.LifeTime
	} else if e.LifeTime < 0 {
		d.LifeTimeInfinite = true
	}
	d.LifeTimeOverEvent = e.LifeTimeEvent
	if e.MaxCollisions != nil {
		d.MaxCollisions = *e.MaxCollisions
	}
	if e.Layer != 0 {
		d.Layer = e.Layer
	}
	if e.Mask != 0 {
		d.Mask = e.Mask
	}
	if !e.ShapeSize.IsZero() {
		d.ShapeSize = e.ShapeSize
	}
	if e.Attachment != nil {
		a := *e.Attachment
		d.Attachment = &a
	}
	if h := e.Homing; h != nil {
		d.Homing.Smoothing = h.Smoothing
		d.Homing.UpdateInterval = h.UpdateInterval
		d.Homing.AutoPopReached = h.AutoPop
		d.Homing.SharedAutoPopReached = h.AutoPop
		d.Homing.TakeControlOfTextureRotation = h.TextureControl
		if h.ReachedDistance > 0 {
			d.Homing.ReachedDistance = h.ReachedDistance
		}
	}
	if e.Curves != nil {
		c, err := e.Curves.resolve(curves)
		if err != nil {
			return nil, fmt.Errorf("build preset %q: %w", name, err)
		}
		d.Curves = c
	}
	return d, nil
}

func (r *CurveRefs) resolve(src CurveSource) (*bullet.Curves, error) {
	c := bullet.NewCurves()
	c.SpeedUnit = r.Unit
	c.RotationUnit = r.Unit
	c.DirectionUnit = r.Unit
	if r.DirectionStrength != 0 {
		c.DirectionStrength = r.DirectionStrength
	}
	if r.Override {
		c.DirectionMode = bullet.Override
	}
	refs := []struct {
		name string
		dst  **curve.Curve
	}{
		{r.Speed, &c.Speed},
		{r.Rotation, &c.Rotation},
		{r.DirectionX, &c.DirectionX},
		{r.DirectionY, &c.DirectionY},
	}
	for _, ref := range refs {
		if ref.name == "" {
			continue
		}
		if src == nil {
			return nil, fmt.Errorf("resolve curve %q: no curve source", ref.name)
		}
		cv, err := src.Curve(ref.name)
		if err != nil {
			return nil, fmt.Errorf("resolve curve %q: %w", ref.name, err)
		}
		*ref.dst = cv
	}
	return c, nil
}

// transforms places Count bullets around origin. Every bullet faces its
// travel direction.
func (f Formation) transforms(origin geom.Vec2, aim float64) []geom.Transform2D {
	n := f.Count
	if n <= 0 {
		n = 1
	}
	out := make([]geom.Transform2D, n)
	switch f.Shape {
	case "ring":
		step := 2 * math.Pi / float64(n)
		for i := range out {
			a := aim + step*float64(i)
			out[i] = geom.NewTransform(a, origin.Add(geom.FromAngle(a).Scale(f.Radius)))
		}
	case "fan":
		spread := f.Spread * math.Pi / 180
		start, step := aim, 0.0
		if n > 1 {
			start = aim - spread/2
			step = spread / float64(n-1)
		}
		for i := range out {
			a := start + step*float64(i)
			out[i] = geom.NewTransform(a, origin.Add(geom.FromAngle(a).Scale(f.Radius)))
		}
	case "grid":
		cols := f.Columns
		if cols <= 0 {
			cols = n
		}
		right := geom.FromAngle(aim + math.Pi/2)
		fwd := geom.FromAngle(aim)
		for i := range out {
			row, col := i/cols, i%cols
			side := (float64(col) - float64(cols-1)/2) * f.Spacing
			p := origin.Add(right.Scale(side)).Sub(fwd.Scale(float64(row) * f.Spacing))
			out[i] = geom.NewTransform(aim, p)
		}
	default: // line
		right := geom.FromAngle(aim + math.Pi/2)
		for i := range out {
			side := (float64(i) - float64(n-1)/2) * f.Spacing
			out[i] = geom.NewTransform(aim, origin.Add(right.Scale(side)))
		}
	}
	return out
}
