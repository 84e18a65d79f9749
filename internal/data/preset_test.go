package data

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/curve"
	"github.com/l1jgo/bullets/internal/geom"
)

type curveMap map[string]*curve.Curve

func (m curveMap) Curve(name string) (*curve.Curve, error) {
	c, ok := m[name]
	if !ok {
		return nil, errors.New("missing")
	}
	return c, nil
}

func loadSample(t *testing.T) *PresetTable {
	t.Helper()
	tbl, err := LoadPresetTable("../../data/presets.yaml")
	if err != nil {
		t.Fatalf("load sample presets: %v", err)
	}
	return tbl
}

func TestSamplePresetsBuild(t *testing.T) {
	tbl := loadSample(t)
	if tbl.Count() != 6 {
		t.Fatalf("Expected 6 presets, got %d", tbl.Count())
	}
	curves := curveMap{"ease_out": curve.Linear(0, 1, 1, 0), "wobble": curve.Constant(0)}
	rng := rand.New(rand.NewPCG(1, 2))
	for _, name := range tbl.Names() {
		d, err := tbl.Build(name, geom.V(100, 100), 0, curves, rng)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if d.Capacity() != tbl.Get(name).Formation.Count {
			t.Errorf("%s: Expected %d transforms, got %d", name, tbl.Get(name).Formation.Count, d.Capacity())
		}
	}
}

func TestBuildFields(t *testing.T) {
	tbl := loadSample(t)

	wall, err := tbl.Build("wall", geom.Vec2{}, 0, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if wall.Kind != bullet.Block || wall.BlockSpeed.Speed != 60 {
		t.Errorf("wall: Expected block kind at speed 60, got %v %+v", wall.Kind, wall.BlockSpeed)
	}

	shot, err := tbl.Build("shotgun", geom.Vec2{}, 0, nil, rand.New(rand.NewPCG(3, 4)))
	if err != nil {
		t.Fatal(err)
	}
	if len(shot.Speed) != 9 || shot.MaxCollisions != 2 {
		t.Fatalf("shotgun: Expected 9 random speeds and 2 collisions, got %d %d", len(shot.Speed), shot.MaxCollisions)
	}
	for i, s := range shot.Speed {
		if s.Speed < 220 || s.Speed > 320 || s.MaxSpeed != 320 {
			t.Errorf("slot %d: speed out of range %+v", i, s)
		}
	}

	mine, _ := tbl.Build("mine", geom.Vec2{}, 0, nil, nil)
	if !mine.LifeTimeInfinite || mine.MaxCollisions != 0 {
		t.Errorf("mine: Expected infinite life and unlimited collisions, got %+v", mine)
	}

	seeker, _ := tbl.Build("seeker", geom.Vec2{}, 0, nil, nil)
	if seeker.Attachment == nil || seeker.Attachment.Offset != geom.V(-6, 0) {
		t.Errorf("seeker: attachment not loaded: %+v", seeker.Attachment)
	}
	if !seeker.Homing.AutoPopReached || seeker.Homing.ReachedDistance != 6 {
		t.Errorf("seeker: homing not loaded: %+v", seeker.Homing)
	}
}

func TestBuildErrors(t *testing.T) {
	tbl := loadSample(t)
	if _, err := tbl.Build("nope", geom.Vec2{}, 0, nil, nil); !errors.Is(err, ErrUnknownPreset) {
		t.Errorf("Expected ErrUnknownPreset, got %v", err)
	}
	if _, err := tbl.Build("wobble", geom.Vec2{}, 0, nil, nil); err == nil {
		t.Error("Expected error without a curve source")
	}
	if _, err := tbl.Build("wobble", geom.Vec2{}, 0, curveMap{}, nil); err == nil {
		t.Error("Expected error for a missing curve")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "- kind: block\n"},
		{"duplicate", "- name: a\n- name: a\n"},
		{"kind", "- name: a\n  kind: spiral\n"},
		{"syntax", "- name: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePresetTable([]byte(tt.yaml)); err == nil {
				t.Error("Expected parse error")
			}
		})
	}
}

func TestFormations(t *testing.T) {
	ring := Formation{Shape: "ring", Count: 4, Radius: 10}.transforms(geom.Vec2{}, 0)
	if got := ring[1].Origin; math.Abs(got.X) > 1e-9 || math.Abs(got.Y-10) > 1e-9 {
		t.Errorf("ring: Expected (0,10), got %+v", got)
	}
	if got := ring[1].Rotation(); math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("ring: Expected to face outward, got %v", got)
	}

	fan := Formation{Shape: "fan", Count: 3, Spread: 90}.transforms(geom.Vec2{}, 0)
	if got := fan[0].Rotation(); math.Abs(got+math.Pi/4) > 1e-9 {
		t.Errorf("fan: Expected first at -45 degrees, got %v", got)
	}

	line := Formation{Count: 3, Spacing: 5}.transforms(geom.V(1, 1), 0)
	if got := line[0].Origin; math.Abs(got.Y+4) > 1e-9 {
		t.Errorf("line: Expected first at y=-4, got %+v", got)
	}

	grid := Formation{Shape: "grid", Count: 4, Columns: 2, Spacing: 10}.transforms(geom.Vec2{}, 0)
	if got := grid[3].Origin; math.Abs(got.X+10) > 1e-9 || math.Abs(got.Y-5) > 1e-9 {
		t.Errorf("grid: Expected (-10,5), got %+v", got)
	}
}
