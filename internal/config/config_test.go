package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blast.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[engine]
tick_rate = "20ms"
interpolation = true

[[pool.prewarm]]
kind = "block"
capacity = 64
count = 4

[[pool.attachments]]
template = "spark"
pooling_id = 2
count = 16

[[emitters]]
preset = "spiral"
aim = 90
interval = "250ms"
homing = true

[database]
autosave_interval = "1m"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.TickRate != 20*time.Millisecond || !cfg.Engine.Interpolation {
		t.Errorf("engine not loaded: %+v", cfg.Engine)
	}
	if !cfg.Engine.ProcessBullets {
		t.Error("Expected default process_bullets to survive")
	}
	if len(cfg.Pool.Prewarm) != 1 || cfg.Pool.Prewarm[0].Capacity != 64 {
		t.Errorf("prewarm not loaded: %+v", cfg.Pool.Prewarm)
	}
	if len(cfg.Pool.Attachments) != 1 || cfg.Pool.Attachments[0].PoolingID != 2 {
		t.Errorf("attachment prewarm not loaded: %+v", cfg.Pool.Attachments)
	}
	if len(cfg.Emitters) != 1 || cfg.Emitters[0].Interval != 250*time.Millisecond || !cfg.Emitters[0].Homing {
		t.Errorf("emitters not loaded: %+v", cfg.Emitters)
	}
	if cfg.Database.AutosaveInterval != time.Minute || cfg.Database.SnapshotName != "autosave" {
		t.Errorf("database not merged: %+v", cfg.Database)
	}
	if cfg.Collision.CellSize != 64 {
		t.Errorf("Expected default cell size, got %v", cfg.Collision.CellSize)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"tick", "[engine]\ntick_rate = \"0s\"\n", "tick_rate"},
		{"cell", "[collision]\ncell_size = -1\n", "cell_size"},
		{"kind", "[[pool.prewarm]]\nkind = \"spiral\"\ncapacity = 4\ncount = 1\n", "unknown kind"},
		{"emitter", "[[emitters]]\npreset = \"spiral\"\n", "interval"},
		{"dsn", "[database]\nenabled = true\ndsn = \"\"\n", "dsn"},
		{"syntax", "[engine\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestSampleConfig(t *testing.T) {
	cfg, err := Load("../../config/blast.toml")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Emitters) != 3 || cfg.Database.Enabled {
		t.Errorf("unexpected sample config: %d emitters, database %v", len(cfg.Emitters), cfg.Database.Enabled)
	}
}
