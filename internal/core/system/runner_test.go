package system

import (
	"testing"
	"time"
)

type probe struct {
	phase Phase
	name  string
	log   *[]string
}

func (p probe) Phase() Phase { return p.phase }
func (p probe) Update(time.Duration) { *p.log = append(*p.log, p.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(probe{PhaseCleanup, "cleanup", &log})
	r.Register(probe{PhaseUpdate, "bullets", &log})
	r.Register(probe{PhasePreUpdate, "events", &log})
	r.Register(probe{PhaseUpdate, "timers", &log})

	r.Tick(time.Second / 60)
	want := []string{"events", "bullets", "timers", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("Expected %v, got %v", want, log)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("position %d: Expected %s, got %s", i, want[i], log[i])
		}
	}
}

func TestTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(probe{PhaseInput, "input", &log})
	r.Register(probe{PhaseUpdate, "bullets", &log})
	r.TickPhase(PhaseInput, 0)
	if len(log) != 1 || log[0] != "input" {
		t.Errorf("Expected only input, got %v", log)
	}
	if PhasePersist.String() != "persist" || Phase(42).String() != "unknown" {
		t.Error("phase names")
	}
}
