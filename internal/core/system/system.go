package system

import "time"

// Phase orders systems inside one simulation tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: pointer/keyboard, scripted emitters
	PhasePreUpdate               // 1: deliver last tick's events
	PhaseUpdate                  // 2: bullet batches
	PhasePostUpdate              // 3: collision step, target sync
	PhaseOutput                  // 4: render
	PhasePersist                 // 5: snapshot autosave
	PhaseCleanup                 // 6: destroy queued entities
)

var phaseNames = [...]string{"input", "pre-update", "update", "post-update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is one step of the tick pipeline.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
