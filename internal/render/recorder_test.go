package render

import (
	"testing"

	"github.com/l1jgo/bullets/internal/geom"
)

func TestRecorderBounds(t *testing.T) {
	r := NewRecorder()
	r.SetInstanceCount(2)
	r.SetInstanceTransform(1, geom.NewTransform(0, geom.V(1, 2)))
	r.SetInstanceTransform(5, geom.Identity())
	if r.Writes != 1 {
		t.Fatalf("Writes = %d, want 1", r.Writes)
	}
	if r.Transforms[1].Origin != geom.V(1, 2) {
		t.Errorf("transform not recorded: %+v", r.Transforms[1])
	}
}

func TestRecordingRendererRelease(t *testing.T) {
	rr := &RecordingRenderer{}
	a := rr.NewBatch(4)
	rr.NewBatch(8)
	rr.Release(a)
	if len(rr.Live()) != 1 {
		t.Fatalf("Live = %d, want 1", len(rr.Live()))
	}
	if got := len(rr.Sinks[1].Transforms); got != 8 {
		t.Errorf("second sink sized %d, want 8", got)
	}
}
