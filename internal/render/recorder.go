package render

import "github.com/l1jgo/bullets/internal/geom"

// Recorder keeps the last state written to it. It backs tests and the
// terminal sandbox, which draws straight from the recorded transforms.
type Recorder struct {
	Count      int
	Transforms []geom.Transform2D
	Texture    TextureID
	Visible    bool
	Writes     int
	Released   bool
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) SetInstanceCount(n int) {
	r.Count = n
	if cap(r.Transforms) < n {
		grown := make([]geom.Transform2D, n)
		copy(grown, r.Transforms)
		r.Transforms = grown
		return
	}
	r.Transforms = r.Transforms[:n]
}

func (r *Recorder) SetInstanceTransform(i int, t geom.Transform2D) {
	if i < 0 || i >= len(r.Transforms) {
		return
	}
	r.Transforms[i] = t
	r.Writes++
}

func (r *Recorder) SetTexture(id TextureID) { r.Texture = id }
func (r *Recorder) SetVisible(v bool) { r.Visible = v }

// RecordingRenderer hands out Recorders and remembers them.
type RecordingRenderer struct {
	Sinks []*Recorder
}

func (rr *RecordingRenderer) NewBatch(capacity int) Sink {
	r := NewRecorder()
	r.SetInstanceCount(capacity)
	rr.Sinks = append(rr.Sinks, r)
	return r
}

func (rr *RecordingRenderer) Release(s Sink) {
	if r, ok := s.(*Recorder); ok {
		r.Released = true
	}
}

// Live returns the recorders not yet released.
func (rr *RecordingRenderer) Live() []*Recorder {
	out := make([]*Recorder, 0, len(rr.Sinks))
	for _, r := range rr.Sinks {
		if !r.Released {
			out = append(out, r)
		}
	}
	return out
}
