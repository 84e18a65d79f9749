package render

import "github.com/l1jgo/bullets/internal/geom"

// TextureID refers to a texture owned by the renderer. Zero means none.
type TextureID uint32

// Sink is the instance batch one bullet batch draws through. The simulation
// only ever writes to it.
type Sink interface {
	SetInstanceCount(n int)
	SetInstanceTransform(i int, t geom.Transform2D)
	SetTexture(id TextureID)
	SetVisible(visible bool)
}

// Renderer hands out sinks and takes them back when a batch is destroyed.
type Renderer interface {
	NewBatch(capacity int) Sink
	Release(s Sink)
}

// Nop discards everything. Used by headless runs.
type Nop struct{}

func (Nop) SetInstanceCount(int) {}
func (Nop) SetInstanceTransform(int, geom.Transform2D) {}
func (Nop) SetTexture(TextureID) {}
func (Nop) SetVisible(bool) {}

// NopRenderer returns Nop sinks.
type NopRenderer struct{}

func (NopRenderer) NewBatch(int) Sink { return Nop{} }
func (NopRenderer) Release(Sink) {}
