package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/render"
	"github.com/l1jgo/bullets/internal/scene"
)

// World units per terminal cell. Cells are about twice as tall as wide.
const (
	cellW = 6.0
	cellH = 12.0
)

// glyphs is indexed by texture id; 0 draws nothing.
var glyphs = []struct {
	r     rune
	color tcell.Color
}{
	{' ', tcell.ColorDefault},
	{'•', tcell.ColorAqua},
	{'∙', tcell.ColorTeal},
	{'○', tcell.ColorBlue},
	{'*', tcell.ColorYellow},
	{'■', tcell.ColorOrange},
	{'◆', tcell.ColorFuchsia},
	{'◇', tcell.ColorPurple},
	{'~', tcell.ColorLime},
	{'¤', tcell.ColorRed},
}

// termRenderer hands out recorders and keeps the live ones for drawing.
type termRenderer struct {
	live map[*render.Recorder]struct{}
}

func newTermRenderer() *termRenderer {
	return &termRenderer{live: make(map[*render.Recorder]struct{}, 64)}
}

func (t *termRenderer) NewBatch(capacity int) render.Sink {
	r := render.NewRecorder()
	r.SetInstanceCount(capacity)
	t.live[r] = struct{}{}
	return r
}

func (t *termRenderer) Release(s render.Sink) {
	if r, ok := s.(*render.Recorder); ok {
		r.Released = true
		delete(t.live, r)
	}
}

// view maps world space onto the screen, world origin at the centre.
type view struct {
	w, h int
}

func (v view) toCell(p geom.Vec2) (int, int) {
	return v.w/2 + int(p.X/cellW), v.h/2 + int(p.Y/cellH)
}

func (v view) toWorld(x, y int) geom.Vec2 {
	return geom.V(float64(x-v.w/2)*cellW, float64(y-v.h/2)*cellH)
}

func (v view) inside(x, y int) bool {
	return x >= 0 && x < v.w && y >= 1 && y < v.h
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

func (g *sandbox) draw() {
	s := g.screen
	v := g.view
	s.Clear()

	g.app.Scene.Each(func(_ ecs.EntityID, n *scene.Node) {
		if !n.Enabled {
			return
		}
		x, y := v.toCell(n.Transform.Origin)
		if !v.inside(x, y) {
			return
		}
		switch n.Template {
		case "dummy":
			s.SetContent(x, y, '█', nil, tcell.StyleDefault.Foreground(tcell.ColorRed))
		case "drone":
			s.SetContent(x, y, '◎', nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
		default:
			s.SetContent(x, y, '·', nil, tcell.StyleDefault.Foreground(tcell.ColorSilver))
		}
	})

	for r := range g.renderer.live {
		if !r.Visible || int(r.Texture) >= len(glyphs) || r.Texture == 0 {
			continue
		}
		gl := glyphs[r.Texture]
		style := tcell.StyleDefault.Foreground(gl.color)
		for _, t := range r.Transforms[:r.Count] {
			// disabled slots are zero-scaled
			if t.Determinant() == 0 {
				continue
			}
			x, y := v.toCell(t.Origin)
			if v.inside(x, y) {
				s.SetContent(x, y, gl.r, nil, style)
			}
		}
	}

	ox, oy := v.toCell(geom.Vec2{})
	s.SetContent(ox, oy, '+', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	st := g.app.Factory.Stats()
	status := fmt.Sprintf(" %s | batches %d | bullets %d | hits %d | pooled %d ",
		g.preset(), st.Directional.ActiveBatches+st.Block.ActiveBatches, st.ActiveBullets(),
		g.app.Hits(), st.Directional.PooledBatches+st.Block.PooledBatches)
	if !g.app.Factory.Processing() {
		status += "| PAUSED "
	}
	if g.message != "" {
		status += "| " + g.message + " "
	}
	drawText(s, 0, 0, tcell.StyleDefault.Reverse(true), status)
	drawText(s, 0, v.h-1, tcell.StyleDefault.Foreground(tcell.ColorGray),
		" click fire  tab preset  space pause  t targets  r reset  f free pools  s/l save/load  q quit")
	s.Show()
}
