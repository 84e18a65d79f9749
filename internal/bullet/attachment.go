package bullet

import (
	"github.com/l1jgo/bullets/internal/core/ecs"
	"github.com/l1jgo/bullets/internal/geom"
	"go.uber.org/zap"
)

// attach gives slot i an attachment, reusing an idle one with the same
// pooling id when possible.
func (b *Batch) attach(i int, spec AttachmentSpec) {
	b.disableAttachment(i)
	host := b.env.Host

	id, pooled := b.env.Attachments.Pop(spec.PoolingID)
	for pooled && !host.Alive(id) {
		id, pooled = b.env.Attachments.Pop(spec.PoolingID)
	}
	if pooled {
		host.Enable(id)
	} else {
		id = host.Instantiate(spec.Template)
		if id.IsZero() {
			b.log.Warn("附件實例化失敗", zap.String("template", spec.Template))
			b.attachSpecs[i] = spec
			return
		}
	}

	var rot float64
	if t, ok := host.Transform(id); ok {
		rot = t.Rotation()
	}
	b.attachments[i] = id
	b.attachSpecs[i] = spec
	b.attachLocal[i] = geom.NewTransform(rot, spec.Offset)
	g := b.attachmentTransform(i)
	b.attachCurrent[i] = g
	b.interp.prevAttach[i] = g
	host.SetTransform(id, g)
}

// attachmentTransform places the attachment relative to the slot, ignoring
// the texture rotation.
func (b *Batch) attachmentTransform(i int) geom.Transform2D {
	base := b.transforms[i]
	if b.textureRotation != 0 {
		base = base.RotatedLocal(-b.textureRotation)
	}
	return base.Mul(b.attachLocal[i])
}

func (b *Batch) moveAttachment(i int, step geom.Vec2) {
	id := b.attachments[i]
	if id.IsZero() {
		return
	}
	host := b.env.Host
	if !host.Alive(id) {
		b.attachments[i] = 0
		return
	}
	if b.attachSpecs[i].Stick {
		b.attachCurrent[i] = b.attachmentTransform(i)
	} else {
		b.attachCurrent[i] = b.attachCurrent[i].Translated(step)
	}
	if !b.env.Interpolation {
		host.SetTransform(id, b.attachCurrent[i])
	}
}

// disableAttachment detaches slot i's attachment and pools or destroys it.
func (b *Batch) disableAttachment(i int) {
	id := b.attachments[i]
	if id.IsZero() {
		return
	}
	b.attachments[i] = 0
	host := b.env.Host
	if !host.Alive(id) {
		return
	}
	host.Disable(id)
	if b.attachmentAutoPooling {
		b.env.Attachments.Push(id, b.attachSpecs[i].PoolingID)
		return
	}
	host.Destroy(id)
}

// SetAttachment replaces slot i's attachment.
func (b *Batch) SetAttachment(i int, spec AttachmentSpec) {
	if !b.valid(i, "set_attachment") || !b.enabled[i] {
		return
	}
	b.attach(i, spec)
}

// DisableAttachment releases slot i's attachment the same way disabling the
// slot would.
func (b *Batch) DisableAttachment(i int) {
	if !b.valid(i, "disable_attachment") {
		return
	}
	b.disableAttachment(i)
	b.attachSpecs[i] = AttachmentSpec{}
}

// FreeAttachment destroys slot i's attachment without pooling it.
func (b *Batch) FreeAttachment(i int) {
	if !b.valid(i, "free_attachment") {
		return
	}
	id := b.attachments[i]
	b.attachments[i] = 0
	b.attachSpecs[i] = AttachmentSpec{}
	if !id.IsZero() && b.env.Host.Alive(id) {
		b.env.Host.Destroy(id)
	}
}

// Attachment returns slot i's attachment, zero when there is none.
func (b *Batch) Attachment(i int) ecs.EntityID {
	if !b.valid(i, "attachment") {
		return 0
	}
	return b.attachments[i]
}

// AttachmentCount is the number of live attachments.
func (b *Batch) AttachmentCount() int {
	n := 0
	for _, id := range b.attachments {
		if !id.IsZero() {
			n++
		}
	}
	return n
}
