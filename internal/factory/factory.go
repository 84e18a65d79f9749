package factory

import (
	"errors"

	"github.com/l1jgo/bullets/internal/bullet"
	"github.com/l1jgo/bullets/internal/geom"
	"github.com/l1jgo/bullets/internal/pool"
	"github.com/l1jgo/bullets/internal/sparse"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when the factory is saving, loading or resetting.
	ErrBusy = errors.New("factory busy")
	// ErrNoTransforms is returned for spawn payloads without slots.
	ErrNoTransforms = errors.New("spawn data has no transforms")
)

// kindState holds every batch of one kind. Batches are addressed by their
// index in batches; active holds the indexes of batches being simulated.
type kindState struct {
	batches []*bullet.Batch
	free    []int
	active  *sparse.ActiveSet
	pool    *pool.Pool[int, *bullet.Batch]
}

type retirement struct {
	batch  *bullet.Batch
	pooled bool
}

type slotRef struct {
	kind  bullet.Kind
	index int
}

// Factory owns every batch: it spawns them, ticks the active ones, pools the
// retired ones and deletes them.
type Factory struct {
	env   *bullet.Env
	kinds [2]*kindState
	refs  map[uint64]slotRef

	nextID     uint64
	processing bool
	busy       bool
	ticking    bool
	retired    []retirement

	// timers may call eachActive while Tick walks tickDense
	tickDense []int
	scratch   []int

	log *zap.Logger
}

// New wires a factory to env. The factory takes over env.Retire.
func New(env *bullet.Env) *Factory {
	env.Defaults()
	f := &Factory{
		env:        env,
		refs:       make(map[uint64]slotRef, 256),
		processing: true,
		log:        env.Log.Named("factory"),
	}
	for k := range f.kinds {
		f.kinds[k] = &kindState{
			active: sparse.NewActiveSet(64),
			pool:   pool.New[int, *bullet.Batch](f.deleteBatch),
		}
	}
	env.Retire = f.onRetire
	return f
}

func (f *Factory) kind(k bullet.Kind) *kindState {
	if int(k) >= len(f.kinds) {
		return f.kinds[bullet.Directional]
	}
	return f.kinds[k]
}

// newBatch creates an empty batch and registers it.
func (f *Factory) newBatch(k bullet.Kind) *bullet.Batch {
	f.nextID++
	b := bullet.New(f.nextID, k, f.env)
	ks := f.kind(k)
	idx := len(ks.batches)
	if n := len(ks.free); n > 0 {
		idx = ks.free[n-1]
		ks.free = ks.free[:n-1]
		ks.batches[idx] = b
	} else {
		ks.batches = append(ks.batches, b)
	}
	f.refs[b.ID()] = slotRef{kind: k, index: idx}
	return b
}

func (f *Factory) activate(b *bullet.Batch) {
	if ref, ok := f.refs[b.ID()]; ok {
		f.kind(ref.kind).active.Activate(ref.index)
	}
}

// deleteBatch force-deletes b and forgets it.
func (f *Factory) deleteBatch(b *bullet.Batch) {
	b.ForceDelete()
	ref, ok := f.refs[b.ID()]
	if !ok {
		return
	}
	ks := f.kind(ref.kind)
	ks.active.Deactivate(ref.index)
	ks.batches[ref.index] = nil
	ks.free = append(ks.free, ref.index)
	delete(f.refs, b.ID())
}

// Spawn starts a batch for data, reusing a pooled batch of the same capacity
// when there is one. offset is added to every bullet's velocity.
func (f *Factory) Spawn(data *bullet.SpawnData, offset geom.Vec2) (*bullet.Batch, error) {
	if f.busy {
		f.log.Warn("工廠忙碌中，拒絕生成")
		return nil, ErrBusy
	}
	n := data.Capacity()
	if n == 0 {
		return nil, ErrNoTransforms
	}
	ks := f.kind(data.Kind)
	for {
		b, ok := ks.pool.Pop(n)
		if !ok {
			break
		}
		if b.Enable(data, offset) {
			f.activate(b)
			return b, nil
		}
		f.deleteBatch(b)
	}

	b := f.newBatch(data.Kind)
	b.Spawn(data, offset)
	f.activate(b)
	return b, nil
}

// Tick advances every active batch by dt seconds. Batches retiring during
// the pass are pooled or deleted after it.
func (f *Factory) Tick(dt float64) error {
	if f.busy {
		f.log.Warn("工廠忙碌中，略過更新")
		return ErrBusy
	}
	if !f.processing {
		return nil
	}
	f.ticking = true
	for _, ks := range f.kinds {
		// batches spawned by timers this tick start next tick
		f.tickDense = append(f.tickDense[:0], ks.active.Dense()...)
		for _, idx := range f.tickDense {
			if b := ks.batches[idx]; b != nil {
				b.Update(dt)
			}
		}
	}
	f.ticking = false
	f.flushRetired()
	return nil
}

func (f *Factory) onRetire(b *bullet.Batch, pooled bool) {
	if f.ticking || f.busy {
		f.retired = append(f.retired, retirement{b, pooled})
		return
	}
	f.retire(b, pooled)
}

func (f *Factory) retire(b *bullet.Batch, pooled bool) {
	ref, ok := f.refs[b.ID()]
	if !ok || b.Deleted() {
		return
	}
	ks := f.kind(ref.kind)
	ks.active.Deactivate(ref.index)
	if pooled {
		ks.pool.Push(b, b.Capacity())
		return
	}
	f.deleteBatch(b)
}

func (f *Factory) flushRetired() {
	for _, r := range f.retired {
		f.retire(r.batch, r.pooled)
	}
	clear(f.retired)
	f.retired = f.retired[:0]
}

// Interpolate renders every active batch at fraction frac of the last tick.
func (f *Factory) Interpolate(frac float64) {
	if !f.env.Interpolation {
		return
	}
	f.eachActive(func(b *bullet.Batch) { b.Interpolate(frac) })
}

func (f *Factory) eachActive(fn func(*bullet.Batch)) {
	for _, ks := range f.kinds {
		f.scratch = append(f.scratch[:0], ks.active.Dense()...)
		for _, idx := range f.scratch {
			if b := ks.batches[idx]; b != nil {
				fn(b)
			}
		}
	}
}

// Lookup returns a live batch by id.
func (f *Factory) Lookup(id uint64) (*bullet.Batch, bool) {
	ref, ok := f.refs[id]
	if !ok {
		return nil, false
	}
	b := f.kind(ref.kind).batches[ref.index]
	return b, b != nil
}

// Populate pre-warms the pool of kind with n disabled batches of capacity.
func (f *Factory) Populate(k bullet.Kind, n, capacity int) {
	if capacity <= 0 || n <= 0 {
		return
	}
	ks := f.kind(k)
	for i := 0; i < n; i++ {
		b := f.newBatch(k)
		b.SpawnDisabled(capacity)
		ks.pool.Push(b, capacity)
	}
	f.log.Debug("預先建立批次", zap.Stringer("kind", k), zap.Int("count", n), zap.Int("capacity", capacity))
}

// FreePool deletes pooled batches of capacity, or every pooled batch of the
// kind when capacity is 0.
func (f *Factory) FreePool(k bullet.Kind, capacity int) {
	ks := f.kind(k)
	if capacity <= 0 {
		ks.pool.FreeAll()
		return
	}
	ks.pool.FreeMatching(capacity)
}

// PopulateAttachments pre-warms n disabled attachments under poolingID.
func (f *Factory) PopulateAttachments(template string, poolingID uint32, n int) {
	for i := 0; i < n; i++ {
		id := f.env.Host.InstantiateInPool(template)
		if id.IsZero() {
			f.log.Warn("附件預建失敗", zap.String("template", template))
			return
		}
		f.env.Attachments.Push(id, poolingID)
	}
}

// FreeAttachments destroys pooled attachments of poolingID, or all of them
// when poolingID is negative.
func (f *Factory) FreeAttachments(poolingID int64) {
	if poolingID < 0 {
		f.env.Attachments.FreeAll()
		return
	}
	f.env.Attachments.FreeMatching(uint32(poolingID))
}

// FreeActive deletes every active batch without pooling it.
func (f *Factory) FreeActive() {
	for _, ks := range f.kinds {
		for ks.active.Len() > 0 {
			dense := ks.active.Dense()
			idx := dense[len(dense)-1]
			if b := ks.batches[idx]; b != nil {
				f.deleteBatch(b)
				continue
			}
			ks.active.Deactivate(idx)
		}
	}
}

// Reset deletes every batch and pooled attachment.
func (f *Factory) Reset() error {
	if f.busy {
		return ErrBusy
	}
	f.busy = true
	defer func() { f.busy = false }()

	f.FreeActive()
	for k := range f.kinds {
		f.FreePool(bullet.Kind(k), 0)
	}
	f.FreeAttachments(-1)
	clear(f.retired)
	f.retired = f.retired[:0]
	f.log.Info("工廠已重置")
	return nil
}

// SetProcessing pauses or resumes Tick.
func (f *Factory) SetProcessing(on bool) { f.processing = on }

func (f *Factory) Processing() bool { return f.processing }

// Teleport shifts every active bullet by shift.
func (f *Factory) Teleport(shift geom.Vec2) {
	f.eachActive(func(b *bullet.Batch) { b.Teleport(shift) })
}
