package factory

import (
	"github.com/l1jgo/bullets/internal/bullet"
	"go.uber.org/zap"
)

// Snapshot is the saved state of every active batch.
type Snapshot struct {
	Batches []*bullet.State `msgpack:"batches"`
}

// Save captures every active batch.
func (f *Factory) Save() (*Snapshot, error) {
	if f.busy {
		return nil, ErrBusy
	}
	f.busy = true
	defer func() { f.busy = false }()

	s := &Snapshot{}
	f.eachActive(func(b *bullet.Batch) {
		s.Batches = append(s.Batches, b.Save())
	})
	return s, nil
}

// Load spawns one new active batch per saved state. Existing batches are
// left alone; call Reset first to replace them.
func (f *Factory) Load(s *Snapshot) (int, error) {
	if f.busy {
		return 0, ErrBusy
	}
	f.busy = true
	defer func() { f.busy = false }()

	loaded := 0
	for _, st := range s.Batches {
		if st == nil {
			continue
		}
		b := f.newBatch(st.Kind)
		if !b.Load(st) || !b.Active() {
			f.deleteBatch(b)
			continue
		}
		f.activate(b)
		loaded++
	}
	if skipped := len(s.Batches) - loaded; skipped > 0 {
		f.log.Warn("部分批次無法載入", zap.Int("skipped", skipped))
	}
	f.flushRetired()
	return loaded, nil
}

// KindStats are the debug counters of one batch kind.
type KindStats struct {
	Batches       int
	ActiveBatches int
	PooledBatches int
	ActiveBullets int
	// PoolInfo maps capacity to the number of pooled batches.
	PoolInfo map[int]int
}

// Stats are the factory's debug counters.
type Stats struct {
	Directional        KindStats
	Block              KindStats
	ActiveAttachments  int
	PooledAttachments  int
	AttachmentPoolInfo map[uint32]int
}

func (f *Factory) kindStats(ks *kindState) KindStats {
	s := KindStats{
		Batches:       len(ks.batches) - len(ks.free),
		ActiveBatches: ks.active.Len(),
		PooledBatches: ks.pool.Len(),
		PoolInfo:      ks.pool.Info(),
	}
	for _, idx := range ks.active.Dense() {
		if b := ks.batches[idx]; b != nil {
			s.ActiveBullets += b.ActiveCount()
		}
	}
	return s
}

func (f *Factory) Stats() Stats {
	s := Stats{
		Directional:        f.kindStats(f.kinds[bullet.Directional]),
		Block:              f.kindStats(f.kinds[bullet.Block]),
		PooledAttachments:  f.env.Attachments.Len(),
		AttachmentPoolInfo: f.env.Attachments.Info(),
	}
	f.eachActive(func(b *bullet.Batch) { s.ActiveAttachments += b.AttachmentCount() })
	return s
}

// ActiveBullets is the number of enabled bullets over every kind.
func (s Stats) ActiveBullets() int {
	return s.Directional.ActiveBullets + s.Block.ActiveBullets
}
