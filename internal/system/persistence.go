package system

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/bullets/internal/core/event"
	coresys "github.com/l1jgo/bullets/internal/core/system"
	"github.com/l1jgo/bullets/internal/factory"
	"github.com/l1jgo/bullets/internal/persist"
	"github.com/l1jgo/bullets/internal/snapshot"
	"go.uber.org/zap"
)

// SnapshotStore keeps encoded factory snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, name string, digest, payload []byte, batches, bullets int) (int64, error)
}

// HitJournal records bullet hits.
type HitJournal interface {
	WriteHits(ctx context.Context, entries []persist.HitEntry) error
}

// PersistenceSystem periodically saves a snapshot of every active batch and
// flushes the hit journal. Phase 5 (Persist).
type PersistenceSystem struct {
	factory  *factory.Factory
	store    SnapshotStore
	journal  HitJournal
	name     string
	interval time.Duration
	elapsed  time.Duration
	pending  []persist.HitEntry
	saved    int
	log      *zap.Logger
}

// NewPersistenceSystem wires autosave. A zero interval only saves on Flush.
// journal may be nil.
func NewPersistenceSystem(f *factory.Factory, bus *event.Bus, store SnapshotStore, journal HitJournal,
	name string, interval time.Duration, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{
		factory:  f,
		store:    store,
		journal:  journal,
		name:     name,
		interval: interval,
		log:      log,
	}
	if journal != nil && bus != nil {
		event.Subscribe(bus, s.recordHit)
	}
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) recordHit(ev event.BulletHit) {
	kind := "area"
	if ev.Kind == event.HitBody {
		kind = "body"
	}
	s.pending = append(s.pending, persist.HitEntry{
		Batch:  ev.Batch,
		Slot:   ev.Slot,
		Target: uint64(ev.Target),
		Kind:   kind,
		X:      ev.Transform.Origin.X,
		Y:      ev.Transform.Origin.Y,
	})
}

func (s *PersistenceSystem) Update(dt time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.elapsed += dt
	if s.elapsed < s.interval {
		return
	}
	s.elapsed = 0
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.log.Error("自動存檔失敗", zap.Error(err))
	}
}

// Flush writes pending hits and saves a snapshot now. Called for graceful
// shutdown as well.
func (s *PersistenceSystem) Flush(ctx context.Context) error {
	if s.journal != nil && len(s.pending) > 0 {
		if err := s.journal.WriteHits(ctx, s.pending); err != nil {
			return fmt.Errorf("flush hits: %w", err)
		}
		clear(s.pending)
		s.pending = s.pending[:0]
	}

	snap, err := s.factory.Save()
	if err != nil {
		return fmt.Errorf("save factory: %w", err)
	}
	payload, err := snapshot.Encode(snap)
	if err != nil {
		return err
	}
	digest, err := snapshot.Digest(payload)
	if err != nil {
		return err
	}
	bullets := s.factory.Stats().ActiveBullets()
	id, err := s.store.Save(ctx, s.name, digest, payload, len(snap.Batches), bullets)
	if err != nil {
		return err
	}
	s.saved++
	s.log.Debug("快照已儲存",
		zap.Int64("id", id),
		zap.Int("batches", len(snap.Batches)),
		zap.Int("bullets", bullets),
		zap.Int("bytes", len(payload)))
	return nil
}

// Saved is the number of snapshots written.
func (s *PersistenceSystem) Saved() int { return s.saved }

// PendingHits is the number of hits waiting for the next flush.
func (s *PersistenceSystem) PendingHits() int { return len(s.pending) }
