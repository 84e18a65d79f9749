package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HitEntry is one journaled bullet hit.
type HitEntry struct {
	Batch  uint64
	Slot   int
	Target uint64
	Kind   string // "area" or "body"
	X, Y   float64
}

type HitLogRepo struct {
	db *DB
}

func NewHitLogRepo(db *DB) *HitLogRepo {
	return &HitLogRepo{db: db}
}

// WriteHits writes a batch of hit entries in a single round trip.
func (r *HitLogRepo) WriteHits(ctx context.Context, entries []HitEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO hit_log (batch_id, slot, target, kind, x, y) VALUES ($1, $2, $3, $4, $5, $6)`,
			int64(e.Batch), e.Slot, int64(e.Target), e.Kind, e.X, e.Y,
		)
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("hit log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("hit log insert: %w", err)
	}
	return tx.Commit(ctx)
}

// MarkProcessed marks every pending hit entry as processed and returns how
// many were marked.
func (r *HitLogRepo) MarkProcessed(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE hit_log SET processed = TRUE WHERE processed = FALSE`,
	)
	if err != nil {
		return 0, fmt.Errorf("hit log mark processed: %w", err)
	}
	return tag.RowsAffected(), nil
}
