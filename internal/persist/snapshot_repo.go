package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

var ErrNoSnapshot = errors.New("no snapshot")

// SnapshotRow is one stored snapshot without its payload.
type SnapshotRow struct {
	ID        int64
	Name      string
	Digest    []byte
	Batches   int
	Bullets   int
	Size      int
	CreatedAt time.Time
}

type SnapshotRepo struct {
	db *DB
}

func NewSnapshotRepo(db *DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

// Save stores an encoded snapshot envelope and returns its id.
func (r *SnapshotRepo) Save(ctx context.Context, name string, digest, payload []byte, batches, bullets int) (int64, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO factory_snapshots (name, digest, batches, bullets, payload)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		name, digest, batches, bullets, payload,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save snapshot %s: %w", name, err)
	}
	return id, nil
}

// Latest returns the newest payload stored under name.
func (r *SnapshotRepo) Latest(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT payload FROM factory_snapshots WHERE name = $1 ORDER BY created_at DESC, id DESC LIMIT 1`,
		name,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load snapshot %s: %w", name, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	return payload, nil
}

// List returns up to limit snapshots of name, newest first.
func (r *SnapshotRepo) List(ctx context.Context, name string, limit int) ([]SnapshotRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, digest, batches, bullets, octet_length(payload), created_at
		 FROM factory_snapshots WHERE name = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRow
	for rows.Next() {
		var s SnapshotRow
		if err := rows.Scan(&s.ID, &s.Name, &s.Digest, &s.Batches, &s.Bullets, &s.Size, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes all but the keep newest snapshots of name.
func (r *SnapshotRepo) Prune(ctx context.Context, name string, keep int) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM factory_snapshots WHERE name = $1 AND id NOT IN (
		   SELECT id FROM factory_snapshots WHERE name = $1 ORDER BY created_at DESC, id DESC LIMIT $2)`,
		name, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
