package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumilearn/cortex/internal/domain"
)

// SnapshotStore persists serialized learner state keyed by learner and kind.
// Each (learner_id, kind) pair holds at most one row; Set upserts.
type SnapshotStore struct {
	db *pgxpool.Pool
}

func NewSnapshotStore(db *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) Get(ctx context.Context, learnerID, kind string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM learner_snapshots
		WHERE learner_id = $1 AND kind = $2 AND expires_at > NOW()`,
		learnerID, kind,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *SnapshotStore) Set(ctx context.Context, learnerID, kind string, data []byte, ttl time.Duration) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO learner_snapshots (learner_id, kind, data, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW() + $4, NOW())
		ON CONFLICT (learner_id, kind) DO UPDATE SET data = $3, expires_at = NOW() + $4, updated_at = NOW()`,
		learnerID, kind, data, ttl,
	)
	return err
}

// DeleteExpired removes snapshots past their expiry. Meant to run from a
// background sweep.
func (s *SnapshotStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM learner_snapshots WHERE expires_at <= NOW()`,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
