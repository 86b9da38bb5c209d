package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/lumilearn/cortex/internal/domain"
)

// EpisodeStore archives significant interactions for cross-session recall.
type EpisodeStore struct {
	db *pgxpool.Pool
}

func NewEpisodeStore(db *pgxpool.Pool) *EpisodeStore {
	return &EpisodeStore{db: db}
}

func (s *EpisodeStore) Save(ctx context.Context, ep *domain.ArchivedEpisode) error {
	var embedding *pgvector.Vector
	if len(ep.Embedding) > 0 {
		v := pgvector.NewVector(ep.Embedding)
		embedding = &v
	}

	if ep.ID == "" {
		ep.ID = uuid.NewString()
	}
	if ep.OccurredAt.IsZero() {
		ep.OccurredAt = time.Now()
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO learner_episodes (
			id, learner_id, interaction_type, topic, skill, summary, accuracy,
			occurred_at, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		ep.ID, ep.LearnerID, ep.Type, ep.Topic, ep.Skill, ep.Summary, ep.Accuracy,
		ep.OccurredAt, embedding,
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

func (s *EpisodeStore) FindSimilar(ctx context.Context, learnerID string, embedding []float32, limit int) ([]domain.ArchivedEpisode, error) {
	if limit <= 0 {
		limit = 10
	}

	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT id, learner_id, interaction_type, topic, skill, summary, accuracy,
			occurred_at, 1 - (embedding <=> $1) AS score
		FROM learner_episodes
		WHERE learner_id = $2 AND embedding IS NOT NULL
		ORDER BY score DESC
		LIMIT $3`,
		vec, learnerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("find similar episodes query: %w", err)
	}
	defer rows.Close()

	return s.scanEpisodes(rows, true)
}

func (s *EpisodeStore) ListRecent(ctx context.Context, learnerID string, limit int) ([]domain.ArchivedEpisode, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, learner_id, interaction_type, topic, skill, summary, accuracy,
			occurred_at
		FROM learner_episodes
		WHERE learner_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2`,
		learnerID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent episodes query: %w", err)
	}
	defer rows.Close()

	return s.scanEpisodes(rows, false)
}

func (s *EpisodeStore) scanEpisodes(rows pgx.Rows, withScore bool) ([]domain.ArchivedEpisode, error) {
	var episodes []domain.ArchivedEpisode
	for rows.Next() {
		var ep domain.ArchivedEpisode
		dest := []any{&ep.ID, &ep.LearnerID, &ep.Type, &ep.Topic, &ep.Skill, &ep.Summary, &ep.Accuracy, &ep.OccurredAt}
		if withScore {
			dest = append(dest, &ep.Score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan episode row: %w", err)
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

var _ domain.EpisodeArchive = (*EpisodeStore)(nil)
