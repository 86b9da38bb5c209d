package domain

import (
	"context"
	"time"
)

// Message is one turn of LLM context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// LLMClient generates natural-language text. The engine treats it as a black
// box returning a string and must tolerate empty, slow, or erroring responses.
type LLMClient interface {
	Generate(ctx context.Context, system string, history []Message, user string) (string, error)
}

// EmbeddingClient produces a vector for a piece of text.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Snapshot kinds written to the durable store.
const (
	SnapshotKindState    = "state"
	SnapshotKindHistory  = "history"
	SnapshotKindEpisodic = "episodic"
	SnapshotKindSemantic = "semantic"
	SnapshotKindSummary  = "summary"
)

// Default TTLs per snapshot kind.
const (
	StateTTL   = 24 * time.Hour
	HistoryTTL = 30 * 24 * time.Hour
	MemoryTTL  = 30 * 24 * time.Hour
	SummaryTTL = 7 * 24 * time.Hour
)

// SnapshotStore is the durable per-learner key-value boundary. Writes are
// best-effort: callers log failures and continue in-memory.
type SnapshotStore interface {
	Get(ctx context.Context, learnerID, kind string) ([]byte, error)
	Set(ctx context.Context, learnerID, kind string, data []byte, ttl time.Duration) error
}

// ArchivedEpisode is a significant interaction persisted for cross-session
// recall, optionally with an embedding for similarity search.
type ArchivedEpisode struct {
	ID         string    `json:"id"`
	LearnerID  string    `json:"learner_id"`
	Type       string    `json:"type"`
	Topic      string    `json:"topic,omitempty"`
	Skill      string    `json:"skill,omitempty"`
	Summary    string    `json:"summary,omitempty"`
	Accuracy   float64   `json:"accuracy"`
	Embedding  []float32 `json:"-"`
	Score      float32   `json:"score,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type EpisodeArchive interface {
	Save(ctx context.Context, ep *ArchivedEpisode) error
	FindSimilar(ctx context.Context, learnerID string, embedding []float32, limit int) ([]ArchivedEpisode, error)
	ListRecent(ctx context.Context, learnerID string, limit int) ([]ArchivedEpisode, error)
}
