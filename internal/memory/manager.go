package memory

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
	"go.uber.org/zap"
)

// Memory manager constants
const (
	FlushEvery       = 10  // persist blobs every Nth add
	SemanticEMAAlpha = 0.3 // topic accuracy smoothing
	MinQueryOverlap  = 2   // word overlap required for a retrieval hit
)

// Significance thresholds for episodic promotion.
const (
	significantFrustration  = 0.8
	significantConfidence   = 0.9
	significantLowAccuracy  = 0.2
	significantHighAccuracy = 0.95
)

var significantTypes = map[string]bool{
	"achievement":         true,
	"milestone":           true,
	"assessment_complete": true,
}

// Manager is the four-tier memory store for one learner. It is not safe for
// concurrent use; the owning brain serializes access.
type Manager struct {
	learnerID string
	logger    *zap.Logger

	snapshots domain.SnapshotStore
	archive   domain.EpisodeArchive
	embedder  domain.EmbeddingClient

	working   domain.WorkingMemory
	shortTerm *Ring[domain.Interaction]
	episodic  *Ring[domain.Interaction]
	semantic  map[string]*domain.TopicRecord

	addCount int
}

func NewManager(profile domain.LearnerProfile, snapshots domain.SnapshotStore, archive domain.EpisodeArchive, embedder domain.EmbeddingClient, logger *zap.Logger) *Manager {
	return &Manager{
		learnerID: profile.ID,
		logger:    logger,
		snapshots: snapshots,
		archive:   archive,
		embedder:  embedder,
		working:   domain.WorkingMemory{Profile: profile},
		shortTerm: NewRing[domain.Interaction](domain.ShortTermCapacity),
		episodic:  NewRing[domain.Interaction](domain.EpisodicCapacity),
		semantic:  make(map[string]*domain.TopicRecord),
	}
}

// Add records one interaction across the tiers. Persistence is best-effort:
// flush failures are logged and never block in-memory operation.
func (m *Manager) Add(ctx context.Context, it domain.Interaction) {
	m.shortTerm.Push(it)
	m.updateWorking(it)
	m.updateSemantic(it)

	if IsSignificant(it) {
		m.episodic.Push(it)
		m.archiveEpisode(ctx, it)
	}

	m.addCount++
	if m.addCount%FlushEvery == 0 {
		if err := m.Flush(ctx); err != nil {
			m.logger.Warn("memory flush failed",
				zap.String("learner_id", m.learnerID),
				zap.Error(err))
		}
	}
}

// IsSignificant reports whether an interaction is promoted to episodic memory.
func IsSignificant(it domain.Interaction) bool {
	return it.Frustration > significantFrustration ||
		it.Confidence > significantConfidence ||
		it.Accuracy < significantLowAccuracy ||
		it.Accuracy > significantHighAccuracy ||
		significantTypes[it.Type]
}

func (m *Manager) updateWorking(it domain.Interaction) {
	if it.Topic != "" && it.Topic != m.working.CurrentTopic {
		// Topic switch resets everything except the profile snapshot.
		m.working = domain.WorkingMemory{Profile: m.working.Profile, CurrentTopic: it.Topic}
	}
	if it.Skill != "" {
		m.working.CurrentSkill = it.Skill
	}

	if it.Correct {
		m.working.RecentSuccesses = appendCapped(m.working.RecentSuccesses, it, domain.RecentItemsCapacity)
	} else {
		m.working.RecentMistakes = appendCapped(m.working.RecentMistakes, it, domain.RecentItemsCapacity)
	}
}

func (m *Manager) updateSemantic(it domain.Interaction) {
	if it.Topic == "" {
		return
	}

	rec, ok := m.semantic[it.Topic]
	if !ok {
		rec = &domain.TopicRecord{
			Topic:           it.Topic,
			FirstSeen:       it.Timestamp,
			AverageAccuracy: it.Accuracy,
		}
		m.semantic[it.Topic] = rec
	} else {
		rec.AverageAccuracy = SemanticEMAAlpha*it.Accuracy + (1-SemanticEMAAlpha)*rec.AverageAccuracy
	}

	rec.TimesPracticed++
	rec.MasteryLevel = domain.Clamp01(rec.AverageAccuracy*0.6 + math.Min(1, float64(rec.TimesPracticed)/20)*0.4)

	if it.Skill != "" && !containsString(rec.RelatedSkills, it.Skill) {
		rec.RelatedSkills = append(rec.RelatedSkills, it.Skill)
	}

	if !it.Correct && it.ContentSummary != "" {
		rec.CommonMistakes = appendCapped(rec.CommonMistakes, it.ContentSummary, domain.CommonMistakesCapacity)
	}
}

// Retrieve scans short-term most-recent-first, then episodic, collecting up to
// limit matches. The semantic record for the context topic, if any, is always
// prepended and does not count against the limit.
func (m *Manager) Retrieve(query, topic, skill string, limit int) []domain.RetrievedMemory {
	if limit <= 0 {
		limit = 5
	}

	var results []domain.RetrievedMemory
	seen := make(map[string]bool)

	collect := func(tier string, ring *Ring[domain.Interaction]) {
		ring.ScanNewestFirst(func(it domain.Interaction) bool {
			if len(results) >= limit {
				return false
			}
			if seen[it.ID.String()] {
				return true
			}
			if matches(it, query, topic, skill) {
				seen[it.ID.String()] = true
				cp := it
				results = append(results, domain.RetrievedMemory{Tier: tier, Interaction: &cp})
			}
			return true
		})
	}

	collect("short_term", m.shortTerm)
	collect("episodic", m.episodic)

	if topic != "" {
		if rec, ok := m.semantic[topic]; ok {
			cp := *rec
			results = append([]domain.RetrievedMemory{{Tier: "semantic", Topic: &cp}}, results...)
		}
	}

	return results
}

func matches(it domain.Interaction, query, topic, skill string) bool {
	if topic != "" && it.Topic == topic {
		return true
	}
	if skill != "" && it.Skill == skill {
		return true
	}
	if query == "" {
		return false
	}

	queryWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(query)) {
		queryWords[w] = true
	}

	haystack := strings.ToLower(it.ContentSummary + " " + it.Topic + " " + it.Skill)
	overlap := 0
	counted := make(map[string]bool)
	for _, w := range strings.Fields(haystack) {
		if queryWords[w] && !counted[w] {
			counted[w] = true
			overlap++
			if overlap >= MinQueryOverlap {
				return true
			}
		}
	}
	return false
}

// Working returns the current working-memory tier.
func (m *Manager) Working() domain.WorkingMemory { return m.working }

// Topic returns the semantic record for a topic, or nil.
func (m *Manager) Topic(topic string) *domain.TopicRecord {
	rec, ok := m.semantic[topic]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// Counts reports the tier sizes, mostly for state views and tests.
func (m *Manager) Counts() (shortTerm, episodic, semantic int) {
	return m.shortTerm.Len(), m.episodic.Len(), len(m.semantic)
}

type snapshot struct {
	Episodic []domain.Interaction           `json:"episodic"`
	Semantic map[string]*domain.TopicRecord `json:"semantic"`
}

// Flush persists the episodic and semantic tiers to the durable store.
func (m *Manager) Flush(ctx context.Context) error {
	if m.snapshots == nil {
		return nil
	}

	episodicBlob, err := json.Marshal(m.episodic.Items())
	if err != nil {
		return err
	}
	if err := m.snapshots.Set(ctx, m.learnerID, domain.SnapshotKindEpisodic, episodicBlob, domain.MemoryTTL); err != nil {
		return err
	}

	semanticBlob, err := json.Marshal(m.semantic)
	if err != nil {
		return err
	}
	return m.snapshots.Set(ctx, m.learnerID, domain.SnapshotKindSemantic, semanticBlob, domain.MemoryTTL)
}

// archiveEpisode writes a significant interaction to the episode archive,
// embedding its summary when an embedding client is configured.
func (m *Manager) archiveEpisode(ctx context.Context, it domain.Interaction) {
	if m.archive == nil {
		return
	}

	ep := &domain.ArchivedEpisode{
		ID:         it.ID.String(),
		LearnerID:  m.learnerID,
		Type:       it.Type,
		Topic:      it.Topic,
		Skill:      it.Skill,
		Summary:    it.ContentSummary,
		Accuracy:   it.Accuracy,
		OccurredAt: it.Timestamp,
	}

	if m.embedder != nil && it.ContentSummary != "" {
		embedCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		vec, err := m.embedder.Embed(embedCtx, it.ContentSummary)
		cancel()
		if err != nil {
			m.logger.Debug("episode embedding failed", zap.Error(err))
		} else {
			ep.Embedding = vec
		}
	}

	if err := m.archive.Save(ctx, ep); err != nil {
		m.logger.Warn("episode archive write failed",
			zap.String("learner_id", m.learnerID),
			zap.Error(err))
	}
}

func appendCapped[T any](s []T, v T, capacity int) []T {
	s = append(s, v)
	if len(s) > capacity {
		s = s[len(s)-capacity:]
	}
	return s
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
