package brain

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumilearn/cortex/internal/adaptation"
	"github.com/lumilearn/cortex/internal/analyzer"
	"github.com/lumilearn/cortex/internal/cognitive"
	"github.com/lumilearn/cortex/internal/domain"
	"github.com/lumilearn/cortex/internal/llm"
	"github.com/lumilearn/cortex/internal/memory"
)

const (
	// SnapshotEvery is how many interactions pass between durable state writes.
	SnapshotEvery = 10

	historyWindow = 6 // recent session turns handed to the LLM as context

	fallbackResponse = "Great effort! Let's keep working on this together."
	fallbackFeedback = "Thanks for your answer. Let's look at the next one."
)

// Options carries the collaborators shared by every brain a registry creates.
// Nil stores and clients disable the corresponding side effects.
type Options struct {
	Cognitive cognitive.Config
	LLM       domain.LLMClient
	Snapshots domain.SnapshotStore
	Archive   domain.EpisodeArchive
	Embedder  domain.EmbeddingClient
	Logger    *zap.Logger
	Rand      *rand.Rand
	Now       func() time.Time
}

// InteractionRequest is one learner interaction to process.
type InteractionRequest struct {
	Type     string                    `json:"type"`
	Content  domain.Content            `json:"content"`
	Response string                    `json:"response,omitempty"`
	Context  domain.InteractionContext `json:"context"`
}

// InteractionResult is the structured outcome of one pipeline run. Pipeline
// failures surface as Success=false with Error set, not as returned errors.
type InteractionResult struct {
	Success           bool                      `json:"success"`
	Error             string                    `json:"error,omitempty"`
	AdaptedContent    domain.Content            `json:"adapted_content,omitempty"`
	ResponseText      string                    `json:"response_text,omitempty"`
	Feedback          string                    `json:"feedback,omitempty"`
	State             domain.CognitiveState     `json:"state"`
	Performance       domain.PerformanceMetrics `json:"performance"`
	Recommendations   []string                  `json:"recommendations,omitempty"`
	AdaptationApplied bool                      `json:"adaptation_applied"`
	ProcessingTime    float64                   `json:"processing_time"`
	SessionID         string                    `json:"session_id"`
}

// SessionSummary is the record produced by EndSession.
type SessionSummary struct {
	SessionID         string                    `json:"session_id"`
	LearnerID         string                    `json:"learner_id"`
	StartTime         time.Time                 `json:"start_time"`
	EndTime           time.Time                 `json:"end_time"`
	DurationSeconds   float64                   `json:"duration_seconds"`
	InteractionsCount int                       `json:"interactions_count"`
	AdaptationsMade   int                       `json:"adaptations_made"`
	FeedbackGiven     int                       `json:"feedback_given"`
	FinalState        domain.CognitiveState     `json:"final_state"`
	FinalPerformance  domain.PerformanceMetrics `json:"final_performance"`
	Recommendations   []string                  `json:"recommendations,omitempty"`
}

// StateView is the read-only snapshot returned by GetState.
type StateView struct {
	CognitiveState domain.CognitiveState     `json:"cognitive_state"`
	Performance    domain.PerformanceMetrics `json:"performance_metrics"`
	Session        SessionView               `json:"session"`
	MemoryCounts   MemoryCounts              `json:"memory_counts"`
}

type SessionView struct {
	ID              string    `json:"id"`
	StartTime       time.Time `json:"start_time"`
	Interactions    int       `json:"interactions"`
	AdaptationsMade int       `json:"adaptations_made"`
	FeedbackGiven   int       `json:"feedback_given"`
}

type MemoryCounts struct {
	ShortTerm int `json:"short_term"`
	Episodic  int `json:"episodic"`
	Semantic  int `json:"semantic"`
}

// Brain is the per-learner session orchestrator. It owns one cognitive state,
// one performance aggregate, one memory manager, and the current session, and
// serializes every mutation behind a single mutex.
type Brain struct {
	mu sync.Mutex

	learnerID   string
	initialized bool

	profile domain.LearnerProfile
	state   domain.CognitiveState
	perf    domain.PerformanceMetrics
	session domain.Session

	analyzer  *analyzer.Analyzer
	estimator *cognitive.Estimator
	engine    *adaptation.Engine
	memory    *memory.Manager

	llm       domain.LLMClient
	snapshots domain.SnapshotStore
	archive   domain.EpisodeArchive
	embedder  domain.EmbeddingClient
	logger    *zap.Logger
	now       func() time.Time
}

// NewBrain returns an uninitialized brain. Every operation except Initialize
// fails with ErrNotInitialized until a profile is supplied.
func NewBrain(learnerID string, opts Options) *Brain {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Brain{
		learnerID: learnerID,
		analyzer:  analyzer.New(),
		estimator: cognitive.New(opts.Cognitive),
		engine:    adaptation.New(opts.Rand),
		llm:       opts.LLM,
		snapshots: opts.Snapshots,
		archive:   opts.Archive,
		embedder:  opts.Embedder,
		logger:    opts.Logger.With(zap.String("learner_id", learnerID)),
		now:       opts.Now,
	}
}

// Initialize transitions the brain from uninitialized to active. It is
// idempotent on the initialized flag: re-initializing replaces the profile but
// keeps accumulated state.
func (b *Brain) Initialize(ctx context.Context, profile domain.LearnerProfile) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if profile.ID == "" {
		profile.ID = b.learnerID
	}
	if profile.ID != b.learnerID {
		return fmt.Errorf("%w: profile id %q does not match learner %q", domain.ErrValidation, profile.ID, b.learnerID)
	}
	if profile.LearningStyle != "" && !domain.ValidLearningStyle(string(profile.LearningStyle)) {
		return fmt.Errorf("%w: unknown learning style %q", domain.ErrValidation, profile.LearningStyle)
	}
	if profile.LearningStyle == "" {
		profile.LearningStyle = domain.LearningStyleMultimodal
	}

	now := b.now()
	b.profile = profile

	if !b.initialized {
		b.state = domain.NewCognitiveState(now)
		b.perf = domain.NewPerformanceMetrics()
		b.session = domain.NewSession(now)
		b.memory = memory.NewManager(profile, b.snapshots, b.archive, b.embedder, b.logger)
		b.restore(ctx, now)
		b.initialized = true
		b.logger.Info("brain initialized", zap.String("session_id", b.session.ID.String()))
	}

	return nil
}

// restore loads any persisted state and performance snapshots. Missing or
// corrupt snapshots are ignored; the learner starts from defaults. The
// session anchors always reset to now so stale timestamps cannot trip the
// break and timeout rules.
func (b *Brain) restore(ctx context.Context, now time.Time) {
	if b.snapshots == nil {
		return
	}

	if blob, err := b.snapshots.Get(ctx, b.learnerID, domain.SnapshotKindState); err == nil {
		var state domain.CognitiveState
		if err := json.Unmarshal(blob, &state); err == nil {
			state.SessionStart = now
			state.LastBreak = now
			b.state = state
		}
	}
	if blob, err := b.snapshots.Get(ctx, b.learnerID, domain.SnapshotKindHistory); err == nil {
		var perf domain.PerformanceMetrics
		if err := json.Unmarshal(blob, &perf); err == nil {
			if perf.MasteryLevels == nil {
				perf.MasteryLevels = make(map[string]float64)
			}
			b.perf = perf
		}
	}
}

// ProcessInteraction runs the full pipeline for one interaction. The
// cognitive, performance, and memory updates are computed first and committed
// only after the LLM call resolves, so a panic or cancellation mid-generation
// leaves no partial mutation behind. An LLM failure still commits and returns
// a successful result with fallback text.
func (b *Brain) ProcessInteraction(ctx context.Context, req InteractionRequest) (*InteractionResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, domain.ErrNotInitialized
	}
	if req.Type == "" {
		return nil, fmt.Errorf("%w: interaction type is required", domain.ErrValidation)
	}

	start := b.now()

	// Compute phase: all state math is synchronous and side-effect free.
	analysis := b.analyzer.Analyze(req.Type, req.Content, req.Response, req.Context)
	nextPerf := nextPerformance(b.perf, analysis)
	nextState := b.estimator.Next(b.state, analysis, req.Context, start)

	adaptedContent := req.Content
	var applied domain.AppliedAdaptation
	adapt := adaptation.ShouldAdapt(nextState)
	if adapt {
		strategies, labels := b.engine.Select(nextState, nextPerf)
		adaptedContent, applied = b.engine.Apply(req.Content, strategies, labels, b.profile, start)
	}

	// Suspension point: the only unbounded-latency call in the pipeline.
	responseText, feedback := b.generateText(ctx, req, analysis, nextState)

	// Commit phase.
	if nextState.RecommendedAction == domain.ActionTakeBreak {
		nextState.LastBreak = start
	}
	b.state = nextState
	b.perf = nextPerf

	it := domain.Interaction{
		ID:             uuid.New(),
		Type:           req.Type,
		Topic:          req.Content.Str("topic"),
		Skill:          analysis.Skill,
		ContentSummary: req.Content.Str("summary"),
		Response:       req.Response,
		Accuracy:       analysis.Accuracy,
		Correct:        analysis.Correct,
		ResponseTime:   analysis.ResponseTime,
		Frustration:    nextState.Frustration,
		Confidence:     nextState.Confidence,
		Timestamp:      start,
	}
	b.memory.Add(ctx, it)

	b.session.Interactions = append(b.session.Interactions, it)
	if adapt && len(applied.Applied) > 0 {
		b.session.AdaptationsMade++
	}
	if feedback != "" {
		b.session.FeedbackGiven++
	}

	if len(b.session.Interactions)%SnapshotEvery == 0 {
		b.persistState(ctx)
	}

	end := b.now()
	return &InteractionResult{
		Success:           true,
		AdaptedContent:    adaptedContent,
		ResponseText:      responseText,
		Feedback:          feedback,
		State:             b.state,
		Performance:       clonePerformance(b.perf),
		Recommendations:   Recommendations(b.state, b.perf),
		AdaptationApplied: adapt && len(applied.Applied) > 0,
		ProcessingTime:    end.Sub(start).Seconds(),
		SessionID:         b.session.ID.String(),
	}, nil
}

// EndSession summarizes and persists the current session, then resets the
// session entity to a fresh id and start time. CognitiveState and
// PerformanceMetrics are learner-scoped and survive the reset.
func (b *Brain) EndSession(ctx context.Context) (*SessionSummary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, domain.ErrNotInitialized
	}

	now := b.now()
	summary := &SessionSummary{
		SessionID:         b.session.ID.String(),
		LearnerID:         b.learnerID,
		StartTime:         b.session.StartTime,
		EndTime:           now,
		DurationSeconds:   now.Sub(b.session.StartTime).Seconds(),
		InteractionsCount: len(b.session.Interactions),
		AdaptationsMade:   b.session.AdaptationsMade,
		FeedbackGiven:     b.session.FeedbackGiven,
		FinalState:        b.state,
		FinalPerformance:  clonePerformance(b.perf),
		Recommendations:   Recommendations(b.state, b.perf),
	}

	if b.snapshots != nil {
		if blob, err := json.Marshal(summary); err == nil {
			if err := b.snapshots.Set(ctx, b.learnerID, domain.SnapshotKindSummary, blob, domain.SummaryTTL); err != nil {
				b.logger.Warn("session summary persist failed", zap.Error(err))
			}
		}
	}
	b.persistState(ctx)
	if err := b.memory.Flush(ctx); err != nil {
		b.logger.Warn("memory flush on session end failed", zap.Error(err))
	}

	b.session = domain.NewSession(now)
	b.logger.Info("session ended",
		zap.String("previous_session_id", summary.SessionID),
		zap.String("session_id", b.session.ID.String()),
		zap.Int("interactions", summary.InteractionsCount))

	return summary, nil
}

// GetState returns the current cognitive state, performance aggregate, and
// session view.
func (b *Brain) GetState() (*StateView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, domain.ErrNotInitialized
	}

	shortTerm, episodic, semantic := b.memory.Counts()
	return &StateView{
		CognitiveState: b.state,
		Performance:    clonePerformance(b.perf),
		Session: SessionView{
			ID:              b.session.ID.String(),
			StartTime:       b.session.StartTime,
			Interactions:    len(b.session.Interactions),
			AdaptationsMade: b.session.AdaptationsMade,
			FeedbackGiven:   b.session.FeedbackGiven,
		},
		MemoryCounts: MemoryCounts{ShortTerm: shortTerm, Episodic: episodic, Semantic: semantic},
	}, nil
}

// Retrieve queries the memory tiers for this learner.
func (b *Brain) Retrieve(query, topic, skill string, limit int) ([]domain.RetrievedMemory, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return nil, domain.ErrNotInitialized
	}
	return b.memory.Retrieve(query, topic, skill, limit), nil
}

// Initialized reports whether Initialize has run.
func (b *Brain) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.initialized
}

// SessionStart returns the current session's start time, or zero on an
// uninitialized brain. The registry's idle sweep keys off this.
func (b *Brain) SessionStart() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session.StartTime
}

// generateText asks the LLM for a tutor response and feedback. Failures fall
// back to canned text so the pipeline still succeeds.
func (b *Brain) generateText(ctx context.Context, req InteractionRequest, a domain.Analysis, state domain.CognitiveState) (responseText, feedback string) {
	responseText = fallbackResponse
	feedback = fallbackFeedback

	if b.llm == nil {
		return responseText, feedback
	}

	system := llm.TutorSystemPrompt(b.profile, state)
	history := b.sessionHistory()

	userPrompt := fmt.Sprintf("The learner is working on a %s interaction", req.Type)
	if topic := req.Content.Str("topic"); topic != "" {
		userPrompt += " about " + topic
	}
	if req.Response != "" {
		userPrompt += fmt.Sprintf(". They responded: %q", req.Response)
	}
	userPrompt += ". Write the tutor's next message."

	if text, err := b.llm.Generate(ctx, system, history, userPrompt); err != nil {
		b.logger.Warn("response generation failed, using fallback", zap.Error(err))
	} else if text != "" {
		responseText = text
	}

	if text, err := b.llm.Generate(ctx, system, nil, llm.FeedbackPrompt(a, req.Type)); err != nil {
		b.logger.Warn("feedback generation failed, using fallback", zap.Error(err))
	} else if text != "" {
		feedback = text
	}

	return responseText, feedback
}

// sessionHistory converts the most recent session turns into LLM messages.
func (b *Brain) sessionHistory() []domain.Message {
	its := b.session.Interactions
	if len(its) > historyWindow {
		its = its[len(its)-historyWindow:]
	}

	var history []domain.Message
	for _, it := range its {
		if it.Response == "" {
			continue
		}
		history = append(history, domain.Message{Role: "user", Content: it.Response})
	}
	return history
}

// persistState writes the state and performance snapshots. Best-effort.
func (b *Brain) persistState(ctx context.Context) {
	if b.snapshots == nil {
		return
	}

	if blob, err := json.Marshal(b.state); err == nil {
		if err := b.snapshots.Set(ctx, b.learnerID, domain.SnapshotKindState, blob, domain.StateTTL); err != nil {
			b.logger.Warn("state snapshot failed", zap.Error(err))
		}
	}
	if blob, err := json.Marshal(b.perf); err == nil {
		if err := b.snapshots.Set(ctx, b.learnerID, domain.SnapshotKindHistory, blob, domain.HistoryTTL); err != nil {
			b.logger.Warn("performance snapshot failed", zap.Error(err))
		}
	}
}

// nextPerformance folds one analysis into the aggregate via EMA.
func nextPerformance(p domain.PerformanceMetrics, a domain.Analysis) domain.PerformanceMetrics {
	next := clonePerformance(p)

	improvement := a.Accuracy - p.Accuracy
	observedConsistency := domain.Clamp01(1 - abs(improvement))

	next.Accuracy = ema(p.Accuracy, a.Accuracy)
	next.Speed = ema(p.Speed, a.Speed)
	next.Consistency = ema(p.Consistency, observedConsistency)
	next.ImprovementRate = ema(p.ImprovementRate, improvement)

	if a.Skill != "" {
		next.MasteryLevels[a.Skill] = a.SkillMastery
	}
	return next
}

func ema(old, observed float64) float64 {
	return domain.PerformanceEMAAlpha*observed + (1-domain.PerformanceEMAAlpha)*old
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clonePerformance(p domain.PerformanceMetrics) domain.PerformanceMetrics {
	out := p
	out.MasteryLevels = make(map[string]float64, len(p.MasteryLevels))
	for k, v := range p.MasteryLevels {
		out.MasteryLevels[k] = v
	}
	return out
}
