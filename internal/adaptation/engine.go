package adaptation

import (
	"math/rand"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
)

// Adaptation constants
const (
	AdaptThreshold = 0.7 // system-level gate threshold
	MaxStrategies  = 3   // selection cap per interaction

	defaultReason = "Proactive adaptation for optimal learning"
)

// trigger maps a state/performance predicate to an ordered candidate list.
type trigger struct {
	label      string
	matches    func(s domain.CognitiveState, p domain.PerformanceMetrics) bool
	strategies []domain.Strategy
}

var triggers = []trigger{
	{
		label:   "high cognitive load",
		matches: func(s domain.CognitiveState, _ domain.PerformanceMetrics) bool { return s.CognitiveLoad > 0.8 },
		strategies: []domain.Strategy{
			domain.StrategyReduceDifficulty, domain.StrategyBreakIntoSteps, domain.StrategyReduceCognitiveLoad,
		},
	},
	{
		label:   "frustration detected",
		matches: func(s domain.CognitiveState, _ domain.PerformanceMetrics) bool { return s.Frustration > 0.7 },
		strategies: []domain.Strategy{
			domain.StrategyAddScaffolding, domain.StrategyAddHints, domain.StrategySimplifyLanguage,
		},
	},
	{
		label:   "low engagement",
		matches: func(s domain.CognitiveState, _ domain.PerformanceMetrics) bool { return s.Engagement < 0.4 },
		strategies: []domain.Strategy{
			domain.StrategyIncreaseEngagement, domain.StrategyChangeFormat, domain.StrategyProvideChoice,
		},
	},
	{
		label:   "low confidence",
		matches: func(s domain.CognitiveState, _ domain.PerformanceMetrics) bool { return s.Confidence < 0.3 },
		strategies: []domain.Strategy{
			domain.StrategyAddScaffolding, domain.StrategyAddExamples, domain.StrategyReduceDifficulty,
		},
	},
	{
		label:   "low accuracy",
		matches: func(_ domain.CognitiveState, p domain.PerformanceMetrics) bool { return p.Accuracy < 0.3 },
		strategies: []domain.Strategy{
			domain.StrategySimplifyLanguage, domain.StrategyBreakIntoSteps, domain.StrategyAddExamples,
		},
	},
	{
		label: "ready for challenge",
		matches: func(s domain.CognitiveState, p domain.PerformanceMetrics) bool {
			return p.Accuracy > 0.9 && s.Engagement > 0.7
		},
		strategies: []domain.Strategy{domain.StrategyIncreaseDifficulty},
	},
	{
		label:   "fatigue detected",
		matches: func(s domain.CognitiveState, _ domain.PerformanceMetrics) bool { return s.Fatigue > 0.6 },
		strategies: []domain.Strategy{
			domain.StrategyReduceCognitiveLoad, domain.StrategyChangeFormat,
		},
	},
}

// Engine selects and applies content-transform strategies. The random source
// is injected so change_format is deterministic in tests.
type Engine struct {
	rng *rand.Rand
}

func New(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{rng: rng}
}

// ShouldAdapt is the system-level gate: whether to adapt at all, independent
// of which strategies are chosen.
func ShouldAdapt(s domain.CognitiveState) bool {
	return s.CognitiveLoad > AdaptThreshold ||
		s.Engagement < 1-AdaptThreshold ||
		s.Frustration > AdaptThreshold*0.8 ||
		s.NeedsBreak ||
		s.RecommendedAction != domain.ActionContinue
}

// Select returns at most MaxStrategies strategies in first-seen order without
// duplicates, plus the matched trigger labels for the reason string.
func (e *Engine) Select(s domain.CognitiveState, p domain.PerformanceMetrics) ([]domain.Strategy, []string) {
	var selected []domain.Strategy
	var labels []string
	seen := make(map[domain.Strategy]bool)

	for _, tr := range triggers {
		if !tr.matches(s, p) {
			continue
		}
		labels = append(labels, tr.label)
		for _, strat := range tr.strategies {
			if seen[strat] {
				continue
			}
			seen[strat] = true
			selected = append(selected, strat)
		}
	}

	if len(selected) > MaxStrategies {
		selected = selected[:MaxStrategies]
	}
	return selected, labels
}

// Apply runs the strategy transforms over a copy of the content and attaches
// the applied-adaptation metadata.
func (e *Engine) Apply(content domain.Content, strategies []domain.Strategy, labels []string, profile domain.LearnerProfile, now time.Time) (domain.Content, domain.AppliedAdaptation) {
	out := content.Clone()
	if out == nil {
		out = domain.Content{}
	}

	for _, strat := range strategies {
		out = e.applyStrategy(out, strat, profile)
	}

	reason := defaultReason
	if len(labels) > 0 {
		reason = joinLabels(labels)
	}

	meta := domain.AppliedAdaptation{
		Applied:   strategies,
		Timestamp: now,
		Reason:    reason,
	}
	out["adaptation"] = meta
	return out, meta
}

func joinLabels(labels []string) string {
	s := labels[0]
	for _, l := range labels[1:] {
		s += ", " + l
	}
	return s
}
