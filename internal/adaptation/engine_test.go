package adaptation

import (
	"math/rand"
	"testing"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
)

func newTestEngine() *Engine {
	return New(rand.New(rand.NewSource(42)))
}

func TestSelect_CapAndOrder(t *testing.T) {
	e := newTestEngine()

	// High load and high frustration overlap: must stay ≤3, first-seen order,
	// no duplicates, starting with reduce_difficulty.
	state := domain.CognitiveState{CognitiveLoad: 0.9, Frustration: 0.9, Engagement: 1, Confidence: 1}
	perf := domain.PerformanceMetrics{Accuracy: 0.5}

	selected, labels := e.Select(state, perf)
	if len(selected) != 3 {
		t.Fatalf("expected exactly 3 strategies, got %d: %v", len(selected), selected)
	}
	if selected[0] != domain.StrategyReduceDifficulty {
		t.Fatalf("expected reduce_difficulty first, got %v", selected[0])
	}

	seen := make(map[domain.Strategy]bool)
	for _, s := range selected {
		if seen[s] {
			t.Fatalf("duplicate strategy %v", s)
		}
		seen[s] = true
	}

	if len(labels) != 2 {
		t.Fatalf("expected 2 trigger labels, got %v", labels)
	}
}

func TestSelect_LowConfidenceDedup(t *testing.T) {
	e := newTestEngine()

	// Frustration and low confidence share add_scaffolding; it must appear once.
	state := domain.CognitiveState{Frustration: 0.8, Confidence: 0.2, Engagement: 1}
	selected, _ := e.Select(state, domain.PerformanceMetrics{Accuracy: 0.5})

	count := 0
	for _, s := range selected {
		if s == domain.StrategyAddScaffolding {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected add_scaffolding exactly once, got %d in %v", count, selected)
	}
}

func TestSelect_NoTriggers(t *testing.T) {
	e := newTestEngine()
	state := domain.CognitiveState{Engagement: 1, Confidence: 1}
	selected, labels := e.Select(state, domain.PerformanceMetrics{Accuracy: 0.5})
	if len(selected) != 0 || len(labels) != 0 {
		t.Fatalf("expected empty selection, got %v / %v", selected, labels)
	}
}

func TestSelect_ChallengeRequiresBoth(t *testing.T) {
	e := newTestEngine()

	selected, _ := e.Select(
		domain.CognitiveState{Engagement: 0.9, Confidence: 1},
		domain.PerformanceMetrics{Accuracy: 0.95},
	)
	if len(selected) != 1 || selected[0] != domain.StrategyIncreaseDifficulty {
		t.Fatalf("expected [increase_difficulty], got %v", selected)
	}

	selected, _ = e.Select(
		domain.CognitiveState{Engagement: 0.5, Confidence: 1},
		domain.PerformanceMetrics{Accuracy: 0.95},
	)
	if len(selected) != 0 {
		t.Fatalf("expected no selection without engagement, got %v", selected)
	}
}

func TestShouldAdapt(t *testing.T) {
	cases := []struct {
		name  string
		state domain.CognitiveState
		want  bool
	}{
		{"healthy", domain.CognitiveState{CognitiveLoad: 0.5, Engagement: 0.9, RecommendedAction: domain.ActionContinue}, false},
		{"high load", domain.CognitiveState{CognitiveLoad: 0.75, Engagement: 0.9, RecommendedAction: domain.ActionContinue}, true},
		{"low engagement", domain.CognitiveState{Engagement: 0.25, RecommendedAction: domain.ActionContinue}, true},
		{"frustration", domain.CognitiveState{Engagement: 0.9, Frustration: 0.6, RecommendedAction: domain.ActionContinue}, true},
		{"needs break", domain.CognitiveState{Engagement: 0.9, NeedsBreak: true, RecommendedAction: domain.ActionTakeBreak}, true},
		{"non-continue action", domain.CognitiveState{Engagement: 0.9, RecommendedAction: domain.ActionProvideHint}, true},
	}
	for _, tc := range cases {
		if got := ShouldAdapt(tc.state); got != tc.want {
			t.Fatalf("%s: ShouldAdapt = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestApply_MetadataAndReason(t *testing.T) {
	e := newTestEngine()
	now := time.Now()

	content := domain.Content{"text": "Solve the problem. Check your work.", "difficulty": 0.8}
	adapted, meta := e.Apply(content, []domain.Strategy{domain.StrategyReduceDifficulty}, []string{"high cognitive load", "frustration detected"}, domain.LearnerProfile{}, now)

	if meta.Reason != "high cognitive load, frustration detected" {
		t.Fatalf("unexpected reason %q", meta.Reason)
	}
	if !meta.Timestamp.Equal(now) {
		t.Fatal("metadata timestamp not set")
	}
	if _, ok := adapted["adaptation"]; !ok {
		t.Fatal("adapted content missing adaptation metadata")
	}

	// The source document must not be mutated.
	if _, ok := content["adaptation"]; ok {
		t.Fatal("original content mutated")
	}
	if content["difficulty"] != 0.8 {
		t.Fatalf("original difficulty mutated: %v", content["difficulty"])
	}
}

func TestApply_ProactiveReason(t *testing.T) {
	e := newTestEngine()
	_, meta := e.Apply(domain.Content{}, nil, nil, domain.LearnerProfile{}, time.Now())
	if meta.Reason != defaultReason {
		t.Fatalf("expected proactive reason, got %q", meta.Reason)
	}
}

func TestApply_ReduceDifficulty(t *testing.T) {
	e := newTestEngine()
	adapted, _ := e.Apply(domain.Content{"difficulty": 0.5}, []domain.Strategy{domain.StrategyReduceDifficulty}, nil, domain.LearnerProfile{}, time.Now())

	d, _ := adapted.Float("difficulty")
	if d < 0.299 || d > 0.301 {
		t.Fatalf("expected difficulty ~0.3, got %v", d)
	}
	if !adapted.Bool("simplified") {
		t.Fatal("expected simplified flag")
	}
}

func TestApply_BreakIntoStepsIdempotent(t *testing.T) {
	e := newTestEngine()
	content := domain.Content{"text": "First step. Second step. Third step."}

	once, _ := e.Apply(content, []domain.Strategy{domain.StrategyBreakIntoSteps}, nil, domain.LearnerProfile{}, time.Now())
	steps, ok := once["steps"].([]string)
	if !ok || len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %v", once["steps"])
	}

	twice, _ := e.Apply(once, []domain.Strategy{domain.StrategyBreakIntoSteps}, nil, domain.LearnerProfile{}, time.Now())
	if got := twice["steps"].([]string); len(got) != 3 {
		t.Fatalf("break_into_steps not idempotent: %v", got)
	}
}

func TestApply_ChangeFormatByAge(t *testing.T) {
	e := newTestEngine()
	young := domain.LearnerProfile{Age: 9}

	for i := 0; i < 20; i++ {
		adapted, _ := e.Apply(domain.Content{"format": "worksheet"}, []domain.Strategy{domain.StrategyChangeFormat}, nil, young, time.Now())
		format := adapted.Str("format")
		if format != "game" && format != "story" && format != "interactive" {
			t.Fatalf("format %q outside young-learner pool", format)
		}
		if adapted.Str("previous_format") != "worksheet" {
			t.Fatal("previous format not recorded")
		}
	}
}

func TestApply_ChangeFormatDeterministicWithSeed(t *testing.T) {
	a := New(rand.New(rand.NewSource(7)))
	b := New(rand.New(rand.NewSource(7)))

	for i := 0; i < 10; i++ {
		ca, _ := a.Apply(domain.Content{}, []domain.Strategy{domain.StrategyChangeFormat}, nil, domain.LearnerProfile{Age: 15}, time.Now())
		cb, _ := b.Apply(domain.Content{}, []domain.Strategy{domain.StrategyChangeFormat}, nil, domain.LearnerProfile{Age: 15}, time.Now())
		if ca.Str("format") != cb.Str("format") {
			t.Fatalf("seeded engines diverged: %q vs %q", ca.Str("format"), cb.Str("format"))
		}
	}
}
