package analyzer

import (
	"testing"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
)

func analyze(a *Analyzer, content domain.Content, response string) domain.Analysis {
	return a.Analyze("question", content, response, domain.InteractionContext{StartTime: time.Now()})
}

func TestCheckCorrectness_Exact(t *testing.T) {
	a := New()

	res := analyze(a, domain.Content{"expected_answer": "paris", "answer_type": "exact"}, "  Paris ")
	if !res.Correct || res.Accuracy != 1.0 {
		t.Fatalf("expected exact match, got correct=%v accuracy=%v", res.Correct, res.Accuracy)
	}

	res = analyze(a, domain.Content{"expected_answer": "paris", "answer_type": "exact"}, "London")
	if res.Correct {
		t.Fatal("expected mismatch for wrong answer")
	}
}

func TestCheckCorrectness_Contains(t *testing.T) {
	a := New()
	res := analyze(a, domain.Content{"expected_answer": "mitochondria", "answer_type": "contains"}, "The Mitochondria is the powerhouse")
	if !res.Correct {
		t.Fatal("expected substring match")
	}
}

func TestCheckCorrectness_Numeric(t *testing.T) {
	a := New()

	res := analyze(a, domain.Content{"expected_answer": "3.2", "answer_type": "numeric"}, "3.14159")
	if res.Correct {
		t.Fatal("expected 3.14159 vs 3.2 to miss tolerance")
	}

	res = analyze(a, domain.Content{"expected_answer": "3.15", "answer_type": "numeric"}, "3.14159")
	if !res.Correct {
		t.Fatal("expected 3.14159 vs 3.15 to be within tolerance")
	}

	// Non-numeric response degrades to incorrect, never panics.
	res = analyze(a, domain.Content{"expected_answer": "42", "answer_type": "numeric"}, "forty-two")
	if res.Correct {
		t.Fatal("expected non-numeric response to be incorrect")
	}
}

func TestCheckCorrectness_MultipleChoice(t *testing.T) {
	a := New()
	res := analyze(a, domain.Content{"expected_answer": " A | B | C", "answer_type": "multiple_choice"}, "b")
	if !res.Correct {
		t.Fatal("expected b to match alternative B")
	}
}

func TestCheckCorrectness_FuzzyDefault(t *testing.T) {
	a := New()

	res := analyze(a, domain.Content{"expected_answer": "the water cycle has four stages"}, "water cycle has four stages indeed")
	if !res.Correct {
		t.Fatal("expected fuzzy match above threshold")
	}

	res = analyze(a, domain.Content{"expected_answer": "the water cycle has four stages"}, "photosynthesis")
	if res.Correct {
		t.Fatal("expected fuzzy mismatch")
	}
}

func TestAnalyze_MissingExpectedAnswerDegrades(t *testing.T) {
	a := New()
	res := analyze(a, domain.Content{}, "some response")
	if res.Accuracy != BaselineAccuracy {
		t.Fatalf("expected baseline accuracy %v, got %v", BaselineAccuracy, res.Accuracy)
	}
	if res.Correct {
		t.Fatal("undetermined correctness must not count as correct")
	}
	if len(res.Patterns) != 0 {
		t.Fatalf("expected no patterns on first sample, got %v", res.Patterns)
	}
}

func TestAnalyze_NilContent(t *testing.T) {
	a := New()
	res := a.Analyze("question", nil, "", domain.InteractionContext{})
	if res.Accuracy != BaselineAccuracy {
		t.Fatalf("expected baseline accuracy on nil content, got %v", res.Accuracy)
	}
}

func TestStreaks(t *testing.T) {
	a := New()
	content := domain.Content{"expected_answer": "x", "answer_type": "exact"}

	for i := 0; i < 3; i++ {
		analyze(a, content, "x")
	}
	res := analyze(a, content, "x")
	if res.ConsecutiveSuccesses != 4 {
		t.Fatalf("expected 4 consecutive successes, got %d", res.ConsecutiveSuccesses)
	}
	if res.ConsecutiveErrors != 0 {
		t.Fatalf("expected 0 consecutive errors, got %d", res.ConsecutiveErrors)
	}

	for i := 0; i < 2; i++ {
		analyze(a, content, "wrong")
	}
	res = analyze(a, content, "wrong")
	if res.ConsecutiveErrors != 3 {
		t.Fatalf("expected 3 consecutive errors, got %d", res.ConsecutiveErrors)
	}
	if res.ConsecutiveSuccesses != 0 {
		t.Fatalf("expected streak broken, got %d successes", res.ConsecutiveSuccesses)
	}
}

func TestConfidenceSignal(t *testing.T) {
	cases := []struct {
		response string
		want     float64
	}{
		{"yes", 0.3},                      // short answer
		{"i think maybe it is paris", 0.2}, // 6 words, two uncertainty markers
		{"definitely paris", 0.45},         // short but confident
	}
	for _, tc := range cases {
		got := confidenceSignal(tc.response)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("confidenceSignal(%q) = %v, want %v", tc.response, got, tc.want)
		}
	}
}

func TestConfidenceSignal_Clamped(t *testing.T) {
	got := confidenceSignal("maybe i think perhaps not sure i guess might be")
	if got != 0 {
		t.Fatalf("expected clamp at 0, got %v", got)
	}
}

func TestSkillMastery_Bounds(t *testing.T) {
	a := New()
	content := domain.Content{"expected_answer": "x", "answer_type": "exact", "skill": "fractions"}

	var last float64
	for i := 0; i < 15; i++ {
		res := analyze(a, content, "x")
		if res.SkillMastery < 0 || res.SkillMastery > 1 {
			t.Fatalf("mastery out of bounds: %v", res.SkillMastery)
		}
		if res.SkillMastery < last {
			t.Fatalf("mastery decreased at perfect accuracy: %v -> %v", last, res.SkillMastery)
		}
		last = res.SkillMastery
	}
}

func TestDetectPatterns_Struggling(t *testing.T) {
	a := New()
	content := domain.Content{"expected_answer": "x", "answer_type": "exact"}
	var res domain.Analysis
	for i := 0; i < 6; i++ {
		res = analyze(a, content, "wrong")
	}
	if !hasPattern(res.Patterns, "struggling") {
		t.Fatalf("expected struggling pattern, got %v", res.Patterns)
	}
	if !hasPattern(res.Patterns, "plateau") {
		t.Fatalf("expected plateau for constant accuracy, got %v", res.Patterns)
	}
}

func TestDetectPatterns_Improving(t *testing.T) {
	a := New()
	content := domain.Content{"expected_answer": "x", "answer_type": "exact"}
	for i := 0; i < 5; i++ {
		analyze(a, content, "wrong")
	}
	var res domain.Analysis
	for i := 0; i < 5; i++ {
		res = analyze(a, content, "x")
	}
	if !hasPattern(res.Patterns, "improving") {
		t.Fatalf("expected improving pattern, got %v", res.Patterns)
	}
}

func TestDetectPatterns_Excelling(t *testing.T) {
	a := New()
	content := domain.Content{"expected_answer": "x", "answer_type": "exact"}
	var res domain.Analysis
	for i := 0; i < 10; i++ {
		res = analyze(a, content, "x")
	}
	if !hasPattern(res.Patterns, "excelling") {
		t.Fatalf("expected excelling pattern, got %v", res.Patterns)
	}
}

func hasPattern(patterns []string, want string) bool {
	for _, p := range patterns {
		if p == want {
			return true
		}
	}
	return false
}
