package analyzer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
)

// Analyzer constants
const (
	WindowSize          = 20   // rolling window of recent analyses
	SuccessThreshold    = 0.8  // accuracy at or above counts toward a success streak
	ErrorThreshold      = 0.5  // accuracy below counts toward an error streak
	NumericTolerance    = 0.01 // |response-expected| under this is correct
	FuzzyMatchThreshold = 0.8  // word-overlap ratio for the default checker
	BaselineAccuracy    = 0.5  // accuracy when correctness cannot be determined
	DefaultExpectedTime = 30.0 // seconds, when content carries no expected_time

	patternMinSamples = 5
	patternSpan       = 10
)

var uncertaintyMarkers = []string{
	"i think", "maybe", "probably", "not sure", "i guess", "perhaps", "might be", "could be",
}

var confidenceMarkers = []string{
	"definitely", "certainly", "absolutely", "sure", "clearly", "obviously", "of course",
}

type skillHistory struct {
	attempts   int
	successes  int
	accuracies []float64 // most recent last, capped at SkillHistoryCapacity
}

// Analyzer scores single interactions and tracks per-learner rolling context
// (recent accuracies, per-skill attempt history). It never returns an error:
// malformed input degrades to documented defaults.
type Analyzer struct {
	window []float64 // accuracies, most recent last, capped at WindowSize
	skills map[string]*skillHistory
}

func New() *Analyzer {
	return &Analyzer{
		skills: make(map[string]*skillHistory),
	}
}

// Analyze scores one interaction against its content descriptor.
func (a *Analyzer) Analyze(interactionType string, content domain.Content, response string, actx domain.InteractionContext) domain.Analysis {
	accuracy, correct, determined := a.checkCorrectness(content, response)
	if !determined {
		accuracy = BaselineAccuracy
		correct = false
	}

	a.window = append(a.window, accuracy)
	if len(a.window) > WindowSize {
		a.window = a.window[len(a.window)-WindowSize:]
	}

	responseTime := 0.0
	if !actx.StartTime.IsZero() {
		responseTime = time.Since(actx.StartTime).Seconds()
		if responseTime < 0 {
			responseTime = 0
		}
	}

	expectedTime, ok := content.Float("expected_time")
	if !ok || expectedTime <= 0 {
		expectedTime = DefaultExpectedTime
	}
	speed := expectedTime / math.Max(responseTime, 1)

	successes, errors := a.streaks()

	analysis := domain.Analysis{
		Accuracy:             accuracy,
		Correct:              correct,
		ResponseTime:         responseTime,
		Speed:                speed,
		ConfidenceSignal:     confidenceSignal(response),
		ConsecutiveSuccesses: successes,
		ConsecutiveErrors:    errors,
		Patterns:             a.detectPatterns(),
	}

	if skill := content.Str("skill"); skill != "" {
		analysis.Skill = skill
		analysis.SkillMastery = a.recordSkillAttempt(skill, accuracy, correct)
	}

	return analysis
}

// checkCorrectness applies the answer_type-specific checker. The third return
// reports whether correctness could be determined at all.
func (a *Analyzer) checkCorrectness(content domain.Content, response string) (accuracy float64, correct, determined bool) {
	expected := content.Str("expected_answer")
	if expected == "" || strings.TrimSpace(response) == "" {
		return 0, false, false
	}

	switch content.Str("answer_type") {
	case "exact":
		correct = normalize(response) == normalize(expected)
	case "contains":
		correct = strings.Contains(strings.ToLower(response), strings.ToLower(strings.TrimSpace(expected)))
	case "numeric":
		got, err1 := strconv.ParseFloat(strings.TrimSpace(response), 64)
		want, err2 := strconv.ParseFloat(strings.TrimSpace(expected), 64)
		correct = err1 == nil && err2 == nil && math.Abs(got-want) < NumericTolerance
	case "multiple_choice":
		for _, alt := range strings.Split(expected, "|") {
			if normalize(response) == normalize(alt) {
				correct = true
				break
			}
		}
	default:
		correct = fuzzyMatch(response, expected)
	}

	if correct {
		return 1.0, true, true
	}
	return 0.0, false, true
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// fuzzyMatch reports whether the word-overlap ratio between response and
// expected reaches the threshold, measured against the expected word count.
func fuzzyMatch(response, expected string) bool {
	expectedWords := strings.Fields(strings.ToLower(expected))
	if len(expectedWords) == 0 {
		return false
	}

	responseWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(response)) {
		responseWords[w] = true
	}

	overlap := 0
	seen := make(map[string]bool)
	for _, w := range expectedWords {
		if seen[w] {
			continue
		}
		seen[w] = true
		if responseWords[w] {
			overlap++
		}
	}

	return float64(overlap)/float64(len(seen)) >= FuzzyMatchThreshold
}

// streaks scans the window newest-first, counting consecutive successes and
// errors until the first break of each run.
func (a *Analyzer) streaks() (successes, errors int) {
	countingSuccess := true
	countingErrors := true
	for i := len(a.window) - 1; i >= 0; i-- {
		acc := a.window[i]
		if countingSuccess {
			if acc >= SuccessThreshold {
				successes++
			} else {
				countingSuccess = false
			}
		}
		if countingErrors {
			if acc < ErrorThreshold {
				errors++
			} else {
				countingErrors = false
			}
		}
		if !countingSuccess && !countingErrors {
			break
		}
	}
	return successes, errors
}

// confidenceSignal estimates learner confidence from the response text.
func confidenceSignal(response string) float64 {
	signal := 0.5

	words := len(strings.Fields(response))
	if words > 20 {
		signal += 0.2
	} else if words < 5 {
		signal -= 0.2
	}

	lower := strings.ToLower(response)
	for _, marker := range uncertaintyMarkers {
		if strings.Contains(lower, marker) {
			signal -= 0.15
		}
	}
	for _, marker := range confidenceMarkers {
		if strings.Contains(lower, marker) {
			signal += 0.15
		}
	}

	return domain.Clamp01(signal)
}

// recordSkillAttempt updates the per-skill history and returns the composite
// mastery score.
func (a *Analyzer) recordSkillAttempt(skill string, accuracy float64, correct bool) float64 {
	h, ok := a.skills[skill]
	if !ok {
		h = &skillHistory{}
		a.skills[skill] = h
	}

	h.attempts++
	if correct {
		h.successes++
	}
	h.accuracies = append(h.accuracies, accuracy)
	if len(h.accuracies) > domain.SkillHistoryCapacity {
		h.accuracies = h.accuracies[len(h.accuracies)-domain.SkillHistoryCapacity:]
	}

	avg := mean(h.accuracies)

	consistency := 0.5
	if len(h.accuracies) >= 3 {
		consistency = 1 - stdev(h.accuracies)
	}

	practice := math.Min(1, float64(h.attempts)/10)
	return domain.Clamp01(avg*0.5 + consistency*0.3 + practice*0.2)
}

// SkillMastery returns the current mastery for a skill, or 0 if never attempted.
func (a *Analyzer) SkillMastery(skill string) float64 {
	h, ok := a.skills[skill]
	if !ok || h.attempts == 0 {
		return 0
	}
	avg := mean(h.accuracies)
	consistency := 0.5
	if len(h.accuracies) >= 3 {
		consistency = 1 - stdev(h.accuracies)
	}
	return domain.Clamp01(avg*0.5 + consistency*0.3 + math.Min(1, float64(h.attempts)/10)*0.2)
}

// detectPatterns flags trend patterns over the last analyses. Flags are
// independent, not mutually exclusive.
func (a *Analyzer) detectPatterns() []string {
	if len(a.window) < patternMinSamples {
		return nil
	}

	recent := a.window
	if len(recent) > patternSpan {
		recent = recent[len(recent)-patternSpan:]
	}

	var patterns []string

	half := len(recent) / 2
	firstAvg := mean(recent[:half])
	secondAvg := mean(recent[half:])
	if secondAvg > firstAvg+0.15 {
		patterns = append(patterns, "improving")
	}
	if secondAvg < firstAvg-0.15 {
		patterns = append(patterns, "declining")
	}

	sd := stdev(recent)
	if sd < 0.1 {
		patterns = append(patterns, "plateau")
	}

	last5 := recent
	if len(last5) > 5 {
		last5 = last5[len(last5)-5:]
	}
	avg5 := mean(last5)
	if avg5 < 0.4 {
		patterns = append(patterns, "struggling")
	}
	if avg5 > 0.85 {
		patterns = append(patterns, "excelling")
	}

	if sd > 0.3 {
		patterns = append(patterns, "inconsistent")
	}

	return patterns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}
