package domain

// PerformanceEMAAlpha is the smoothing factor for all aggregate performance
// updates: new = alpha*observed + (1-alpha)*old.
const PerformanceEMAAlpha = 0.3

// PerformanceMetrics is the learner-scoped performance aggregate. It survives
// session resets and is updated via EMA after every interaction.
type PerformanceMetrics struct {
	Accuracy        float64            `json:"accuracy"`
	Speed           float64            `json:"speed"`
	Consistency     float64            `json:"consistency"`
	ImprovementRate float64            `json:"improvement_rate"`
	MasteryLevels   map[string]float64 `json:"mastery_levels"`
}

func NewPerformanceMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		Accuracy:      0.5,
		Speed:         1.0,
		Consistency:   1.0,
		MasteryLevels: make(map[string]float64),
	}
}

// Analysis is the Performance Analyzer's per-interaction output.
type Analysis struct {
	Accuracy             float64  `json:"accuracy"`
	Correct              bool     `json:"correct"`
	ResponseTime         float64  `json:"response_time"`
	Speed                float64  `json:"speed"`
	ConfidenceSignal     float64  `json:"confidence_signal"`
	ConsecutiveSuccesses int      `json:"consecutive_successes"`
	ConsecutiveErrors    int      `json:"consecutive_errors"`
	Skill                string   `json:"skill,omitempty"`
	SkillMastery         float64  `json:"skill_mastery"`
	Patterns             []string `json:"patterns,omitempty"`
}
