package domain

import "time"

type RecommendedAction string

const (
	ActionTakeBreak          RecommendedAction = "take_break"
	ActionProvideHint        RecommendedAction = "provide_hint"
	ActionReduceDifficulty   RecommendedAction = "reduce_difficulty"
	ActionSwitchActivity     RecommendedAction = "switch_activity"
	ActionLightActivity      RecommendedAction = "light_activity"
	ActionMotivationalBoost  RecommendedAction = "motivational_boost"
	ActionConfidenceBuilding RecommendedAction = "confidence_building"
	ActionContinue           RecommendedAction = "continue"
)

// CognitiveState is the multi-dimensional learner state. All float fields are
// kept in [0,1]; it is replaced wholesale once per processed interaction.
type CognitiveState struct {
	CognitiveLoad       float64           `json:"cognitive_load"`
	Engagement          float64           `json:"engagement"`
	Frustration         float64           `json:"frustration"`
	Fatigue             float64           `json:"fatigue"`
	Confidence          float64           `json:"confidence"`
	Motivation          float64           `json:"motivation"`
	AttentionSpan       float64           `json:"attention_span"`
	NeedsBreak          bool              `json:"needs_break"`
	RecommendedAction   RecommendedAction `json:"recommended_action"`
	LastBreak           time.Time         `json:"last_break"`
	SessionStart        time.Time         `json:"session_start"`
	ActivitiesCompleted int               `json:"activities_completed"`
}

// NewCognitiveState returns the default state for a freshly initialized learner.
func NewCognitiveState(now time.Time) CognitiveState {
	return CognitiveState{
		CognitiveLoad:     0.5,
		Engagement:        1.0,
		Frustration:       0.0,
		Fatigue:           0.0,
		Confidence:        0.7,
		Motivation:        0.8,
		AttentionSpan:     1.0,
		RecommendedAction: ActionContinue,
		LastBreak:         now,
		SessionStart:      now,
	}
}

// Clamp01 bounds v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
