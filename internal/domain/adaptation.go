package domain

import "time"

// Strategy identifies one content-transform applied by the adaptation engine.
type Strategy string

const (
	StrategyReduceDifficulty    Strategy = "reduce_difficulty"
	StrategyIncreaseDifficulty  Strategy = "increase_difficulty"
	StrategyBreakIntoSteps      Strategy = "break_into_steps"
	StrategyReduceCognitiveLoad Strategy = "reduce_cognitive_load"
	StrategyAddScaffolding      Strategy = "add_scaffolding"
	StrategyAddHints            Strategy = "add_hints"
	StrategyAddExamples         Strategy = "add_examples"
	StrategySimplifyLanguage    Strategy = "simplify_language"
	StrategyIncreaseEngagement  Strategy = "increase_engagement"
	StrategyChangeFormat        Strategy = "change_format"
	StrategyProvideChoice       Strategy = "provide_choice"
)

// AppliedAdaptation is the metadata attached to adapted content.
type AppliedAdaptation struct {
	Applied   []Strategy `json:"applied"`
	Timestamp time.Time  `json:"timestamp"`
	Reason    string     `json:"reason"`
}
