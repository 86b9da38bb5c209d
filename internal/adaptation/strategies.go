package adaptation

import (
	"strings"

	"github.com/lumilearn/cortex/internal/domain"
)

// Format pools for change_format. Younger learners get the narrower set.
var (
	youngFormats   = []string{"game", "story", "interactive"}
	defaultFormats = []string{"game", "story", "puzzle", "interactive", "hands-on"}
)

const youngLearnerAge = 12

// applyStrategy runs one transform. All transforms except change_format are
// idempotent: they check before setting.
func (e *Engine) applyStrategy(c domain.Content, strat domain.Strategy, profile domain.LearnerProfile) domain.Content {
	switch strat {
	case domain.StrategyReduceDifficulty:
		if d, ok := c.Float("difficulty"); ok {
			if d > 0 {
				c["difficulty"] = maxFloat(0, d-0.2)
			}
		} else {
			c["difficulty"] = 0.3
		}
		c["simplified"] = true

	case domain.StrategyIncreaseDifficulty:
		if d, ok := c.Float("difficulty"); ok {
			c["difficulty"] = minFloat(1, d+0.15)
		} else {
			c["difficulty"] = 0.7
		}
		c["challenge"] = true

	case domain.StrategyBreakIntoSteps:
		if !c.Has("steps") {
			if text := c.Str("text"); text != "" {
				c["steps"] = splitSentences(text)
			} else {
				c["steps"] = []string{}
			}
		}

	case domain.StrategyReduceCognitiveLoad:
		if !c.Has("max_items") {
			c["max_items"] = 3
		}
		c["visual_supports"] = true
		c["remove_distractions"] = true

	case domain.StrategyAddScaffolding:
		if !c.Has("scaffolding") {
			c["scaffolding"] = []string{"sentence_starters", "worked_example", "guided_practice"}
		}

	case domain.StrategyAddHints:
		if !c.Has("hints") {
			c["hints"] = []string{"Look at the first part of the problem", "Think about what you already know"}
		}

	case domain.StrategyAddExamples:
		if !c.Has("examples") {
			c["examples"] = []string{"worked_example"}
		}

	case domain.StrategySimplifyLanguage:
		if c.Str("language_level") != "simplified" {
			c["language_level"] = "simplified"
			c["short_sentences"] = true
		}

	case domain.StrategyIncreaseEngagement:
		c["interactive"] = true
		if len(profile.Interests) > 0 && !c.Has("theme") {
			c["theme"] = profile.Interests[0]
		}

	case domain.StrategyChangeFormat:
		pool := defaultFormats
		if profile.Age > 0 && profile.Age < youngLearnerAge {
			pool = youngFormats
		}
		if prior := c.Str("format"); prior != "" {
			c["previous_format"] = prior
		}
		c["format"] = pool[e.rng.Intn(len(pool))]

	case domain.StrategyProvideChoice:
		if !c.Has("choices") {
			c["choices"] = []string{"pick_activity", "pick_topic_order"}
		}
	}

	return c
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
