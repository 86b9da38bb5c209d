package brain

import (
	"sort"

	"github.com/lumilearn/cortex/internal/domain"
)

// Recommendations derives human-readable next steps from the current state and
// performance aggregate. Ordered roughly by urgency.
func Recommendations(s domain.CognitiveState, p domain.PerformanceMetrics) []string {
	var recs []string

	if s.NeedsBreak {
		recs = append(recs, "Take a short break before continuing")
	}
	if s.Frustration > 0.6 {
		recs = append(recs, "Offer encouragement and revisit an easier problem")
	}
	if s.CognitiveLoad > 0.7 {
		recs = append(recs, "Reduce the difficulty or break content into smaller steps")
	}
	if s.Engagement < 0.4 {
		recs = append(recs, "Switch to a more interactive activity format")
	}
	if s.Fatigue > 0.6 {
		recs = append(recs, "Move to a lighter activity to recover energy")
	}
	if p.Accuracy < 0.4 {
		recs = append(recs, "Review recent topics with additional examples")
	}
	if p.Accuracy > 0.85 && s.Engagement > 0.7 {
		recs = append(recs, "Introduce more challenging material")
	}

	for _, skill := range lowMasterySkills(p) {
		recs = append(recs, "Schedule extra practice for "+skill)
	}

	if len(recs) == 0 {
		recs = append(recs, "Continue with the current learning plan")
	}
	return recs
}

func lowMasterySkills(p domain.PerformanceMetrics) []string {
	var skills []string
	for skill, mastery := range p.MasteryLevels {
		if mastery < 0.3 {
			skills = append(skills, skill)
		}
	}
	sort.Strings(skills)
	return skills
}
