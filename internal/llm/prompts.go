package llm

import (
	"fmt"
	"strings"

	"github.com/lumilearn/cortex/internal/domain"
)

// TutorSystemPrompt builds the system prompt for response generation from the
// learner profile and current cognitive state.
func TutorSystemPrompt(profile domain.LearnerProfile, state domain.CognitiveState) string {
	var sb strings.Builder

	sb.WriteString("You are a patient, encouraging tutor working one-on-one with a learner.\n")
	fmt.Fprintf(&sb, "The learner is %d years old (grade %s) and learns best in a %s style.\n",
		profile.Age, profile.Grade, profile.LearningStyle)

	if len(profile.Interests) > 0 {
		fmt.Fprintf(&sb, "Their interests include: %s.\n", strings.Join(profile.Interests, ", "))
	}
	if len(profile.Accommodations) > 0 {
		fmt.Fprintf(&sb, "Honor these accommodations: %s.\n", strings.Join(profile.Accommodations, ", "))
	}

	switch {
	case state.Frustration > 0.6:
		sb.WriteString("The learner is frustrated right now. Be extra gentle, acknowledge effort, and offer a small win.\n")
	case state.Fatigue > 0.6:
		sb.WriteString("The learner is tiring. Keep responses short and suggest lighter activities.\n")
	case state.Engagement < 0.4:
		sb.WriteString("The learner is disengaging. Make the response lively and connect it to their interests.\n")
	}

	sb.WriteString("Keep language age-appropriate and responses concise.")
	return sb.String()
}

// FeedbackPrompt builds the user prompt for feedback generation after an
// interaction has been analyzed.
func FeedbackPrompt(a domain.Analysis, interactionType string) string {
	outcome := "incorrect"
	if a.Correct {
		outcome = "correct"
	}
	return fmt.Sprintf(
		"The learner just completed a %s interaction with a %s answer (accuracy %.2f, %d correct in a row, %d errors in a row). "+
			"Write one or two sentences of specific, encouraging feedback. Never shame mistakes.",
		interactionType, outcome, a.Accuracy, a.ConsecutiveSuccesses, a.ConsecutiveErrors)
}
