package domain

type LearningStyle string

const (
	LearningStyleVisual         LearningStyle = "visual"
	LearningStyleAuditory       LearningStyle = "auditory"
	LearningStyleKinesthetic    LearningStyle = "kinesthetic"
	LearningStyleReadingWriting LearningStyle = "reading_writing"
	LearningStyleMultimodal     LearningStyle = "multimodal"
)

func ValidLearningStyle(s string) bool {
	switch LearningStyle(s) {
	case LearningStyleVisual, LearningStyleAuditory, LearningStyleKinesthetic,
		LearningStyleReadingWriting, LearningStyleMultimodal:
		return true
	}
	return false
}

type Pace string

const (
	PaceSlow     Pace = "slow"
	PaceModerate Pace = "moderate"
	PaceFast     Pace = "fast"
)

// LearnerProfile holds the read-mostly description of a learner, supplied by
// the external learner record source at initialization.
type LearnerProfile struct {
	ID                  string        `json:"id"`
	Age                 int           `json:"age"`
	Grade               string        `json:"grade"`
	LearningStyle       LearningStyle `json:"learning_style"`
	Diagnoses           []string      `json:"diagnoses,omitempty"`
	Accommodations      []string      `json:"accommodations,omitempty"`
	Strengths           []string      `json:"strengths,omitempty"`
	Challenges          []string      `json:"challenges,omitempty"`
	Interests           []string      `json:"interests,omitempty"`
	PreferredDifficulty float64       `json:"preferred_difficulty"`
	PreferredPace       Pace          `json:"preferred_pace"`
}
