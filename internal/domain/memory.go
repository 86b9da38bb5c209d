package domain

import "time"

// Capacities of the bounded memory collections.
const (
	ShortTermCapacity      = 50
	EpisodicCapacity       = 1000
	RecentItemsCapacity    = 5
	CommonMistakesCapacity = 10
	SkillHistoryCapacity   = 10
)

// WorkingMemory is the volatile, current-focus tier. Everything except the
// profile snapshot resets on topic switch.
type WorkingMemory struct {
	Profile         LearnerProfile `json:"profile"`
	CurrentTopic    string         `json:"current_topic,omitempty"`
	CurrentSkill    string         `json:"current_skill,omitempty"`
	RecentMistakes  []Interaction  `json:"recent_mistakes,omitempty"`
	RecentSuccesses []Interaction  `json:"recent_successes,omitempty"`
	ActiveGoals     []string       `json:"active_goals,omitempty"`
}

// TopicRecord is the semantic-memory entry for one topic.
type TopicRecord struct {
	Topic           string    `json:"topic"`
	FirstSeen       time.Time `json:"first_seen"`
	TimesPracticed  int       `json:"times_practiced"`
	AverageAccuracy float64   `json:"average_accuracy"`
	MasteryLevel    float64   `json:"mastery_level"`
	RelatedSkills   []string  `json:"related_skills,omitempty"`
	CommonMistakes  []string  `json:"common_mistakes,omitempty"`
}

// RetrievedMemory is one hit from a memory query, tagged with its source tier.
type RetrievedMemory struct {
	Tier        string       `json:"tier"`
	Interaction *Interaction `json:"interaction,omitempty"`
	Topic       *TopicRecord `json:"topic,omitempty"`
}
