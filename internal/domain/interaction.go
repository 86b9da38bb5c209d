package domain

import (
	"time"

	"github.com/google/uuid"
)

// Content is the schema-less document passed through adaptation strategies.
// Accessors degrade to zero values instead of panicking on missing or
// mistyped fields.
type Content map[string]any

func (c Content) Str(key string) string {
	if c == nil {
		return ""
	}
	s, _ := c[key].(string)
	return s
}

func (c Content) Float(key string) (float64, bool) {
	if c == nil {
		return 0, false
	}
	switch v := c[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (c Content) Bool(key string) bool {
	if c == nil {
		return false
	}
	b, _ := c[key].(bool)
	return b
}

func (c Content) Has(key string) bool {
	if c == nil {
		return false
	}
	_, ok := c[key]
	return ok
}

// Clone returns a shallow copy so strategy transforms never mutate the
// caller's document.
func (c Content) Clone() Content {
	out := make(Content, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// InteractionContext carries the optional observation signals for one
// interaction. Zero values are valid.
type InteractionContext struct {
	StartTime    time.Time `json:"start_time,omitempty"`
	HelpRequests int       `json:"help_requests,omitempty"`
	Retries      int       `json:"retries,omitempty"`
	Distractions int       `json:"distractions,omitempty"`
}

// Interaction is the record written to memory tiers and the session log.
// Frustration and Confidence capture the cognitive state at the time of the
// interaction, which drives the significance rule for episodic memory.
type Interaction struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	Topic          string    `json:"topic,omitempty"`
	Skill          string    `json:"skill,omitempty"`
	ContentSummary string    `json:"content_summary,omitempty"`
	Response       string    `json:"response,omitempty"`
	Accuracy       float64   `json:"accuracy"`
	Correct        bool      `json:"correct"`
	ResponseTime   float64   `json:"response_time"`
	Frustration    float64   `json:"frustration"`
	Confidence     float64   `json:"confidence"`
	Timestamp      time.Time `json:"timestamp"`
}

// Session groups the interactions between two session resets. CognitiveState
// and PerformanceMetrics are learner-scoped and deliberately not part of it.
type Session struct {
	ID              uuid.UUID     `json:"id"`
	StartTime       time.Time     `json:"start_time"`
	Interactions    []Interaction `json:"interactions"`
	AdaptationsMade int           `json:"adaptations_made"`
	FeedbackGiven   int           `json:"feedback_given"`
}

func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.New(),
		StartTime: now,
	}
}
