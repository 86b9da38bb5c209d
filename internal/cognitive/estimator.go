package cognitive

import (
	"time"

	"github.com/lumilearn/cortex/internal/domain"
)

// Default pacing thresholds. Both are overridable via Config.
const (
	DefaultBreakInterval  = 20 * time.Minute
	DefaultSessionTimeout = 60 * time.Minute
)

type Config struct {
	BreakInterval  time.Duration
	SessionTimeout time.Duration
}

// Estimator derives the next cognitive state from the prior state, elapsed
// time, and the performance analysis of the latest interaction. It holds no
// per-learner state; Next is a pure function of its inputs.
type Estimator struct {
	cfg Config
}

func New(cfg Config) *Estimator {
	if cfg.BreakInterval <= 0 {
		cfg.BreakInterval = DefaultBreakInterval
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = DefaultSessionTimeout
	}
	return &Estimator{cfg: cfg}
}

// Next computes the successor state. Every float dimension is clamped to
// [0,1]; ActivitiesCompleted increments by one per call.
func (e *Estimator) Next(prev domain.CognitiveState, a domain.Analysis, ictx domain.InteractionContext, now time.Time) domain.CognitiveState {
	sessionMinutes := now.Sub(prev.SessionStart).Minutes()
	if sessionMinutes < 0 {
		sessionMinutes = 0
	}
	minutesSinceBreak := now.Sub(prev.LastBreak).Minutes()

	errorRate := 1 - a.Accuracy

	load := domain.Clamp01(errorRate*0.3 +
		(a.ResponseTime/30)*0.2 +
		float64(prev.ActivitiesCompleted)*0.02 +
		(sessionMinutes/60)*0.2)

	engagement := domain.Clamp01(1 -
		float64(ictx.Distractions)*0.15 -
		float64(ictx.HelpRequests)*0.1 -
		float64(a.ConsecutiveErrors)*0.1)

	frustration := domain.Clamp01(float64(a.ConsecutiveErrors)*0.25 +
		errorRate*0.25 +
		float64(ictx.Retries)*0.15)

	fatigue := domain.Clamp01((sessionMinutes/45)*0.5 +
		float64(prev.ActivitiesCompleted)/20*0.3 +
		load*0.2)

	confidence := domain.Clamp01(a.Accuracy*0.4 +
		(1-frustration)*0.3 +
		prev.Confidence*0.3)

	motivation := domain.Clamp01(engagement*0.3 +
		confidence*0.3 +
		(1-frustration)*0.2 +
		(1-fatigue)*0.2)

	attention := domain.Clamp01(1 - fatigue*0.4 - float64(ictx.Distractions)*0.1)

	needsBreak := fatigue > 0.7 ||
		frustration > 0.8 ||
		minutesSinceBreak > e.cfg.BreakInterval.Minutes() ||
		load > 0.85 ||
		sessionMinutes > e.cfg.SessionTimeout.Minutes()

	next := domain.CognitiveState{
		CognitiveLoad:       load,
		Engagement:          engagement,
		Frustration:         frustration,
		Fatigue:             fatigue,
		Confidence:          confidence,
		Motivation:          motivation,
		AttentionSpan:       attention,
		NeedsBreak:          needsBreak,
		LastBreak:           prev.LastBreak,
		SessionStart:        prev.SessionStart,
		ActivitiesCompleted: prev.ActivitiesCompleted + 1,
	}
	next.RecommendedAction = recommendAction(next)
	return next
}

// recommendAction projects the continuous state onto a discrete action,
// first-match wins.
func recommendAction(s domain.CognitiveState) domain.RecommendedAction {
	switch {
	case s.NeedsBreak:
		return domain.ActionTakeBreak
	case s.Frustration > 0.7:
		return domain.ActionProvideHint
	case s.CognitiveLoad > 0.8:
		return domain.ActionReduceDifficulty
	case s.Engagement < 0.3:
		return domain.ActionSwitchActivity
	case s.Fatigue > 0.6:
		return domain.ActionLightActivity
	case s.Motivation < 0.3:
		return domain.ActionMotivationalBoost
	case s.Confidence < 0.3:
		return domain.ActionConfidenceBuilding
	default:
		return domain.ActionContinue
	}
}
