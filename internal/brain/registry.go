package brain

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry defaults, overridable via SetIdleTTL and SetSweepInterval.
const (
	DefaultIdleTTL       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Registry maps learner ids to brain instances. Creation is lazy and
// single-flight under concurrency; idle brains are evicted by a background
// sweep that ends their session gracefully first.
type Registry struct {
	mu     sync.Mutex
	brains map[string]*Brain

	opts   Options
	logger *zap.Logger

	idleTTL       time.Duration
	sweepInterval time.Duration
	stopCh        chan struct{}
	wg            sync.WaitGroup
}

func NewRegistry(opts Options, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Logger == nil {
		opts.Logger = logger
	}
	return &Registry{
		brains:        make(map[string]*Brain),
		opts:          opts,
		logger:        logger,
		idleTTL:       DefaultIdleTTL,
		sweepInterval: DefaultSweepInterval,
		stopCh:        make(chan struct{}),
	}
}

func (r *Registry) SetIdleTTL(d time.Duration) {
	if d > 0 {
		r.idleTTL = d
	}
}

func (r *Registry) SetSweepInterval(d time.Duration) {
	if d > 0 {
		r.sweepInterval = d
	}
}

// GetOrCreate returns the brain for a learner, creating it if absent. Safe
// under concurrent first access: exactly one instance is ever created per id.
func (r *Registry) GetOrCreate(learnerID string) *Brain {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.brains[learnerID]
	if !ok {
		b = NewBrain(learnerID, r.opts)
		r.brains[learnerID] = b
	}
	return b
}

// Get returns the brain for a learner, or nil if none exists.
func (r *Registry) Get(learnerID string) *Brain {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.brains[learnerID]
}

// Len reports the number of resident brains.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.brains)
}

// Start runs the idle sweep on a periodic schedule in a background goroutine.
func (r *Registry) Start() {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()

		r.logger.Info("registry sweep started",
			zap.Duration("interval", r.sweepInterval),
			zap.Duration("idle_ttl", r.idleTTL))

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				evicted := r.Sweep(ctx)
				cancel()
				if evicted > 0 {
					r.logger.Info("evicted idle learners", zap.Int("count", evicted))
				}
			case <-r.stopCh:
				r.logger.Info("registry sweep stopped")
				return
			}
		}
	}()
}

// Stop halts the sweep goroutine and ends every resident session so final
// state is persisted before shutdown.
func (r *Registry) Stop() {
	close(r.stopCh)
	r.wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r.mu.Lock()
	brains := make([]*Brain, 0, len(r.brains))
	for _, b := range r.brains {
		brains = append(brains, b)
	}
	r.brains = make(map[string]*Brain)
	r.mu.Unlock()

	for _, b := range brains {
		if _, err := b.EndSession(ctx); err != nil {
			r.logger.Debug("shutdown without session end", zap.Error(err))
		}
	}
}

// Sweep evicts brains whose session started longer than the idle TTL ago,
// ending each session gracefully before removal. Returns the eviction count.
func (r *Registry) Sweep(ctx context.Context) int {
	now := time.Now()
	if r.opts.Now != nil {
		now = r.opts.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, b := range r.brains {
		start := b.SessionStart()
		if !start.IsZero() && now.Sub(start) <= r.idleTTL {
			continue
		}
		// Persist before removal. Uninitialized brains have nothing to end.
		if _, err := b.EndSession(ctx); err != nil {
			r.logger.Debug("idle eviction without session end",
				zap.String("learner_id", id),
				zap.Error(err))
		}
		delete(r.brains, id)
		evicted++
	}
	return evicted
}
