package brain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
	"github.com/lumilearn/cortex/internal/llm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestGetOrCreateSingleInstanceUnderConcurrency(t *testing.T) {
	reg := NewRegistry(testOptions(llm.NewMockClient()), nil)

	const goroutines = 32
	results := make([]*Brain, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = reg.GetOrCreate("learner-1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent GetOrCreate produced multiple instances")
		}
	}
	if reg.Len() != 1 {
		t.Fatalf("registry holds %d brains, want 1", reg.Len())
	}
}

func TestGetOrCreateSeparateLearners(t *testing.T) {
	reg := NewRegistry(testOptions(llm.NewMockClient()), nil)

	a := reg.GetOrCreate("learner-a")
	b := reg.GetOrCreate("learner-b")
	if a == b {
		t.Fatal("distinct learners should get distinct brains")
	}
	if reg.Get("learner-a") != a {
		t.Fatal("Get returned a different instance")
	}
	if reg.Get("missing") != nil {
		t.Fatal("Get for unknown learner should return nil")
	}
}

func TestSweepEvictsIdleBrains(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	opts := testOptions(llm.NewMockClient())
	opts.Now = clock.Now

	reg := NewRegistry(opts, nil)
	reg.SetIdleTTL(10 * time.Minute)

	ctx := context.Background()
	idle := reg.GetOrCreate("idle-learner")
	if err := idle.Initialize(ctx, domain.LearnerProfile{ID: "idle-learner"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	clock.Advance(5 * time.Minute)
	fresh := reg.GetOrCreate("fresh-learner")
	if err := fresh.Initialize(ctx, domain.LearnerProfile{ID: "fresh-learner"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	clock.Advance(6 * time.Minute) // idle at 11m, fresh at 6m

	if evicted := reg.Sweep(ctx); evicted != 1 {
		t.Fatalf("Sweep evicted %d, want 1", evicted)
	}
	if reg.Get("idle-learner") != nil {
		t.Fatal("idle learner should be gone")
	}
	if reg.Get("fresh-learner") == nil {
		t.Fatal("fresh learner should remain")
	}
}

func TestSweepEndsSessionGracefully(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	opts := testOptions(llm.NewMockClient())
	opts.Now = clock.Now

	reg := NewRegistry(opts, nil)
	reg.SetIdleTTL(time.Minute)

	ctx := context.Background()
	b := reg.GetOrCreate("learner-1")
	if err := b.Initialize(ctx, domain.LearnerProfile{ID: "learner-1"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := b.ProcessInteraction(ctx, correctAnswerRequest()); err != nil {
		t.Fatalf("ProcessInteraction failed: %v", err)
	}

	clock.Advance(2 * time.Minute)
	if evicted := reg.Sweep(ctx); evicted != 1 {
		t.Fatalf("Sweep evicted %d, want 1", evicted)
	}

	// The evicted brain's session was ended, so its session log is empty.
	view, err := b.GetState()
	if err != nil {
		t.Fatalf("GetState failed: %v", err)
	}
	if view.Session.Interactions != 0 {
		t.Fatal("sweep should end the session before removal")
	}
}

func TestStartStopLifecycle(t *testing.T) {
	reg := NewRegistry(testOptions(llm.NewMockClient()), nil)
	reg.SetSweepInterval(10 * time.Millisecond)

	b := reg.GetOrCreate("learner-1")
	if err := b.Initialize(context.Background(), domain.LearnerProfile{ID: "learner-1"}); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	reg.Start()
	reg.Stop()

	if reg.Len() != 0 {
		t.Fatalf("registry holds %d brains after Stop, want 0", reg.Len())
	}
}
