package llm

import (
	"context"
	"errors"
	"time"

	"github.com/lumilearn/cortex/internal/domain"
	"github.com/sony/gobreaker"
)

// ErrCircuitOpen is returned while the breaker rejects calls to a failing
// provider.
var ErrCircuitOpen = errors.New("llm circuit breaker is open")

const (
	DefaultCallTimeout = 10 * time.Second

	breakerMaxFailures = 3
	breakerCooldown    = 30 * time.Second
	breakerHalfOpenMax = 1
)

// ResilientClient wraps an LLMClient with a per-call timeout and a circuit
// breaker, so a stalled or failing provider cannot block a learner's pipeline
// indefinitely.
type ResilientClient struct {
	inner   domain.LLMClient
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

func NewResilientClient(inner domain.LLMClient, timeout time.Duration) *ResilientClient {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &ResilientClient{
		inner:   inner,
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "llm",
			MaxRequests: breakerHalfOpenMax,
			Timeout:     breakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerMaxFailures
			},
		}),
	}
}

func (c *ResilientClient) Generate(ctx context.Context, system string, history []domain.Message, user string) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return c.inner.Generate(callCtx, system, history, user)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", ErrCircuitOpen
		}
		return "", err
	}
	return result.(string), nil
}
