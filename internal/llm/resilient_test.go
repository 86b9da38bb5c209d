package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResilientClientPassThrough(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateResponse = "hello learner"

	rc := NewResilientClient(mock, time.Second)
	got, err := rc.Generate(context.Background(), "system", nil, "user")

	assert.NoError(t, err)
	assert.Equal(t, "hello learner", got)
	assert.Len(t, mock.GenerateCalls, 1)
}

func TestResilientClientPropagatesProviderError(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateError = errors.New("provider down")

	rc := NewResilientClient(mock, time.Second)
	_, err := rc.Generate(context.Background(), "system", nil, "user")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCircuitOpen)
}

func TestResilientClientOpensAfterConsecutiveFailures(t *testing.T) {
	mock := NewMockClient()
	mock.GenerateError = errors.New("provider down")

	rc := NewResilientClient(mock, time.Second)
	ctx := context.Background()

	for i := 0; i < breakerMaxFailures; i++ {
		_, err := rc.Generate(ctx, "system", nil, "user")
		assert.Error(t, err)
	}

	_, err := rc.Generate(ctx, "system", nil, "user")
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Len(t, mock.GenerateCalls, breakerMaxFailures, "open breaker must not reach the provider")
}

func TestResilientClientDefaultTimeout(t *testing.T) {
	rc := NewResilientClient(NewMockClient(), 0)
	assert.Equal(t, DefaultCallTimeout, rc.timeout)
}
