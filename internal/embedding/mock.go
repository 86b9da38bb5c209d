package embedding

import (
	"context"
	"hash/fnv"
	"sync"
)

const mockDimensions = 1536

// MockClient produces deterministic pseudo-embeddings without any network
// calls. The same text always maps to the same vector.
type MockClient struct {
	mu sync.Mutex

	EmbedError error
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Embed(_ context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	c.EmbedCalls = append(c.EmbedCalls, text)
	c.mu.Unlock()

	if c.EmbedError != nil {
		return nil, c.EmbedError
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()

	vec := make([]float32, mockDimensions)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return vec, nil
}

// Reset clears recorded calls and any injected error.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.EmbedError = nil
	c.EmbedCalls = nil
}
