package llm

import (
	"context"
	"sync"

	"github.com/lumilearn/cortex/internal/domain"
)

// MockClient is a configurable LLM client for testing.
// Set the response fields to control what Generate returns.
type MockClient struct {
	mu sync.Mutex

	GenerateResponse string
	GenerateError    error

	// Call tracking for assertions
	GenerateCalls []GenerateCall
}

type GenerateCall struct {
	System  string
	History []domain.Message
	User    string
}

func NewMockClient() *MockClient {
	return &MockClient{
		GenerateResponse: "Mock tutor response",
	}
}

func (c *MockClient) Generate(_ context.Context, system string, history []domain.Message, user string) (string, error) {
	c.mu.Lock()
	c.GenerateCalls = append(c.GenerateCalls, GenerateCall{System: system, History: history, User: user})
	c.mu.Unlock()

	if c.GenerateError != nil {
		return "", c.GenerateError
	}
	return c.GenerateResponse, nil
}

// Reset clears recorded calls and restores default responses.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.GenerateResponse = "Mock tutor response"
	c.GenerateError = nil
	c.GenerateCalls = nil
}
