package llm

import (
	"context"
	"sync"
)

// MockClient is a configurable LLM client for testing.
// Responses are returned in order; the last one repeats once the script runs
// out. Set Err to make every call fail.
type MockClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error

	// Call tracking for assertions
	Calls []string

	next int
}

func NewMockClient(responses ...string) *MockClient {
	return &MockClient{Responses: responses}
}

func (c *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.Calls = append(c.Calls, prompt)
	if c.Err != nil {
		return "", c.Err
	}
	if len(c.Responses) == 0 {
		return "", nil
	}
	i := c.next
	if i >= len(c.Responses) {
		i = len(c.Responses) - 1
	}
	c.next++
	return c.Responses[i], nil
}

// Reset clears recorded calls and rewinds the response script.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Calls = nil
	c.next = 0
	c.Err = nil
}
