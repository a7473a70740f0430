package mock

import (
	"context"
	"sync"

	"github.com/poiesic/graphkb/ai"
)

// MockCompleter is a test double for ai.Completer.
// It allows custom behavior injection via function fields.
type MockCompleter struct {
	// CompleteFunc is called by Complete if set.
	// If nil, returns a canned acknowledgment of the prompt.
	CompleteFunc func(ctx context.Context, prompt, systemPrompt string, history []ai.Message) (string, error)

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockCompleter creates a mock completer with default canned behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{}
}

// Complete records the call and delegates to CompleteFunc when set.
func (m *MockCompleter) Complete(ctx context.Context, prompt, systemPrompt string, history []ai.Message) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, prompt, systemPrompt, history)
	}

	return "mock completion", nil
}

// CallCount returns the number of Complete invocations.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns the prompts received so far, in call order.
func (m *MockCompleter) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears recorded calls and injected behavior.
func (m *MockCompleter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.CompleteFunc = nil
}
