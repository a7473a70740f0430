package mock

import "github.com/poiesic/graphkb/ai"

// MockProvider is a test double for ai.Provider bundling the mock services.
type MockProvider struct {
	MockCompleter *MockCompleter
	MockEmbedder  *MockEmbedder
}

// NewMockProvider creates a provider with default mock services.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		MockCompleter: NewMockCompleter(),
		MockEmbedder:  NewMockEmbedder(),
	}
}

// Completer returns the mock completion service.
func (p *MockProvider) Completer() ai.Completer {
	return p.MockCompleter
}

// Embedder returns the mock embedding service.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.MockEmbedder
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
