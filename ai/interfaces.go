package ai

import "context"

// Completer generates text from a prompt via the external chat-completion API.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete sends one chat-completion request. The message sequence is
	// assembled as: optional system prompt first, history in the given
	// order, then the user prompt last. A non-2xx upstream response is
	// returned as an error carrying the upstream detail.
	Complete(ctx context.Context, prompt, systemPrompt string, history []Message) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider aggregates the gateway services for convenient initialization and
// lifecycle management. Completion and embedding obtained from the same
// provider share one in-flight concurrency gate.
type Provider interface {
	// Completer returns the chat-completion service.
	Completer() Completer

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Close releases resources held by the provider and its services.
	Close() error
}
