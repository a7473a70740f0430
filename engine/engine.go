package engine

import (
	"context"

	"github.com/poiesic/graphkb/ai"
	"github.com/poiesic/graphkb/core"
)

// CompleteFunc is the chat-completion entry point handed to an engine.
// It matches ai.Completer.Complete.
type CompleteFunc func(ctx context.Context, prompt, systemPrompt string, history []ai.Message) (string, error)

// EmbeddingFunc is the embedding adapter handed to an engine. The engine
// reads the dimensionality and token budget from the named fields; Func
// performs the batched embedding call through the gateway.
type EmbeddingFunc struct {
	// Dim is the dimensionality of vectors produced by Func.
	Dim int

	// MaxTokenSize is the largest input, in tokens, a single embedding
	// call may carry. The engine chunks text to stay under it.
	MaxTokenSize int

	// Func performs the embedding call.
	Func func(ctx context.Context, texts []string) ([][]float32, error)
}

// Config carries everything an engine needs at construction time.
type Config struct {
	// WorkingDir is the knowledge base's private storage directory.
	// It exists before the factory is invoked.
	WorkingDir string

	// Complete is the LLM completion function.
	Complete CompleteFunc

	// Embedding is the embedding adapter.
	Embedding EmbeddingFunc
}

// Engine is a retrieval-engine instance bound to one knowledge base.
// Implementations must be safe for concurrent use: queries may run while
// an indexing pipeline inserts documents.
type Engine interface {
	// Init performs one-time storage initialization. The registry calls it
	// exactly once per constructed instance, before any other method.
	Init(ctx context.Context) error

	// Insert ingests one document's text into the knowledge graph.
	// This triggers extraction and embedding calls through the gateway
	// and may be slow.
	Insert(ctx context.Context, text string) error

	// Query answers a natural-language question using the given retrieval
	// mode.
	Query(ctx context.Context, question string, mode core.QueryMode) (string, error)

	// Close releases storage resources. The engine must not be used after
	// Close.
	Close() error
}

// Factory constructs an Engine for a knowledge base. The registry invokes
// it at most once per id (guarded by a per-id single-flight group).
type Factory func(cfg Config) (Engine, error)
