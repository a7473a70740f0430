// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kb

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/poiesic/graphkb/ai"
	"github.com/poiesic/graphkb/engine"
	"golang.org/x/sync/singleflight"
)

// Embedding characteristics handed to every constructed engine.
const (
	embeddingDim          = 1024
	embeddingMaxTokenSize = 8192
)

// dirPrefix namespaces knowledge-base directories inside the storage root.
const dirPrefix = "kb_"

// Path returns the storage directory for a knowledge base id.
func Path(storageDir, kbID string) string {
	return filepath.Join(storageDir, dirPrefix+kbID)
}

// Registry lazily constructs and caches one engine per knowledge base.
// Construction for a given id runs at most once at a time; concurrent
// callers for the same id share the in-flight construction.
type Registry struct {
	storageDir string
	factory    engine.Factory
	provider   ai.Provider
	logger     *slog.Logger

	mu      sync.Mutex
	engines map[string]engine.Engine
	group   singleflight.Group
}

// NewRegistry creates a registry rooted at storageDir. A nil factory is
// permitted; GetOrCreate then fails with engine.ErrUnavailable.
func NewRegistry(storageDir string, factory engine.Factory, provider ai.Provider) *Registry {
	return &Registry{
		storageDir: storageDir,
		factory:    factory,
		provider:   provider,
		logger:     slog.Default().With("component", "kb-registry"),
		engines:    make(map[string]engine.Engine),
	}
}

// Path returns the storage directory for a knowledge base id.
func (r *Registry) Path(kbID string) string {
	return Path(r.storageDir, kbID)
}

// GetOrCreate returns the cached engine for kbID, constructing and
// initializing it on first use. Construction errors are not cached;
// the next call tries again.
func (r *Registry) GetOrCreate(ctx context.Context, kbID string) (engine.Engine, error) {
	r.mu.Lock()
	if eng, ok := r.engines[kbID]; ok {
		r.mu.Unlock()
		return eng, nil
	}
	r.mu.Unlock()

	result, err, _ := r.group.Do(kbID, func() (any, error) {
		// A construction that finished between the cache check and here
		// is visible now.
		r.mu.Lock()
		if eng, ok := r.engines[kbID]; ok {
			r.mu.Unlock()
			return eng, nil
		}
		r.mu.Unlock()

		eng, err := r.build(ctx, kbID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.engines[kbID] = eng
		r.mu.Unlock()
		return eng, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(engine.Engine), nil
}

func (r *Registry) build(ctx context.Context, kbID string) (engine.Engine, error) {
	if r.factory == nil {
		return nil, engine.ErrUnavailable
	}

	dir := r.Path(kbID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	eng, err := r.factory(engine.Config{
		WorkingDir: dir,
		Complete:   r.provider.Completer().Complete,
		Embedding: engine.EmbeddingFunc{
			Dim:          embeddingDim,
			MaxTokenSize: embeddingMaxTokenSize,
			Func:         r.provider.Embedder().EmbedTexts,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("constructing engine for %s: %w", kbID, err)
	}

	if err := eng.Init(ctx); err != nil {
		eng.Close()
		return nil, fmt.Errorf("initializing engine for %s: %w", kbID, err)
	}

	r.logger.Info("knowledge base engine created", "kb_id", kbID, "dir", dir)
	return eng, nil
}

// Remove closes and evicts the cached engine for kbID, if any.
func (r *Registry) Remove(kbID string) {
	r.mu.Lock()
	eng, ok := r.engines[kbID]
	delete(r.engines, kbID)
	r.mu.Unlock()

	if !ok {
		return
	}
	if err := eng.Close(); err != nil {
		r.logger.Warn("closing evicted engine", "kb_id", kbID, "err", err)
	}
}

// Cached reports whether an engine for kbID is currently in the cache.
func (r *Registry) Cached(kbID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.engines[kbID]
	return ok
}

// Count returns the number of cached engines.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// CloseAll closes every cached engine and empties the cache.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	engines := r.engines
	r.engines = make(map[string]engine.Engine)
	r.mu.Unlock()

	for kbID, eng := range engines {
		if err := eng.Close(); err != nil {
			r.logger.Warn("closing engine", "kb_id", kbID, "err", err)
		}
	}
}
