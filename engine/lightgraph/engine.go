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

package lightgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/poiesic/graphkb/core"
	"github.com/poiesic/graphkb/engine"
)

// Engine is the graph-plus-vector retrieval engine. One instance serves
// one knowledge base directory. Inserts extract entities and relations
// into a merged knowledge graph and embed text chunks into a vector
// store; queries combine the two depending on mode.
type Engine struct {
	workingDir string
	complete   engine.CompleteFunc
	embedding  engine.EmbeddingFunc
	logger     *slog.Logger

	vectors *vectorStore

	// mu guards graph and the files it is persisted to.
	mu    sync.Mutex
	graph *graphDoc
}

var _ engine.Engine = (*Engine)(nil)

// New is an engine.Factory producing lightgraph engines.
func New(cfg engine.Config) (engine.Engine, error) {
	if cfg.WorkingDir == "" {
		return nil, errors.New("lightgraph: working directory required")
	}
	if cfg.Complete == nil {
		return nil, errors.New("lightgraph: completion function required")
	}
	if cfg.Embedding.Func == nil {
		return nil, errors.New("lightgraph: embedding function required")
	}

	return &Engine{
		workingDir: cfg.WorkingDir,
		complete:   cfg.Complete,
		embedding:  cfg.Embedding,
		logger:     slog.Default().With("component", "lightgraph"),
	}, nil
}

// Init opens the vector store and restores any previously persisted graph.
func (e *Engine) Init(ctx context.Context) error {
	vectors, err := openVectorStore(filepath.Join(e.workingDir, vectorsDirName))
	if err != nil {
		return fmt.Errorf("opening vector store: %w", err)
	}

	graph, err := loadGraphML(filepath.Join(e.workingDir, graphFileName))
	if err != nil {
		vectors.Close()
		return err
	}

	e.vectors = vectors
	e.graph = graph
	e.logger.Debug("engine initialized",
		"dir", e.workingDir,
		"entities", len(graph.nodes),
		"relations", len(graph.edges))
	return nil
}

// Insert ingests one document: chunk, embed, store vectors, extract the
// graph fragment per chunk, and persist the merged graph.
func (e *Engine) Insert(ctx context.Context, text string) error {
	pieces := splitChunks(text, chunkLimit(e.embedding.MaxTokenSize))
	if len(pieces) == 0 {
		return nil
	}

	vectors, err := e.embedding.Func(ctx, pieces)
	if err != nil {
		return fmt.Errorf("embedding document: %w", err)
	}
	if len(vectors) != len(pieces) {
		return fmt.Errorf("embedding returned %d vectors for %d chunks", len(vectors), len(pieces))
	}

	docID := core.IDFromContent(text)
	chunks := make([]core.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = core.Chunk{
			Id:     core.IDFromContent(piece),
			DocId:  docID,
			Text:   piece,
			Vector: vectors[i],
		}
	}
	if err := e.vectors.putChunks(chunks); err != nil {
		return fmt.Errorf("storing chunks: %w", err)
	}

	merged := &extraction{}
	for _, piece := range pieces {
		ext, err := extractGraph(ctx, e.complete, piece, e.logger)
		if err != nil {
			return fmt.Errorf("extracting graph: %w", err)
		}
		merged.Entities = append(merged.Entities, ext.Entities...)
		merged.Relations = append(merged.Relations, ext.Relations...)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.graph.merge(merged)
	if err := writeGraphML(filepath.Join(e.workingDir, graphFileName), e.graph); err != nil {
		return fmt.Errorf("persisting graph: %w", err)
	}

	names := make([]string, 0, len(merged.Entities))
	for _, ent := range merged.Entities {
		names = append(names, ent.Name)
	}
	pairs := make([][]string, 0, len(merged.Relations))
	for _, rel := range merged.Relations {
		pairs = append(pairs, []string{rel.Source, rel.Target})
	}
	if err := appendDocRecords(e.workingDir, docKey(docID), names, pairs); err != nil {
		return fmt.Errorf("persisting document records: %w", err)
	}

	e.logger.Info("document inserted",
		"chunks", len(pieces),
		"entities", len(names),
		"relations", len(pairs))
	return nil
}

// Close releases the vector store.
func (e *Engine) Close() error {
	if e.vectors == nil {
		return nil
	}
	return e.vectors.Close()
}
