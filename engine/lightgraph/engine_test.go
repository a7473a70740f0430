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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/graphkb/ai"
	"github.com/poiesic/graphkb/core"
	"github.com/poiesic/graphkb/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testExtraction = `{
	"entities": [
		{"name": "Ada Lovelace", "type": "person", "description": "mathematician"},
		{"name": "Analytical Engine", "type": "machine", "description": "mechanical computer"}
	],
	"relations": [
		{"source": "Ada Lovelace", "target": "Analytical Engine", "type": "wrote programs for", "description": "first published algorithm"}
	]
}`

// testCompleter answers extraction calls with fixed graph JSON and every
// other call with a canned answer.
func testCompleter(answer string) engine.CompleteFunc {
	return func(ctx context.Context, prompt, systemPrompt string, history []ai.Message) (string, error) {
		if systemPrompt == extractionSystemPrompt {
			return testExtraction, nil
		}
		return answer, nil
	}
}

func testEmbedding(dim int) engine.EmbeddingFunc {
	return engine.EmbeddingFunc{
		Dim:          dim,
		MaxTokenSize: 8192,
		Func: func(ctx context.Context, texts []string) ([][]float32, error) {
			vectors := make([][]float32, len(texts))
			for i := range texts {
				vec := make([]float32, dim)
				for j := range vec {
					vec[j] = float32((len(texts[i])+i+j)%7) + 1
				}
				vectors[i] = vec
			}
			return vectors, nil
		},
	}
}

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()

	eng, err := New(engine.Config{
		WorkingDir: dir,
		Complete:   testCompleter("the answer"),
		Embedding:  testEmbedding(8),
	})
	require.NoError(t, err)
	require.NoError(t, eng.Init(context.Background()))
	t.Cleanup(func() { eng.Close() })

	return eng.(*Engine)
}

func TestNew(t *testing.T) {
	t.Run("rejects missing working dir", func(t *testing.T) {
		_, err := New(engine.Config{
			Complete:  testCompleter(""),
			Embedding: testEmbedding(8),
		})
		assert.Error(t, err)
	})

	t.Run("rejects missing completion function", func(t *testing.T) {
		_, err := New(engine.Config{
			WorkingDir: t.TempDir(),
			Embedding:  testEmbedding(8),
		})
		assert.Error(t, err)
	})

	t.Run("rejects missing embedding function", func(t *testing.T) {
		_, err := New(engine.Config{
			WorkingDir: t.TempDir(),
			Complete:   testCompleter(""),
		})
		assert.Error(t, err)
	})
}

func TestEngineInsert(t *testing.T) {
	dir := t.TempDir()
	eng := newTestEngine(t, dir)

	err := eng.Insert(context.Background(), "Ada Lovelace wrote programs for the Analytical Engine.")
	require.NoError(t, err)

	t.Run("persists the graph file", func(t *testing.T) {
		_, err := os.Stat(filepath.Join(dir, graphFileName))
		require.NoError(t, err)

		g, err := loadGraphML(filepath.Join(dir, graphFileName))
		require.NoError(t, err)
		assert.Len(t, g.nodes, 2)
		assert.Len(t, g.edges, 1)
	})

	t.Run("persists flat document records", func(t *testing.T) {
		entities := make(map[string][]string)
		require.NoError(t, readJSONFile(filepath.Join(dir, entitiesFileName), &entities))
		require.Len(t, entities, 1)
		for _, names := range entities {
			assert.Contains(t, names, "Ada Lovelace")
		}
	})

	t.Run("stores chunk vectors", func(t *testing.T) {
		hits, err := eng.vectors.search([]float32{1, 2, 3, 4, 5, 6, 7, 1}, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, hits)
	})

	t.Run("empty text is a no-op", func(t *testing.T) {
		require.NoError(t, eng.Insert(context.Background(), "   "))
	})
}

func TestEngineQuery(t *testing.T) {
	dir := t.TempDir()
	eng := newTestEngine(t, dir)
	require.NoError(t, eng.Insert(context.Background(), "Ada Lovelace wrote programs for the Analytical Engine."))

	ctx := context.Background()

	for _, mode := range []core.QueryMode{core.ModeNaive, core.ModeLocal, core.ModeGlobal, core.ModeHybrid} {
		t.Run(string(mode), func(t *testing.T) {
			answer, err := eng.Query(ctx, "Who was Ada Lovelace?", mode)
			require.NoError(t, err)
			assert.Equal(t, "the answer", answer)
		})
	}
}

func TestEngineReload(t *testing.T) {
	dir := t.TempDir()

	eng := newTestEngine(t, dir)
	require.NoError(t, eng.Insert(context.Background(), "Ada Lovelace wrote programs for the Analytical Engine."))
	require.NoError(t, eng.Close())

	// A second instance over the same directory sees the persisted graph.
	reopened := newTestEngine(t, dir)
	assert.Len(t, reopened.graph.nodes, 2)
	assert.Len(t, reopened.graph.edges, 1)
}

func TestLocalContext(t *testing.T) {
	eng := newTestEngine(t, t.TempDir())
	require.NoError(t, eng.Insert(context.Background(), "Ada Lovelace wrote programs for the Analytical Engine."))

	t.Run("matches entities by question terms", func(t *testing.T) {
		sections := eng.localContext("Tell me about Lovelace")
		require.NotEmpty(t, sections)
		assert.Contains(t, sections[0], "Ada Lovelace")
	})

	t.Run("includes relations touching matched entities", func(t *testing.T) {
		sections := eng.localContext("Lovelace")
		found := false
		for _, section := range sections {
			if strings.Contains(section, "Ada Lovelace") && strings.Contains(section, "Analytical Engine") {
				found = true
			}
		}
		assert.True(t, found, "expected a relation section naming both endpoints")
	})

	t.Run("no terms yields no context", func(t *testing.T) {
		assert.Empty(t, eng.localContext("the a an"))
	})
}
