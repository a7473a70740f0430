package lightgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkLimit(t *testing.T) {
	t.Run("defaults when no token budget", func(t *testing.T) {
		assert.Equal(t, defaultChunkChars, chunkLimit(0))
	})

	t.Run("large token budget keeps default", func(t *testing.T) {
		assert.Equal(t, defaultChunkChars, chunkLimit(8192))
	})

	t.Run("small token budget lowers limit", func(t *testing.T) {
		assert.Equal(t, 400, chunkLimit(100))
	})
}

func TestSplitChunks(t *testing.T) {
	t.Run("empty text yields no chunks", func(t *testing.T) {
		assert.Empty(t, splitChunks("", 100))
		assert.Empty(t, splitChunks("   \n\n  ", 100))
	})

	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := splitChunks("hello world", 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, "hello world", chunks[0])
	})

	t.Run("splits on paragraph boundaries", func(t *testing.T) {
		text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
		chunks := splitChunks(text, 100)
		require.Len(t, chunks, 2)
		assert.Equal(t, strings.Repeat("a", 60), chunks[0])
		assert.Equal(t, strings.Repeat("b", 60), chunks[1])
	})

	t.Run("packs paragraphs that fit together", func(t *testing.T) {
		text := "first paragraph\n\nsecond paragraph"
		chunks := splitChunks(text, 100)
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0], "first paragraph")
		assert.Contains(t, chunks[0], "second paragraph")
	})

	t.Run("hard splits an oversized paragraph", func(t *testing.T) {
		text := strings.Repeat("x", 250)
		chunks := splitChunks(text, 100)
		require.Len(t, chunks, 3)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 100)
		}
		assert.Equal(t, text, strings.Join(chunks, ""))
	})
}
