package lightgraph

import "strings"

// approxCharsPerToken is the rough byte budget per token used to stay
// under the embedding model's input limit without a tokenizer.
const approxCharsPerToken = 4

// defaultChunkChars is the preferred chunk size; the embedding token
// budget only lowers it, never raises it.
const defaultChunkChars = 4800

// chunkLimit derives the chunk character budget from the embedding
// adapter's token budget.
func chunkLimit(maxTokenSize int) int {
	limit := defaultChunkChars
	if maxTokenSize > 0 && maxTokenSize*approxCharsPerToken < limit {
		limit = maxTokenSize * approxCharsPerToken
	}
	return limit
}

// splitChunks splits text into chunks of at most limit characters,
// preferring paragraph boundaries. Blank-only fragments are dropped.
func splitChunks(text string, limit int) []string {
	paragraphs := strings.Split(text, "\n\n")

	var chunks []string
	var current strings.Builder
	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
	}

	for _, paragraph := range paragraphs {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}

		// Oversized paragraphs are split mid-text.
		for len(paragraph) > limit {
			flush()
			chunks = append(chunks, strings.TrimSpace(paragraph[:limit]))
			paragraph = strings.TrimSpace(paragraph[limit:])
		}
		if paragraph == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}
