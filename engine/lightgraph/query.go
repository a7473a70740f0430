package lightgraph

import (
	"context"
	"fmt"
	"strings"

	"github.com/poiesic/graphkb/core"
)

// chunkTopK is how many vector-search hits feed the answer context.
const chunkTopK = 5

// Query answers a question using the retrieval mode's context strategy,
// then asks the LLM to answer grounded on that context.
func (e *Engine) Query(ctx context.Context, question string, mode core.QueryMode) (string, error) {
	var sections []string
	var err error

	switch mode {
	case core.ModeNaive:
		sections, err = e.chunkContext(ctx, question)
	case core.ModeLocal:
		sections = e.localContext(question)
	case core.ModeGlobal:
		sections = e.globalContext()
	default: // hybrid and mix combine graph and chunk context
		sections = e.localContext(question)
		var chunkSections []string
		chunkSections, err = e.chunkContext(ctx, question)
		sections = append(sections, chunkSections...)
	}
	if err != nil {
		return "", err
	}

	contextText := strings.Join(sections, "\n\n")
	if strings.TrimSpace(contextText) == "" {
		contextText = "(no relevant context found)"
	}

	answer, err := e.complete(ctx, answerPrompt(contextText, question), answerSystemPrompt, nil)
	if err != nil {
		return "", fmt.Errorf("answering query: %w", err)
	}
	return answer, nil
}

// chunkContext embeds the question and returns the text of the most
// similar stored chunks.
func (e *Engine) chunkContext(ctx context.Context, question string) ([]string, error) {
	vectors, err := e.embedding.Func(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}
	if len(vectors) == 0 {
		return nil, nil
	}

	hits, err := e.vectors.search(vectors[0], chunkTopK)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	sections := make([]string, 0, len(hits))
	for _, hit := range hits {
		sections = append(sections, hit.chunk.Text)
	}
	return sections, nil
}

// localContext finds graph entities whose names share a term with the
// question and describes them together with the relations touching them.
func (e *Engine) localContext(question string) []string {
	terms := tokenizeAndFilter(question)
	if len(terms) == 0 {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	matched := make(map[string]bool)
	var sections []string
	for _, name := range e.graph.order {
		node := e.graph.nodes[name]
		if !nameMatches(node.name, terms) {
			continue
		}
		matched[node.name] = true
		sections = append(sections, describeEntity(node))
	}

	for _, edge := range e.graph.edges {
		if matched[edge.source] || matched[edge.target] {
			sections = append(sections, describeRelation(edge))
		}
	}
	return sections
}

// globalContext summarizes every relation in the graph.
func (e *Engine) globalContext() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	sections := make([]string, 0, len(e.graph.edges))
	for _, edge := range e.graph.edges {
		sections = append(sections, describeRelation(edge))
	}
	return sections
}

// nameMatches reports whether any query term appears in the entity name.
func nameMatches(name string, terms []string) bool {
	lowered := strings.ToLower(name)
	for _, term := range terms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

func describeEntity(node *graphNode) string {
	var b strings.Builder
	b.WriteString("Entity: ")
	b.WriteString(node.name)
	if node.entityType != "" {
		fmt.Fprintf(&b, " (%s)", node.entityType)
	}
	if node.description != "" {
		b.WriteString(" - ")
		b.WriteString(node.description)
	}
	return b.String()
}

func describeRelation(edge graphEdge) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Relation: %s", edge.source)
	if edge.relType != "" {
		fmt.Fprintf(&b, " -[%s]-> ", edge.relType)
	} else {
		b.WriteString(" -> ")
	}
	b.WriteString(edge.target)
	if edge.description != "" {
		b.WriteString(" - ")
		b.WriteString(edge.description)
	}
	return b.String()
}
