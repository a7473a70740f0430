package lightgraph

import "fmt"

const extractionSystemPrompt = `Extract the entities and the relations between them from the given text and return them as JSON.

Output ONLY valid JSON. Do not include any preamble, explanation, greeting,
or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }. Your output must exactly follow this shape:

{
  "entities": [
    {"name": "Eiffel Tower", "type": "building", "description": "iron lattice tower on the Champ de Mars"},
    {"name": "Paris", "type": "place", "description": "capital of France"}
  ],
  "relations": [
    {"source": "Eiffel Tower", "target": "Paris", "type": "located in", "description": "the tower stands in Paris"}
  ]
}

Rules:
- Entity names are the exact surface form used in the text.
- Every relation's source and target must name an extracted entity.
- Descriptions are one short sentence grounded in the text. Do not hallucinate.
- If nothing can be extracted, return {"entities": [], "relations": []}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.`

const answerSystemPrompt = `You are a helpful assistant answering questions about a private knowledge base.
Answer using only the provided context. If the context does not contain the
answer, say so instead of guessing.`

// answerPrompt builds the final completion prompt from retrieved context.
func answerPrompt(context, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", context, question)
}
