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
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/graphkb/engine"
)

// extractedEntity matches the structure expected from the LLM.
type extractedEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// extractedRelation matches the structure expected from the LLM.
type extractedRelation struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// extraction is the wrapper structure for the LLM's JSON response.
type extraction struct {
	Entities  []extractedEntity  `json:"entities"`
	Relations []extractedRelation `json:"relations"`
}

// extractGraph asks the LLM to extract entities and relations from text.
// Transport errors are fatal; malformed JSON is re-asked up to 3 times.
func extractGraph(ctx context.Context, complete engine.CompleteFunc, text string, logger *slog.Logger) (*extraction, error) {
	var result extraction
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := complete(ctx, text, extractionSystemPrompt, nil)
		if err != nil {
			logger.Error("graph extraction call failed", "attempt", attempt+1, "err", err)
			return nil, err
		}

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(response)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return nil, lastErr
	}

	// Drop entries the merge step cannot anchor
	entities := result.Entities[:0]
	for _, e := range result.Entities {
		if strings.TrimSpace(e.Name) != "" {
			entities = append(entities, e)
		}
	}
	result.Entities = entities

	relations := result.Relations[:0]
	for _, r := range result.Relations {
		if strings.TrimSpace(r.Source) != "" && strings.TrimSpace(r.Target) != "" {
			relations = append(relations, r)
		}
	}
	result.Relations = relations

	logger.Debug("extracted graph fragment",
		"entities", len(result.Entities),
		"relations", len(result.Relations))
	return &result, nil
}
