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

package graph

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/graphkb/core"
	"github.com/poiesic/graphkb/kb"
)

// DefaultLimit caps the entities and relations returned when the caller
// does not specify a limit.
const DefaultLimit = 100

// Generic markers for entries whose type attribute is absent or empty.
const (
	defaultEntityType   = "ENTITY"
	defaultRelationType = "RELATED"
)

// Persisted file names within a knowledge base directory.
const (
	graphFileName     = "graph_chunk_entity_relation.graphml"
	entitiesFileName  = "kv_store_doc_entities.json"
	relationsFileName = "kv_store_doc_relations.json"
)

// Reader produces graph snapshots from a knowledge base's persisted files.
type Reader struct {
	storageDir string
	logger     *slog.Logger
}

// NewReader creates a reader over the given storage root.
func NewReader(storageDir string) *Reader {
	return &Reader{
		storageDir: storageDir,
		logger:     slog.Default().With("component", "graph-reader"),
	}
}

// Read returns a snapshot of kbID's knowledge graph, truncated to limit
// entities and limit relations. A missing or empty knowledge base is an
// expected state, reported in the snapshot's message rather than as an
// error; a malformed file is an error.
func (r *Reader) Read(kbID string, limit int) (*core.GraphSnapshot, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	dir := kb.Path(r.storageDir, kbID)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return core.EmptySnapshot("Knowledge graph not built yet. Submit documents for indexing first."), nil
	}

	snapshot, err := r.readGraphML(filepath.Join(dir, graphFileName))
	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		snapshot, err = r.readFlatStores(dir)
		if err != nil {
			return nil, err
		}
	}
	if snapshot == nil {
		return core.EmptySnapshot(diagnosticMessage(dir)), nil
	}

	truncate(snapshot, limit)
	return snapshot, nil
}

// GraphML document shape: nodes and edges carrying key/value data
// attributes.
type graphmlFile struct {
	Graph struct {
		Nodes []graphmlNode `xml:"node"`
		Edges []graphmlEdge `xml:"edge"`
	} `xml:"graph"`
}

type graphmlNode struct {
	ID   string        `xml:"id,attr"`
	Data []graphmlData `xml:"data"`
}

type graphmlEdge struct {
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// attrValue picks a data attribute by semantic key name, falling back to
// positional key codes. The semantic name wins when both appear.
func attrValue(data []graphmlData, semantic string, positional ...string) string {
	for _, d := range data {
		if d.Key == semantic {
			if v := strings.TrimSpace(d.Value); v != "" {
				return v
			}
		}
	}
	for _, code := range positional {
		for _, d := range data {
			if d.Key == code {
				if v := strings.TrimSpace(d.Value); v != "" {
					return v
				}
			}
		}
	}
	return ""
}

// readGraphML loads the structured graph file. A missing file yields
// (nil, nil) so the caller can try the flat format; a file with no graph
// data does the same.
func (r *Reader) readGraphML(path string) (*core.GraphSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", graphFileName, err)
	}

	var doc graphmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", graphFileName, err)
	}

	if len(doc.Graph.Nodes) == 0 && len(doc.Graph.Edges) == 0 {
		return nil, nil
	}

	snapshot := &core.GraphSnapshot{
		Entities:  []core.GraphEntity{},
		Relations: []core.GraphRelation{},
	}

	for _, node := range doc.Graph.Nodes {
		if node.ID == "" {
			continue
		}
		entityType := attrValue(node.Data, "entity_type", "d0")
		if entityType == "" {
			entityType = defaultEntityType
		}
		snapshot.Entities = append(snapshot.Entities, core.GraphEntity{
			ID:          node.ID,
			Name:        node.ID,
			Type:        strings.ToUpper(entityType),
			Description: attrValue(node.Data, "description", "d1"),
		})
	}

	for _, edge := range doc.Graph.Edges {
		if edge.Source == "" || edge.Target == "" {
			continue
		}
		relationType := attrValue(edge.Data, "relation_type", "d2", "d4")
		if relationType == "" {
			relationType = defaultRelationType
		}
		snapshot.Relations = append(snapshot.Relations, core.GraphRelation{
			Source:      edge.Source,
			Target:      edge.Target,
			Type:        relationType,
			Description: attrValue(edge.Data, "description", "d3", "d5"),
		})
	}

	return snapshot, nil
}

// readFlatStores loads the flat per-document entity and relation mappings.
// Entities are deduplicated globally by exact name; relations are not.
// Both missing files yield (nil, nil).
func (r *Reader) readFlatStores(dir string) (*core.GraphSnapshot, error) {
	entities := make(map[string][]string)
	entitiesFound, err := loadJSONFile(filepath.Join(dir, entitiesFileName), &entities)
	if err != nil {
		return nil, err
	}

	relations := make(map[string][][]string)
	relationsFound, err := loadJSONFile(filepath.Join(dir, relationsFileName), &relations)
	if err != nil {
		return nil, err
	}

	if !entitiesFound && !relationsFound {
		return nil, nil
	}

	snapshot := &core.GraphSnapshot{
		Entities:  []core.GraphEntity{},
		Relations: []core.GraphRelation{},
	}

	// Document keys are walked in sorted order so output is deterministic.
	seen := make(map[string]bool)
	for _, docID := range sortedKeys(entities) {
		for _, name := range entities[docID] {
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			snapshot.Entities = append(snapshot.Entities, core.GraphEntity{
				ID:   name,
				Name: name,
				Type: defaultEntityType,
			})
		}
	}

	for _, docID := range sortedKeys(relations) {
		for _, pair := range relations[docID] {
			if len(pair) != 2 || pair[0] == "" || pair[1] == "" {
				continue
			}
			snapshot.Relations = append(snapshot.Relations, core.GraphRelation{
				Source: pair[0],
				Target: pair[1],
				Type:   defaultRelationType,
			})
		}
	}

	if len(snapshot.Entities) == 0 && len(snapshot.Relations) == 0 {
		return nil, nil
	}
	return snapshot, nil
}

// loadJSONFile reads a JSON file into out, reporting whether it existed.
func loadJSONFile(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// diagnosticMessage lists the directory's contents to help diagnose a
// failed or in-progress build.
func diagnosticMessage(dir string) string {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) == 0 {
		return "No graph data found. The knowledge base directory is empty."
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return fmt.Sprintf("No graph data found. Directory contains: %s", strings.Join(names, ", "))
}

// truncate caps both lists independently and records the resulting counts.
func truncate(s *core.GraphSnapshot, limit int) {
	if len(s.Entities) > limit {
		s.Entities = s.Entities[:limit]
	}
	if len(s.Relations) > limit {
		s.Relations = s.Relations[:limit]
	}
	s.Stats = core.GraphStats{
		EntityCount:   len(s.Entities),
		RelationCount: len(s.Relations),
	}
}
