package lightgraph

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// graphFileName matches the name used by the original storage layer so
// existing knowledge bases remain readable.
const graphFileName = "graph_chunk_entity_relation.graphml"

const graphmlNamespace = "http://graphml.graphdrawing.org/xmlns"

// Positional attribute key codes written alongside the key declarations.
const (
	nodeTypeKey        = "d0"
	nodeDescriptionKey = "d1"
	edgeTypeKey        = "d2"
	edgeDescriptionKey = "d3"
)

// graphNode is one entity in the accumulated knowledge graph.
type graphNode struct {
	name        string
	entityType  string
	description string
}

// graphEdge is one relation in the accumulated knowledge graph.
type graphEdge struct {
	source      string
	target      string
	relType     string
	description string
}

// graphDoc is the in-memory merged graph for one knowledge base.
// Nodes are deduplicated by exact name; edges accumulate without dedup.
type graphDoc struct {
	order []string
	nodes map[string]*graphNode
	edges []graphEdge
}

func newGraphDoc() *graphDoc {
	return &graphDoc{nodes: make(map[string]*graphNode)}
}

// merge folds an extraction result into the graph. The first occurrence of
// an entity wins; later occurrences only fill fields that are still empty.
func (g *graphDoc) merge(ext *extraction) {
	for _, e := range ext.Entities {
		existing, ok := g.nodes[e.Name]
		if !ok {
			g.nodes[e.Name] = &graphNode{
				name:        e.Name,
				entityType:  e.Type,
				description: e.Description,
			}
			g.order = append(g.order, e.Name)
			continue
		}
		if existing.entityType == "" {
			existing.entityType = e.Type
		}
		if existing.description == "" {
			existing.description = e.Description
		}
	}

	for _, r := range ext.Relations {
		g.edges = append(g.edges, graphEdge{
			source:      r.Source,
			target:      r.Target,
			relType:     r.Type,
			description: r.Description,
		})
	}
}

// GraphML document shapes shared by the writer and the loader.
type graphmlFile struct {
	XMLName xml.Name     `xml:"graphml"`
	Xmlns   string       `xml:"xmlns,attr,omitempty"`
	Keys    []graphmlKey `xml:"key"`
	Graph   graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	AttrType string `xml:"attr.type,attr"`
}

type graphmlGraph struct {
	EdgeDefault string        `xml:"edgedefault,attr,omitempty"`
	Nodes       []graphmlNode `xml:"node"`
	Edges       []graphmlEdge `xml:"edge"`
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

// writeGraphML persists the graph atomically (write to a temp file, then
// rename over the target).
func writeGraphML(path string, g *graphDoc) error {
	doc := graphmlFile{
		Xmlns: graphmlNamespace,
		Keys: []graphmlKey{
			{ID: nodeTypeKey, For: "node", AttrName: "entity_type", AttrType: "string"},
			{ID: nodeDescriptionKey, For: "node", AttrName: "description", AttrType: "string"},
			{ID: edgeTypeKey, For: "edge", AttrName: "relation_type", AttrType: "string"},
			{ID: edgeDescriptionKey, For: "edge", AttrName: "description", AttrType: "string"},
		},
		Graph: graphmlGraph{EdgeDefault: "undirected"},
	}

	for _, name := range g.order {
		node := g.nodes[name]
		doc.Graph.Nodes = append(doc.Graph.Nodes, graphmlNode{
			ID: node.name,
			Data: []graphmlData{
				{Key: nodeTypeKey, Value: node.entityType},
				{Key: nodeDescriptionKey, Value: node.description},
			},
		})
	}

	for _, edge := range g.edges {
		doc.Graph.Edges = append(doc.Graph.Edges, graphmlEdge{
			Source: edge.source,
			Target: edge.target,
			Data: []graphmlData{
				{Key: edgeTypeKey, Value: edge.relType},
				{Key: edgeDescriptionKey, Value: edge.description},
			},
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	data = append([]byte(xml.Header), data...)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// loadGraphML restores the in-memory graph from a previously written file.
// A missing file yields an empty graph.
func loadGraphML(path string) (*graphDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return newGraphDoc(), nil
		}
		return nil, err
	}

	var doc graphmlFile
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", graphFileName, err)
	}

	g := newGraphDoc()
	for _, node := range doc.Graph.Nodes {
		if node.ID == "" {
			continue
		}
		restored := &graphNode{name: node.ID}
		for _, data := range node.Data {
			value := strings.TrimSpace(data.Value)
			switch data.Key {
			case "entity_type", nodeTypeKey:
				restored.entityType = value
			case "description", nodeDescriptionKey:
				restored.description = value
			}
		}
		if _, ok := g.nodes[node.ID]; !ok {
			g.nodes[node.ID] = restored
			g.order = append(g.order, node.ID)
		}
	}

	for _, edge := range doc.Graph.Edges {
		if edge.Source == "" || edge.Target == "" {
			continue
		}
		restored := graphEdge{source: edge.Source, target: edge.Target}
		for _, data := range edge.Data {
			value := strings.TrimSpace(data.Value)
			switch data.Key {
			case "relation_type", edgeTypeKey:
				restored.relType = value
			case "description", edgeDescriptionKey:
				restored.description = value
			}
		}
		g.edges = append(g.edges, restored)
	}

	return g, nil
}
