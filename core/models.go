package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for persisted engine records.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Document is a single unit of source text submitted for indexing.
// Content may be empty, in which case the document is skipped during
// ingestion without failing the job.
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
}

// DisplayName returns the document name, falling back to a positional
// placeholder when the name is empty.
func (d *Document) DisplayName(position int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("doc_%d", position)
}

// JobStatus describes the lifecycle state of an indexing job.
type JobStatus string

const (
	// StatusPending means the job is accepted but the pipeline has not started.
	StatusPending JobStatus = "pending"
	// StatusIndexing means the pipeline is actively ingesting documents.
	StatusIndexing JobStatus = "indexing"
	// StatusCompleted means all documents were processed.
	StatusCompleted JobStatus = "completed"
	// StatusFailed means the pipeline stopped on an unrecoverable error.
	StatusFailed JobStatus = "failed"
	// StatusNotFound means no job record or persisted index exists.
	StatusNotFound JobStatus = "not_found"
)

// IndexJob is the tracked state of one knowledge base's indexing run.
// A knowledge base has at most one job record at a time.
type IndexJob struct {
	Status    JobStatus `json:"status"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message"`
	Total     int       `json:"total,omitempty"`
	Completed int       `json:"completed,omitempty"`
}

// QueryMode selects the retrieval strategy for a knowledge-base query.
type QueryMode string

const (
	// ModeLocal retrieves entity-centric context (good for specific questions).
	ModeLocal QueryMode = "local"
	// ModeGlobal retrieves theme-level context (good for summary questions).
	ModeGlobal QueryMode = "global"
	// ModeHybrid combines local graph context with vector retrieval.
	ModeHybrid QueryMode = "hybrid"
	// ModeNaive performs plain vector retrieval without graph context.
	ModeNaive QueryMode = "naive"
)

// ParseQueryMode validates a query mode string. An empty string selects
// the hybrid default.
func ParseQueryMode(s string) (QueryMode, error) {
	switch QueryMode(s) {
	case "":
		return ModeHybrid, nil
	case ModeLocal, ModeGlobal, ModeHybrid, ModeNaive:
		return QueryMode(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidQueryMode, s)
	}
}

// GraphEntity is a node extracted from a knowledge base's persisted graph.
// Identity is the raw entity name string, case-sensitive.
type GraphEntity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GraphRelation is a typed edge between two entities. Source and target
// reference entity names; dangling references are permitted.
type GraphRelation struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// GraphStats summarizes a graph snapshot after truncation.
type GraphStats struct {
	EntityCount   int `json:"entity_count"`
	RelationCount int `json:"relation_count"`
}

// GraphSnapshot is the visualization payload derived from persisted graph
// data. Entities and Relations are never nil.
type GraphSnapshot struct {
	Entities  []GraphEntity   `json:"entities"`
	Relations []GraphRelation `json:"relations"`
	Message   string          `json:"message,omitempty"`
	Stats     GraphStats      `json:"stats"`
}

// EmptySnapshot returns a snapshot with no graph data and the given
// user-facing message.
func EmptySnapshot(message string) *GraphSnapshot {
	return &GraphSnapshot{
		Entities:  []GraphEntity{},
		Relations: []GraphRelation{},
		Message:   message,
	}
}

// Chunk is a persisted slice of an ingested document together with its
// embedding vector. Chunks are stored by the engine's vector store.
type Chunk struct {
	Id     ID
	DocId  ID
	Text   string
	Vector []float32
}
