// Package graph reads persisted knowledge-graph files for visualization.
//
// The reader is independent of the retrieval engine: it operates purely
// on the files a knowledge base directory contains and tolerates the two
// representations in the wild — a structured GraphML document, or a pair
// of flat per-document JSON mappings of entity names and relation pairs.
package graph
