// Package ingestion runs background indexing jobs for knowledge bases.
//
// The Pipeline type accepts a batch of documents for a knowledge base,
// registers the job with the tracker, and processes the documents on a
// worker pool: each document is tagged with its provenance, inserted
// into the retrieval engine, and reflected in the job's progress. A
// failure stops the job but preserves the progress made so far.
package ingestion
