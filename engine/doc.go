// Package engine defines the contract between the knowledge-base registry
// and the retrieval-engine implementation.
//
// An Engine owns one knowledge base's storage directory and builds a
// knowledge graph from ingested text using the LLM gateway functions it is
// constructed with. The registry treats the engine as a black box: it
// constructs instances through a Factory, initializes storage once, and
// caches the handle for the lifetime of the process.
package engine
