// Package lightgraph is the built-in retrieval engine.
//
// Each engine instance owns one knowledge base's working directory. On
// insert it splits the text into chunks, embeds them into a badger-backed
// vector store, extracts entities and relations through the LLM completion
// function, and persists the accumulated graph in two formats: a GraphML
// document and flat per-document JSON key-value stores. On query it
// assembles mode-specific context (graph neighborhood, global relations,
// similar chunks) and asks the LLM to answer from that context.
package lightgraph
