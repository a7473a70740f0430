// Package ai defines the gateway interfaces for the external LLM backend.
//
// The service talks to one OpenAI-compatible HTTP API for both chat
// completion and text embedding. Implementations share a single concurrency
// gate so that indexing and querying cannot collectively overload the
// upstream API or the local CPU.
package ai
