// Package mock provides test doubles for the ai gateway interfaces.
//
// The doubles are deterministic by default and allow custom behavior
// injection via function fields, so tests can simulate upstream failures
// without a live LLM backend.
package mock
