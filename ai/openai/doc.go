// Package openai implements the ai gateway interfaces against
// OpenAI-compatible HTTP APIs (DashScope compatible-mode, Ollama, vLLM, ...).
//
// Completion and embedding services created through the Provider share one
// concurrency gate bounding in-flight calls across both services.
package openai
