// Package server exposes the knowledge-base service over HTTP: index
// submission, job status, querying, graph visualization, and lifecycle
// management, all as JSON endpoints.
package server
