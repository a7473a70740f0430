// Package kb manages the lifecycle of knowledge bases: lazy engine
// construction and caching, per-base storage directories, and the
// tracking of indexing job status.
package kb
