package ingestion

import "errors"

var (
	// ErrRegistryRequired is returned when an engine registry is not provided.
	ErrRegistryRequired = errors.New("engine registry required")

	// ErrTrackerRequired is returned when a job tracker is not provided.
	ErrTrackerRequired = errors.New("job tracker required")
)
