package openai

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// gate bounds the number of simultaneous in-flight gateway calls.
// A nil semaphore means unlimited concurrency.
type gate struct {
	sem *semaphore.Weighted
}

// newGate creates a gate with the given limit. A limit of 0 (or less)
// disables admission control entirely.
func newGate(limit int) *gate {
	if limit <= 0 {
		return &gate{}
	}
	return &gate{sem: semaphore.NewWeighted(int64(limit))}
}

// acquire blocks until a slot is free or the context is done.
func (g *gate) acquire(ctx context.Context) error {
	if g.sem == nil {
		return nil
	}
	return g.sem.Acquire(ctx, 1)
}

// release returns a slot. Must be called exactly once per successful acquire.
func (g *gate) release() {
	if g.sem != nil {
		g.sem.Release(1)
	}
}
