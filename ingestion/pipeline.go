// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/graphkb/core"
	"github.com/poiesic/graphkb/kb"
)

// Pipeline schedules and runs background indexing jobs.
type Pipeline struct {
	registry *kb.Registry
	tracker  *kb.Tracker
	pool     *ants.Pool
	delay    time.Duration
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent jobs.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithDelay sets the pause inserted between documents of one job.
// Default is no delay.
func WithDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		if delay < 0 {
			delay = 0
		}
		p.delay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(registry *kb.Registry, tracker *kb.Tracker, opts ...Option) (*Pipeline, error) {
	if registry == nil {
		return nil, ErrRegistryRequired
	}
	if tracker == nil {
		return nil, ErrTrackerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		registry: registry,
		tracker:  tracker,
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Submit validates the batch, registers a pending job, and schedules the
// indexing run in the background. It returns once the job is queued; the
// caller does not await completion.
func (p *Pipeline) Submit(kbID string, docs []core.Document) error {
	if err := core.ValidateDocuments(docs); err != nil {
		return err
	}

	if err := p.tracker.Begin(kbID, len(docs)); err != nil {
		return err
	}

	if err := p.pool.Submit(func() { p.run(kbID, docs) }); err != nil {
		p.tracker.Fail(kbID, fmt.Sprintf("Failed to schedule indexing: %v", err))
		return err
	}

	p.logger.Info("indexing job queued", "kb_id", kbID, "documents", len(docs))
	return nil
}

// run drives one indexing job to completion. Any error fails the job,
// preserving the progress recorded so far.
func (p *Pipeline) run(kbID string, docs []core.Document) {
	p.tracker.Start(kbID)

	if err := p.index(kbID, docs); err != nil {
		p.logger.Error("indexing job failed", "kb_id", kbID, "err", err)
		p.tracker.Fail(kbID, fmt.Sprintf("Indexing failed: %v", err))
		return
	}

	p.tracker.Complete(kbID, fmt.Sprintf("Successfully indexed %d documents", len(docs)))
	p.logger.Info("indexing job completed", "kb_id", kbID, "documents", len(docs))
}

func (p *Pipeline) index(kbID string, docs []core.Document) error {
	ctx := context.Background()

	eng, err := p.registry.GetOrCreate(ctx, kbID)
	if err != nil {
		return err
	}

	total := len(docs)
	for i, doc := range docs {
		name := doc.DisplayName(i)

		// Empty documents count toward progress but are not ingested
		// and incur no throttle delay.
		if doc.Content == "" {
			p.tracker.Progress(kbID, i+1, total, name)
			p.logger.Debug("skipping empty document", "kb_id", kbID, "name", name)
			continue
		}

		tagged := fmt.Sprintf("[Document: %s]\n\n%s", name, doc.Content)
		if err := eng.Insert(ctx, tagged); err != nil {
			return fmt.Errorf("inserting %s: %w", name, err)
		}

		p.tracker.Progress(kbID, i+1, total, name)

		if p.delay > 0 && i < total-1 {
			time.Sleep(p.delay)
		}
	}

	return nil
}

// Release releases the worker pool. The pipeline should not be used
// after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
