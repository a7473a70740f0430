package kb

import (
	"fmt"
	"os"
	"sync"

	"github.com/poiesic/graphkb/core"
)

// Tracker keeps per-knowledge-base indexing job state in memory and
// reconciles against the storage directory for bases indexed by an
// earlier process.
type Tracker struct {
	storageDir string

	mu   sync.Mutex
	jobs map[string]core.IndexJob
}

// NewTracker creates a tracker that reconciles against storageDir.
func NewTracker(storageDir string) *Tracker {
	return &Tracker{
		storageDir: storageDir,
		jobs:       make(map[string]core.IndexJob),
	}
}

// Begin atomically registers a pending job for kbID. It fails with
// core.ErrIndexingInProgress when a pending or active job already exists.
func (t *Tracker) Begin(kbID string, total int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if job, ok := t.jobs[kbID]; ok {
		if job.Status == core.StatusPending || job.Status == core.StatusIndexing {
			return core.ErrIndexingInProgress
		}
	}

	t.jobs[kbID] = core.IndexJob{
		Status:  core.StatusPending,
		Message: "Indexing job queued",
		Total:   total,
	}
	return nil
}

// Start marks kbID's job as actively indexing.
func (t *Tracker) Start(kbID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := t.jobs[kbID]
	job.Status = core.StatusIndexing
	job.Message = "Indexing started"
	t.jobs[kbID] = job
}

// Progress records that completed of total documents are done, naming the
// document just finished.
func (t *Tracker) Progress(kbID string, completed, total int, name string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := t.jobs[kbID]
	job.Status = core.StatusIndexing
	job.Completed = completed
	job.Total = total
	if total > 0 {
		job.Progress = float64(completed) / float64(total)
	}
	job.Message = fmt.Sprintf("Indexed %d/%d: %s", completed, total, name)
	t.jobs[kbID] = job
}

// Complete marks kbID's job finished.
func (t *Tracker) Complete(kbID string, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := t.jobs[kbID]
	job.Status = core.StatusCompleted
	job.Progress = 1.0
	job.Completed = job.Total
	job.Message = message
	t.jobs[kbID] = job
}

// Fail marks kbID's job failed, preserving the progress made so far.
func (t *Tracker) Fail(kbID string, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job := t.jobs[kbID]
	job.Status = core.StatusFailed
	job.Message = message
	t.jobs[kbID] = job
}

// Forget drops kbID's job record, if any.
func (t *Tracker) Forget(kbID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, kbID)
}

// Status returns the tracked job for kbID. Without an in-memory record,
// an existing storage directory reports a completed index (built by an
// earlier process); otherwise the base is unknown.
func (t *Tracker) Status(kbID string) core.IndexJob {
	t.mu.Lock()
	job, ok := t.jobs[kbID]
	t.mu.Unlock()
	if ok {
		return job
	}

	if info, err := os.Stat(Path(t.storageDir, kbID)); err == nil && info.IsDir() {
		return core.IndexJob{
			Status:   core.StatusCompleted,
			Progress: 1.0,
			Message:  "Index exists",
		}
	}

	return core.IndexJob{Status: core.StatusNotFound}
}
