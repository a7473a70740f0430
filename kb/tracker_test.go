package kb

import (
	"os"
	"testing"

	"github.com/poiesic/graphkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerLifecycle(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	require.NoError(t, tracker.Begin("alpha", 3))

	t.Run("begin registers a pending job", func(t *testing.T) {
		job := tracker.Status("alpha")
		assert.Equal(t, core.StatusPending, job.Status)
		assert.Equal(t, 3, job.Total)
		assert.Zero(t, job.Progress)
	})

	t.Run("second begin while active is rejected", func(t *testing.T) {
		assert.ErrorIs(t, tracker.Begin("alpha", 1), core.ErrIndexingInProgress)
	})

	t.Run("progress is monotone per document", func(t *testing.T) {
		tracker.Start("alpha")
		tracker.Progress("alpha", 1, 3, "intro.txt")

		job := tracker.Status("alpha")
		assert.Equal(t, core.StatusIndexing, job.Status)
		assert.Equal(t, 1, job.Completed)
		assert.InDelta(t, 1.0/3.0, job.Progress, 1e-9)
		assert.Equal(t, "Indexed 1/3: intro.txt", job.Message)
	})

	t.Run("complete finishes the job", func(t *testing.T) {
		tracker.Complete("alpha", "Successfully indexed 3 documents")

		job := tracker.Status("alpha")
		assert.Equal(t, core.StatusCompleted, job.Status)
		assert.Equal(t, 1.0, job.Progress)
		assert.Equal(t, 3, job.Completed)
	})

	t.Run("a finished base can be re-indexed", func(t *testing.T) {
		assert.NoError(t, tracker.Begin("alpha", 1))
	})
}

func TestTrackerFail(t *testing.T) {
	tracker := NewTracker(t.TempDir())

	require.NoError(t, tracker.Begin("alpha", 4))
	tracker.Start("alpha")
	tracker.Progress("alpha", 2, 4, "doc_2")
	tracker.Fail("alpha", "llm api error: connection refused")

	job := tracker.Status("alpha")
	assert.Equal(t, core.StatusFailed, job.Status)
	assert.Equal(t, "llm api error: connection refused", job.Message)

	// Partial progress survives the failure.
	assert.Equal(t, 2, job.Completed)
	assert.InDelta(t, 0.5, job.Progress, 1e-9)

	t.Run("failed base can be re-indexed", func(t *testing.T) {
		assert.NoError(t, tracker.Begin("alpha", 1))
	})
}

func TestTrackerStatusReconciliation(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir)

	t.Run("unknown base with no directory", func(t *testing.T) {
		job := tracker.Status("ghost")
		assert.Equal(t, core.StatusNotFound, job.Status)
		assert.Zero(t, job.Progress)
	})

	t.Run("directory from an earlier process reports completed", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(Path(dir, "legacy"), 0755))

		job := tracker.Status("legacy")
		assert.Equal(t, core.StatusCompleted, job.Status)
		assert.Equal(t, 1.0, job.Progress)
		assert.Equal(t, "Index exists", job.Message)
	})

	t.Run("in-memory record wins over the directory", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(Path(dir, "active"), 0755))
		require.NoError(t, tracker.Begin("active", 2))
		tracker.Start("active")

		job := tracker.Status("active")
		assert.Equal(t, core.StatusIndexing, job.Status)
	})

	t.Run("forget falls back to disk", func(t *testing.T) {
		tracker.Forget("active")
		assert.Equal(t, core.StatusCompleted, tracker.Status("active").Status)

		tracker.Forget("ghost")
		assert.Equal(t, core.StatusNotFound, tracker.Status("ghost").Status)
	})
}
