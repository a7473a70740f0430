package kb

import (
	"context"
	"os"
	"testing"

	"github.com/poiesic/graphkb/ai/mock"
	"github.com/poiesic/graphkb/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dir := t.TempDir()
	factory, _ := countingFactory(nil)
	registry := NewRegistry(dir, factory, mock.NewMockProvider())
	tracker := NewTracker(dir)
	service := NewService(dir, registry, tracker)
	t.Cleanup(service.Close)
	return service
}

func TestServiceDelete(t *testing.T) {
	t.Run("removes directory, cache, and job record", func(t *testing.T) {
		s := newTestService(t)

		_, err := s.Registry().GetOrCreate(context.Background(), "alpha")
		require.NoError(t, err)
		require.NoError(t, s.Tracker().Begin("alpha", 1))
		s.Tracker().Complete("alpha", "done")

		deleted, err := s.Delete("alpha")
		require.NoError(t, err)
		assert.True(t, deleted)

		assert.False(t, s.Exists("alpha"))
		assert.False(t, s.Registry().Cached("alpha"))
		assert.Equal(t, core.StatusNotFound, s.Tracker().Status("alpha").Status)
	})

	t.Run("unknown base reports not found", func(t *testing.T) {
		s := newTestService(t)

		deleted, err := s.Delete("ghost")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("deleted base can be rebuilt", func(t *testing.T) {
		s := newTestService(t)

		_, err := s.Registry().GetOrCreate(context.Background(), "alpha")
		require.NoError(t, err)
		_, err = s.Delete("alpha")
		require.NoError(t, err)

		_, err = s.Registry().GetOrCreate(context.Background(), "alpha")
		require.NoError(t, err)
		assert.True(t, s.Exists("alpha"))
	})
}

func TestServiceList(t *testing.T) {
	s := newTestService(t)

	t.Run("empty root lists nothing", func(t *testing.T) {
		infos, err := s.List()
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run("lists bases sorted with cached flags", func(t *testing.T) {
		_, err := s.Registry().GetOrCreate(context.Background(), "beta")
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(Path(s.StorageDir(), "alpha"), 0755))

		// A non-prefixed directory is ignored.
		require.NoError(t, os.MkdirAll(s.StorageDir()+"/stray", 0755))

		infos, err := s.List()
		require.NoError(t, err)
		require.Len(t, infos, 2)

		assert.Equal(t, "alpha", infos[0].KBID)
		assert.False(t, infos[0].Cached)
		assert.Equal(t, "beta", infos[1].KBID)
		assert.True(t, infos[1].Cached)
		assert.Equal(t, Path(s.StorageDir(), "beta"), infos[1].Path)
	})
}

func TestServiceInstances(t *testing.T) {
	s := newTestService(t)
	assert.Equal(t, 0, s.Instances())

	_, err := s.Registry().GetOrCreate(context.Background(), "alpha")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Instances())
}
