package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/graphkb/kb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKBFile(t *testing.T, storageDir, kbID, name string, content []byte) {
	t.Helper()
	dir := kb.Path(storageDir, kbID)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), content, 0644))
}

func writeJSON(t *testing.T, storageDir, kbID, name string, value any) {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	writeKBFile(t, storageDir, kbID, name, data)
}

func TestReadMissingKnowledgeBase(t *testing.T) {
	r := NewReader(t.TempDir())

	snapshot, err := r.Read("ghost", 0)
	require.NoError(t, err)

	assert.NotNil(t, snapshot.Entities)
	assert.Empty(t, snapshot.Entities)
	assert.Empty(t, snapshot.Relations)
	assert.Contains(t, snapshot.Message, "not built yet")
	assert.Zero(t, snapshot.Stats.EntityCount)
	assert.Zero(t, snapshot.Stats.RelationCount)
}

func TestReadGraphML(t *testing.T) {
	t.Run("three nodes and two edges round-trip", func(t *testing.T) {
		content := `<?xml version="1.0" encoding="UTF-8"?>
<graphml>
  <graph>
    <node id="Alpha">
      <data key="entity_type">a</data>
      <data key="description">first</data>
    </node>
    <node id="Beta">
      <data key="d0">b</data>
      <data key="d1">second</data>
    </node>
    <node id="Gamma"/>
    <edge source="Alpha" target="Beta">
      <data key="relation_type">links</data>
      <data key="d3">alpha to beta</data>
    </edge>
    <edge source="Beta" target="Gamma"/>
  </graph>
</graphml>`
		dir := t.TempDir()
		writeKBFile(t, dir, "demo", graphFileName, []byte(content))

		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)

		require.Len(t, snapshot.Entities, 3)
		assert.Equal(t, "Alpha", snapshot.Entities[0].Name)
		assert.Equal(t, "A", snapshot.Entities[0].Type)
		assert.Equal(t, "first", snapshot.Entities[0].Description)
		assert.Equal(t, "B", snapshot.Entities[1].Type)
		assert.Equal(t, "second", snapshot.Entities[1].Description)

		// Nodes without attributes get the generic marker.
		assert.Equal(t, "ENTITY", snapshot.Entities[2].Type)
		assert.Empty(t, snapshot.Entities[2].Description)

		require.Len(t, snapshot.Relations, 2)
		assert.Equal(t, "links", snapshot.Relations[0].Type)
		assert.Equal(t, "alpha to beta", snapshot.Relations[0].Description)
		assert.Equal(t, "RELATED", snapshot.Relations[1].Type)

		assert.Equal(t, 3, snapshot.Stats.EntityCount)
		assert.Equal(t, 2, snapshot.Stats.RelationCount)
	})

	t.Run("semantic key wins over positional", func(t *testing.T) {
		content := `<graphml><graph>
<node id="A"><data key="d0">positional</data><data key="entity_type">semantic</data></node>
</graph></graphml>`
		dir := t.TempDir()
		writeKBFile(t, dir, "demo", graphFileName, []byte(content))

		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)
		require.Len(t, snapshot.Entities, 1)
		assert.Equal(t, "SEMANTIC", snapshot.Entities[0].Type)
	})

	t.Run("alternate edge key codes are accepted", func(t *testing.T) {
		content := `<graphml><graph>
<node id="A"/><node id="B"/>
<edge source="A" target="B"><data key="d4">knows</data><data key="d5">desc</data></edge>
</graph></graphml>`
		dir := t.TempDir()
		writeKBFile(t, dir, "demo", graphFileName, []byte(content))

		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)
		require.Len(t, snapshot.Relations, 1)
		assert.Equal(t, "knows", snapshot.Relations[0].Type)
		assert.Equal(t, "desc", snapshot.Relations[0].Description)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeKBFile(t, dir, "demo", graphFileName, []byte("<graphml><unclosed"))

		_, err := NewReader(dir).Read("demo", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), graphFileName)
	})
}

func TestReadFlatStores(t *testing.T) {
	t.Run("deduplicates entities globally by name", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "demo", entitiesFileName, map[string][]string{
			"doc-1": {"X", "Y"},
			"doc-2": {"Y", "Z"},
		})
		writeJSON(t, dir, "demo", relationsFileName, map[string][][]string{
			"doc-1": {{"X", "Y"}},
			"doc-2": {{"X", "Y"}},
		})

		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)

		require.Len(t, snapshot.Entities, 3)
		names := []string{snapshot.Entities[0].Name, snapshot.Entities[1].Name, snapshot.Entities[2].Name}
		assert.Equal(t, []string{"X", "Y", "Z"}, names)
		for _, entity := range snapshot.Entities {
			assert.Equal(t, "ENTITY", entity.Type)
			assert.Empty(t, entity.Description)
		}

		// Relations are not deduplicated.
		require.Len(t, snapshot.Relations, 2)
		assert.Equal(t, "RELATED", snapshot.Relations[0].Type)
	})

	t.Run("relations file alone is enough", func(t *testing.T) {
		dir := t.TempDir()
		writeJSON(t, dir, "demo", relationsFileName, map[string][][]string{
			"doc-1": {{"A", "B"}},
		})

		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)
		assert.Empty(t, snapshot.Entities)
		require.Len(t, snapshot.Relations, 1)
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		dir := t.TempDir()
		writeKBFile(t, dir, "demo", entitiesFileName, []byte("{not json"))

		_, err := NewReader(dir).Read("demo", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), entitiesFileName)
	})
}

func TestReadFormatPriority(t *testing.T) {
	// When both formats exist, the structured graph wins.
	dir := t.TempDir()
	writeKBFile(t, dir, "demo", graphFileName, []byte(`<graphml><graph><node id="FromGraphML"/></graph></graphml>`))
	writeJSON(t, dir, "demo", entitiesFileName, map[string][]string{"doc-1": {"FromFlat"}})

	snapshot, err := NewReader(dir).Read("demo", 0)
	require.NoError(t, err)
	require.Len(t, snapshot.Entities, 1)
	assert.Equal(t, "FromGraphML", snapshot.Entities[0].Name)
}

func TestReadNoGraphData(t *testing.T) {
	dir := t.TempDir()
	writeKBFile(t, dir, "demo", "stray.log", []byte("noise"))

	snapshot, err := NewReader(dir).Read("demo", 0)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Entities)
	assert.Contains(t, snapshot.Message, "stray.log")
}

func TestReadLimit(t *testing.T) {
	dir := t.TempDir()

	entities := make(map[string][]string)
	var names []string
	for i := 0; i < 150; i++ {
		names = append(names, fmt.Sprintf("entity-%03d", i))
	}
	entities["doc-1"] = names
	writeJSON(t, dir, "demo", entitiesFileName, entities)

	t.Run("default limit caps at 100", func(t *testing.T) {
		snapshot, err := NewReader(dir).Read("demo", 0)
		require.NoError(t, err)
		assert.Len(t, snapshot.Entities, 100)
		assert.Equal(t, 100, snapshot.Stats.EntityCount)
	})

	t.Run("explicit limit is honored", func(t *testing.T) {
		snapshot, err := NewReader(dir).Read("demo", 10)
		require.NoError(t, err)
		assert.Len(t, snapshot.Entities, 10)
		assert.Equal(t, 10, snapshot.Stats.EntityCount)
	})
}
