package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("The Eiffel Tower is in Paris")
	id2 := IDFromContent("The Eiffel Tower is in Paris")
	id3 := IDFromContent("The Eiffel Tower is in London")

	assert.Equal(t, id1, id2)
	assert.NotEqual(t, id1, id3)
}

func TestDocument_DisplayName(t *testing.T) {
	t.Run("named document", func(t *testing.T) {
		doc := Document{ID: "d1", Name: "intro.md"}
		assert.Equal(t, "intro.md", doc.DisplayName(0))
	})

	t.Run("unnamed document falls back to position", func(t *testing.T) {
		doc := Document{ID: "d2"}
		assert.Equal(t, "doc_3", doc.DisplayName(3))
	})
}

func TestParseQueryMode(t *testing.T) {
	testCases := []struct {
		input   string
		want    QueryMode
		wantErr bool
	}{
		{"", ModeHybrid, false},
		{"local", ModeLocal, false},
		{"global", ModeGlobal, false},
		{"hybrid", ModeHybrid, false},
		{"naive", ModeNaive, false},
		{"fuzzy", "", true},
		{"LOCAL", "", true},
	}

	for _, tc := range testCases {
		t.Run("mode "+tc.input, func(t *testing.T) {
			mode, err := ParseQueryMode(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidQueryMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, mode)
		})
	}
}

func TestEmptySnapshot_MarshalsEmptyLists(t *testing.T) {
	snapshot := EmptySnapshot("not built yet")

	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	// Clients iterate these fields; they must be [] rather than null.
	assert.Contains(t, string(data), `"entities":[]`)
	assert.Contains(t, string(data), `"relations":[]`)
	assert.Contains(t, string(data), `"entity_count":0`)
}
