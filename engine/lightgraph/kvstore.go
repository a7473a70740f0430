package lightgraph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/graphkb/core"
)

// Flat key-value store file names: per-document-id mappings of extracted
// entity names and relation pairs. These mirror the structured GraphML
// document and exist so older readers keep working.
const (
	entitiesFileName  = "kv_store_doc_entities.json"
	relationsFileName = "kv_store_doc_relations.json"
)

// docKey formats a document id as the kv-store key.
func docKey(id core.ID) string {
	return fmt.Sprintf("doc-%016x", uint64(id))
}

// appendDocRecords records one document's extracted entity names and
// relation pairs in the flat kv stores, replacing any previous entry for
// the same document id.
func appendDocRecords(dir, key string, names []string, pairs [][]string) error {
	entities := make(map[string][]string)
	if err := readJSONFile(filepath.Join(dir, entitiesFileName), &entities); err != nil {
		return err
	}
	entities[key] = names
	if err := writeJSONFile(filepath.Join(dir, entitiesFileName), entities); err != nil {
		return err
	}

	relations := make(map[string][][]string)
	if err := readJSONFile(filepath.Join(dir, relationsFileName), &relations); err != nil {
		return err
	}
	relations[key] = pairs
	return writeJSONFile(filepath.Join(dir, relationsFileName), relations)
}

// readJSONFile loads a JSON file into out; a missing file leaves out untouched.
func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, out)
}

// writeJSONFile persists value atomically (temp file, then rename).
func writeJSONFile(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
