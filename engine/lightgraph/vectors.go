package lightgraph

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/graphkb/core"
)

// vectorsDirName is the badger subdirectory inside a knowledge base's
// working directory.
const vectorsDirName = "vectors"

const chunkKeyPrefix = "chunk:"

// vectorStore persists document chunks and their embeddings in BadgerDB.
type vectorStore struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// openVectorStore opens the badger database at the given path, creating
// the directory if it doesn't exist.
func openVectorStore(path string) (*vectorStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &vectorStore{
		db:     db,
		logger: slog.Default().With("component", "vector-store"),
	}, nil
}

// Close closes the underlying database.
func (s *vectorStore) Close() error {
	return s.db.Close()
}

func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", chunkKeyPrefix, id))
}

// putChunks stores chunk records in one write transaction.
func (s *vectorStore) putChunks(chunks []core.Chunk) error {
	return s.db.Update(func(tx *badger.Txn) error {
		for i := range chunks {
			if err := tx.Set(makeChunkKey(chunks[i].Id), marshalChunk(&chunks[i])); err != nil {
				return err
			}
		}
		return nil
	})
}

// scoredChunk pairs a chunk with its similarity to a query vector.
type scoredChunk struct {
	chunk core.Chunk
	score float32
}

// search scans all stored chunks and returns the topK most similar to the
// query vector, best first. A full scan is fine at the per-knowledge-base
// scale this store operates at.
func (s *vectorStore) search(vector []float32, topK int) ([]scoredChunk, error) {
	var scored []scoredChunk

	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				chunk, err := unmarshalChunk(val)
				if err != nil {
					return err
				}
				scored = append(scored, scoredChunk{
					chunk: *chunk,
					score: cosineSimilarity(vector, chunk.Vector),
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}
