// Package search provides full-text search over the book dataset using Bleve.
// The UI uses it to locate a book by title, author, or description and pull
// it into the highlight set.
package search

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/bookscape/bookscape-server/internal/domain"
)

// batchSize bounds memory during bulk indexing.
const batchSize = 500

// Index wraps a Bleve index with dataset-specific operations.
//
// Thread safety: all public methods are safe for concurrent use. The mutex
// protects against index corruption during rebuilds on dataset reload.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	logger *slog.Logger
}

// Open opens the index at path, creating it if needed.
func Open(path string, logger *slog.Logger) (*Index, error) {
	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		idx, err = bleve.New(path, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}

	return &Index{
		index:  idx,
		path:   path,
		logger: logger,
	}, nil
}

// Close closes the underlying index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Rebuild replaces the index contents with the given records. Called after
// each dataset load; the old index is dropped rather than diffed because the
// dataset is replaced wholesale anyway.
func (s *Index) Rebuild(records []domain.BookRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Close(); err != nil {
		return fmt.Errorf("close index for rebuild: %w", err)
	}
	if err := os.RemoveAll(s.path); err != nil {
		return fmt.Errorf("remove old index: %w", err)
	}
	idx, err := bleve.New(s.path, buildIndexMapping())
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.index = idx

	batch := s.index.NewBatch()
	for i := range records {
		doc := newDocument(&records[i])
		if err := batch.Index(strconv.Itoa(records[i].ID), doc); err != nil {
			return fmt.Errorf("index record %d: %w", records[i].ID, err)
		}
		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("flush index batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}
	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("flush index batch: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("search index rebuilt", "records", len(records))
	}
	return nil
}

// DocCount returns the number of indexed records.
func (s *Index) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}
