package search

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookscape/bookscape-server/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	path := filepath.Join(t.TempDir(), "search.bleve")
	idx, err := Open(path, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	return idx
}

func indexRecords() []domain.BookRecord {
	return []domain.BookRecord{
		{ID: 1, Title: "The Silent Harbor", Author: "Mira Okafor", Genre: "Mystery", Description: "A detective returns to a port town."},
		{ID: 2, Title: "Harbor Lights", Author: "Jonas Petrov", Genre: "Romance", Description: "Two lighthouse keepers."},
		{ID: 3, Title: "Deep Winter", Author: "Mira Okafor", Genre: "Mystery", Description: "Snowed-in village thriller."},
	}
}

func TestRebuildAndSearch(t *testing.T) {
	idx := setupTestIndex(t)
	require.NoError(t, idx.Rebuild(indexRecords()))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	result, err := idx.Search(context.Background(), Params{Query: "harbor"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)

	ids := make([]int, 0, len(result.Hits))
	for _, h := range result.Hits {
		ids = append(ids, h.ID)
	}
	assert.ElementsMatch(t, []int{1, 2}, ids)
}

func TestSearch_GenreFilter(t *testing.T) {
	idx := setupTestIndex(t)
	require.NoError(t, idx.Rebuild(indexRecords()))

	result, err := idx.Search(context.Background(), Params{Query: "harbor", Genre: "Mystery"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, 1, result.Hits[0].ID)
	assert.Equal(t, "Mystery", result.Hits[0].Genre)
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	idx := setupTestIndex(t)
	require.NoError(t, idx.Rebuild(indexRecords()))

	result, err := idx.Search(context.Background(), Params{})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), result.Total)
}

func TestRebuild_ReplacesPreviousContents(t *testing.T) {
	idx := setupTestIndex(t)
	require.NoError(t, idx.Rebuild(indexRecords()))

	require.NoError(t, idx.Rebuild([]domain.BookRecord{
		{ID: 9, Title: "Lone Entry", Author: "Solo", Genre: "Poetry"},
	}))

	count, err := idx.DocCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := idx.Search(context.Background(), Params{Query: "harbor"})
	require.NoError(t, err)
	assert.Zero(t, result.Total)
}
