package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookscape/bookscape-server/internal/domain"
	"github.com/bookscape/bookscape-server/internal/loader"
	"github.com/bookscape/bookscape-server/internal/sse"
	"github.com/bookscape/bookscape-server/internal/store"
)

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (c *captureEmitter) Emit(event any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if evt, ok := event.(sse.Event); ok {
		c.events = append(c.events, evt)
	}
}

func (c *captureEmitter) byType(t sse.EventType) []sse.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []sse.Event
	for _, evt := range c.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDataset(t *testing.T, rows string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "books.csv")
	content := "id,title,author,genre,publicationYear,pageCount,ratingAverage,mostPopularCountry,adaptedToMovie\n" + rows
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleRows = `1,Alpha,Ann,Fiction,1990,120,4.6,USA,TRUE
2,Beta,Bob,Fiction,1995,200,3.1,UK,FALSE
3,Gamma,Cat,Fantasy,2000,340,4.2,USA,FALSE
4,Delta,Dee,Mystery,2005,280,3.8,Japan,FALSE
5,Broken,Eve,Fiction,0,280,3.8,Japan,FALSE
`

func newTestDataset(t *testing.T, path string, emitter store.EventEmitter) *DatasetService {
	t.Helper()
	log := discardLogger()
	return NewDatasetService(loader.New(log), nil, nil, emitter, log, path, 10)
}

func TestDatasetService_StartLoadsSnapshot(t *testing.T) {
	path := writeDataset(t, sampleRows)
	svc := newTestDataset(t, path, nil)

	require.NoError(t, svc.Start(context.Background()))

	records, top, gen := svc.Snapshot()
	assert.Len(t, records, 4, "invalid rows are dropped")
	assert.Equal(t, []string{"Fiction", "Fantasy", "Mystery"}, top)
	assert.Equal(t, uint64(1), gen)

	info := svc.Info(context.Background())
	assert.Equal(t, 4, info.Count)
	assert.Equal(t, "startup", info.Source)
}

func TestDatasetService_ReloadAdvancesGeneration(t *testing.T) {
	path := writeDataset(t, sampleRows)
	emitter := &captureEmitter{}
	svc := newTestDataset(t, path, emitter)

	require.NoError(t, svc.Start(context.Background()))

	info, err := svc.Reload(context.Background(), "reload")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Generation)
	assert.Equal(t, "reload", info.Source)

	loaded := emitter.byType(sse.EventDatasetLoaded)
	assert.Len(t, loaded, 2, "one event per applied load")
}

func TestDatasetService_ReloadWithoutPath(t *testing.T) {
	svc := newTestDataset(t, "", nil)

	_, err := svc.Reload(context.Background(), "reload")
	assert.Error(t, err)
}

func TestDatasetService_EmptyPathStartsEmpty(t *testing.T) {
	svc := newTestDataset(t, "", nil)

	require.NoError(t, svc.Start(context.Background()))

	records, top, gen := svc.Snapshot()
	assert.Empty(t, records)
	assert.Empty(t, top)
	assert.Zero(t, gen)
}

func TestDatasetService_WarmStartFromStore(t *testing.T) {
	st, err := store.New(t.TempDir(), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	// A previous run persisted records; a new service with no dataset path
	// serves them immediately.
	path := writeDataset(t, sampleRows)
	log := discardLogger()
	first := NewDatasetService(loader.New(log), st, nil, nil, log, path, 10)
	require.NoError(t, first.Start(context.Background()))

	second := NewDatasetService(loader.New(log), st, nil, nil, log, "", 10)
	require.NoError(t, second.Start(context.Background()))

	records, top, gen := second.Snapshot()
	assert.Len(t, records, 4)
	assert.Contains(t, top, "Fiction")
	assert.Equal(t, uint64(1), gen)

	info := second.Info(context.Background())
	assert.Equal(t, "startup", info.Source)
}

// gateLoader blocks its first load until released, so a test can overlap a
// slow load with a fast one.
type gateLoader struct {
	first   []domain.BookRecord
	rest    []domain.BookRecord
	started chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (l *gateLoader) Load(_ context.Context, _ string) []domain.BookRecord {
	l.mu.Lock()
	call := l.calls
	l.calls++
	l.mu.Unlock()

	if call == 0 {
		close(l.started)
		<-l.release
		return l.first
	}
	return l.rest
}

func TestDatasetService_StaleReloadDiscarded(t *testing.T) {
	ldr := &gateLoader{
		first: []domain.BookRecord{
			{ID: 1, Title: "Old", Genre: "Fiction", PublicationYear: 1990, PageCount: 100, RatingAverage: 4.0},
		},
		rest: []domain.BookRecord{
			{ID: 2, Title: "New", Genre: "Fantasy", PublicationYear: 2000, PageCount: 200, RatingAverage: 4.5},
		},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	emitter := &captureEmitter{}

	st, err := store.New(filepath.Join(t.TempDir(), "db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := NewDatasetService(ldr, st, nil, emitter, discardLogger(), "books.csv", 10)

	type result struct {
		info DatasetInfo
		err  error
	}
	slow := make(chan result, 1)
	go func() {
		info, err := svc.Reload(context.Background(), "watcher")
		slow <- result{info, err}
	}()
	<-ldr.started

	// A second reload overtakes the stalled one.
	info, err := svc.Reload(context.Background(), "reload")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.Generation)

	close(ldr.release)
	res := <-slow
	require.NoError(t, res.err)

	// The overtaken load reports the applied state, not its own records.
	assert.Equal(t, uint64(2), res.info.Generation)
	assert.Equal(t, "reload", res.info.Source)

	records, _, gen := svc.Snapshot()
	assert.Equal(t, uint64(2), gen)
	require.Len(t, records, 1)
	assert.Equal(t, 2, records[0].ID)

	// Only the winning load announces itself.
	assert.Len(t, emitter.byType(sse.EventDatasetLoaded), 1)

	// The overtaken records never reach the store.
	stored, err := st.ListBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 2, stored[0].ID)

	storedGen, source, err := st.Generation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(2), storedGen)
	assert.Equal(t, "reload", source)
}
