package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookscape/bookscape-server/internal/aggregate"
	"github.com/bookscape/bookscape-server/internal/domain"
	domainerrors "github.com/bookscape/bookscape-server/internal/errors"
	"github.com/bookscape/bookscape-server/internal/search"
	"github.com/bookscape/bookscape-server/internal/sse"
	"github.com/bookscape/bookscape-server/internal/store"
	"github.com/bookscape/bookscape-server/internal/watcher"
)

// RecordLoader reads the dataset at a path. *loader.Loader is the production
// implementation; the seam exists so load timing can be controlled in tests.
type RecordLoader interface {
	Load(ctx context.Context, path string) []domain.BookRecord
}

// DatasetService owns the dataset loading lifecycle: parsing the CSV,
// persisting records, rebuilding the search index, and publishing the
// in-memory snapshot the view services read from.
type DatasetService struct {
	loader  RecordLoader
	store   *store.Store
	index   *search.Index
	emitter store.EventEmitter
	logger  *slog.Logger

	path      string
	topGenres int

	// Snapshot state. generation counts load attempts; applied is the
	// highest generation whose result was accepted, so a slow load that
	// finishes after a newer one is discarded instead of clobbering it.
	mu         sync.RWMutex
	records    []domain.BookRecord
	top        []string
	applied    uint64
	generation uint64
	source     string
	loadedAt   time.Time

	// persistMu serializes store and index writes so overlapping accepted
	// reloads cannot land in Badger or Bleve out of generation order.
	persistMu sync.Mutex
}

// DatasetInfo describes the currently loaded dataset.
type DatasetInfo struct {
	LoadedAt   time.Time `json:"loaded_at" doc:"When the current dataset was loaded"`
	Source     string    `json:"source" doc:"Load source tag (startup, reload, watcher)"`
	Count      int       `json:"count" doc:"Number of valid records"`
	Generation uint64    `json:"generation" doc:"Monotonic load generation"`
}

// NewDatasetService creates a dataset service.
func NewDatasetService(
	ldr RecordLoader,
	st *store.Store,
	idx *search.Index,
	emitter store.EventEmitter,
	logger *slog.Logger,
	path string,
	topGenres int,
) *DatasetService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &DatasetService{
		loader:    ldr,
		store:     st,
		index:     idx,
		emitter:   emitter,
		logger:    logger,
		path:      path,
		topGenres: topGenres,
	}
}

// Start warms the snapshot. Records persisted by a previous run are served
// immediately; a configured dataset path is then (re)loaded so the snapshot
// reflects the file on disk.
func (s *DatasetService) Start(ctx context.Context) error {
	if s.store != nil {
		records, err := s.store.ListBooks(ctx)
		if err != nil {
			s.logger.Warn("could not warm dataset from store", "error", err)
		} else if len(records) > 0 {
			gen, source, err := s.store.Generation(ctx)
			if err != nil {
				gen, source = 1, "store"
			}
			s.mu.Lock()
			s.records = records
			s.top = aggregate.TopGenres(records, s.topGenres)
			s.generation = gen
			s.applied = gen
			s.source = source
			s.loadedAt = time.Now()
			s.mu.Unlock()
			s.logger.Info("dataset warmed from store",
				slog.Int("records", len(records)),
				slog.Uint64("generation", gen))
		}
	}

	if s.path == "" {
		s.logger.Info("no dataset path configured, starting empty")
		return nil
	}

	_, err := s.Reload(ctx, "startup")
	return err
}

// Reload re-reads the dataset file, replacing the snapshot wholesale.
// Source tags where the reload came from (startup, reload, watcher).
//
// Loads are tagged with a generation taken at the start of the read. If a
// later load finishes first, this one is stale and its result is dropped.
func (s *DatasetService) Reload(ctx context.Context, source string) (DatasetInfo, error) {
	if s.path == "" {
		return DatasetInfo{}, domainerrors.Validation("no dataset path configured")
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	loadID := uuid.NewString()
	started := time.Now()
	s.logger.Info("dataset load starting",
		slog.String("load_id", loadID),
		slog.String("path", s.path),
		slog.Uint64("generation", gen))

	records := s.loader.Load(ctx, s.path)

	s.mu.Lock()
	if gen < s.applied {
		s.mu.Unlock()
		s.logger.Info("discarding stale dataset load",
			slog.String("load_id", loadID),
			slog.Uint64("generation", gen))
		return s.Info(ctx), nil
	}
	s.records = records
	s.top = aggregate.TopGenres(records, s.topGenres)
	s.applied = gen
	s.source = source
	s.loadedAt = time.Now()
	info := DatasetInfo{
		Count:      len(records),
		Generation: gen,
		Source:     source,
		LoadedAt:   s.loadedAt,
	}
	s.mu.Unlock()

	s.persistMu.Lock()
	s.mu.RLock()
	fresh := s.applied == gen
	s.mu.RUnlock()
	if fresh {
		if s.store != nil {
			if err := s.store.ReplaceAll(ctx, records, gen, source); err != nil {
				s.logger.Error("failed to persist dataset", "error", err)
			}
		}
		if s.index != nil {
			if err := s.index.Rebuild(records); err != nil {
				s.logger.Error("failed to rebuild search index", "error", err)
			}
		}
	}
	s.persistMu.Unlock()

	s.logger.Info("dataset load complete",
		slog.String("load_id", loadID),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(started)))

	s.emitter.Emit(sse.NewEvent(sse.EventDatasetLoaded, info))
	return info, nil
}

// Snapshot returns the current records, top genres, and generation.
// The slices are shared and must not be mutated by callers.
func (s *DatasetService) Snapshot() ([]domain.BookRecord, []string, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records, s.top, s.applied
}

// Info describes the current dataset load.
func (s *DatasetService) Info(_ context.Context) DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DatasetInfo{
		Count:      len(s.records),
		Generation: s.applied,
		Source:     s.source,
		LoadedAt:   s.loadedAt,
	}
}

// ConsumeWatchEvents reloads the dataset whenever the watcher reports a
// settled file change. Blocks until the context is canceled.
func (s *DatasetService) ConsumeWatchEvents(ctx context.Context, events <-chan watcher.Event, errs <-chan error) {
	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			s.logger.Info("dataset file changed, reloading",
				slog.String("path", evt.Path))
			if _, err := s.Reload(ctx, "watcher"); err != nil {
				s.logger.Error("watcher-triggered reload failed", "error", err)
			}

		case err, ok := <-errs:
			if !ok {
				return
			}
			s.logger.Warn("dataset watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}
