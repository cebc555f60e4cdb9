package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/bookscape/bookscape-server/internal/aggregate"
	"github.com/bookscape/bookscape-server/internal/domain"
	"github.com/bookscape/bookscape-server/internal/geo"
	"github.com/bookscape/bookscape-server/internal/selection"
)

// ViewService derives the per-view payloads from the dataset snapshot and the
// current selection state. Each payload is self-contained: a view renders
// from its payload alone and never reads another view's data.
type ViewService struct {
	dataset     *DatasetService
	coordinator *selection.Coordinator
	logger      *slog.Logger

	// Aggregates depend only on (generation, genre filter), so the last
	// computation is cached. Recomputes are wholesale, never incremental.
	memoMu sync.Mutex
	memo   *viewMemo
}

type viewMemo struct {
	generation uint64
	genreKey   string
	genres     []domain.GenreAggregate
	countries  []domain.CountryAggregate
	flow       domain.FlowGraph
}

// GenreBar is one bar of the genre chart.
type GenreBar struct {
	Genre        string  `json:"genre"`
	Count        int     `json:"count"`
	AvgRating    float64 `json:"avg_rating"`
	AvgPageCount float64 `json:"avg_page_count"`
	Selected     bool    `json:"selected"`
}

// GenresPayload is the bar chart payload: one bar per top genre, ordered by
// descending count. Bars are derived from the full dataset, never the genre
// filter, so the chart stays stable while acting as the filter control.
type GenresPayload struct {
	SelectedGenre *string    `json:"selected_genre,omitempty"`
	Genres        []GenreBar `json:"genres"`
	TotalRecords  int        `json:"total_records"`
}

// CountryRow is one country of the map payload.
type CountryRow struct {
	Country      string  `json:"country"`
	TopologyName string  `json:"topology_name"`
	Count        int     `json:"count"`
	AvgRating    float64 `json:"avg_rating"`
}

// CountriesPayload is the geo map payload.
type CountriesPayload struct {
	SelectedGenre *string      `json:"selected_genre,omitempty"`
	Countries     []CountryRow `json:"countries"`
}

// ScatterPoint is one dot of the scatter plot.
type ScatterPoint struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           string  `json:"genre"`
	PageCount       int     `json:"page_count"`
	RatingAverage   float64 `json:"rating_average"`
	PublicationYear int     `json:"publication_year"`
	Highlighted     bool    `json:"highlighted"`
}

// ScatterPayload is the scatter plot payload. Highlighted carries the ids in
// the current highlight set; an empty list means "no active highlight", so
// renderers draw every point at base opacity.
type ScatterPayload struct {
	SelectedGenre *string        `json:"selected_genre,omitempty"`
	Points        []ScatterPoint `json:"points"`
	Highlighted   []int          `json:"highlighted"`
}

// FlowPayload is the Sankey payload.
type FlowPayload struct {
	SelectedGenre  *string           `json:"selected_genre,omitempty"`
	SelectedNodeID *string           `json:"selected_node_id,omitempty"`
	Nodes          []domain.FlowNode `json:"nodes"`
	Links          []domain.FlowLink `json:"links"`
}

// NewViewService creates a view service.
func NewViewService(dataset *DatasetService, coordinator *selection.Coordinator, logger *slog.Logger) *ViewService {
	return &ViewService{
		dataset:     dataset,
		coordinator: coordinator,
		logger:      logger,
	}
}

// Genres returns the bar chart payload.
func (s *ViewService) Genres(_ context.Context) GenresPayload {
	records, top, gen := s.dataset.Snapshot()
	state := s.coordinator.State()
	m := s.aggregates(records, top, gen, state)

	bars := make([]GenreBar, 0, len(top))
	byGenre := make(map[string]domain.GenreAggregate, len(m.genres))
	for _, agg := range m.genres {
		byGenre[agg.Genre] = agg
	}
	for _, genre := range top {
		agg := byGenre[genre]
		bars = append(bars, GenreBar{
			Genre:        genre,
			Count:        agg.Count,
			AvgRating:    agg.AvgRating,
			AvgPageCount: agg.AvgPageCount,
			Selected:     state.SelectedGenre != nil && *state.SelectedGenre == genre,
		})
	}

	return GenresPayload{
		Genres:        bars,
		SelectedGenre: state.SelectedGenre,
		TotalRecords:  len(records),
	}
}

// Countries returns the geo map payload, with country labels resolved to the
// names used by the world topology.
func (s *ViewService) Countries(_ context.Context) CountriesPayload {
	records, top, gen := s.dataset.Snapshot()
	state := s.coordinator.State()
	m := s.aggregates(records, top, gen, state)

	rows := make([]CountryRow, 0, len(m.countries))
	for _, agg := range m.countries {
		rows = append(rows, CountryRow{
			Country:      agg.Country,
			TopologyName: geo.Resolve(agg.Country),
			Count:        agg.Count,
			AvgRating:    agg.AvgRating,
		})
	}

	return CountriesPayload{
		Countries:     rows,
		SelectedGenre: state.SelectedGenre,
	}
}

// Scatter returns the scatter plot payload with highlight flags applied.
func (s *ViewService) Scatter(_ context.Context) ScatterPayload {
	records, top, _ := s.dataset.Snapshot()
	state := s.coordinator.State()

	filtered := aggregate.FilterByGenres(records, state.GenreFilter())
	highlight := selection.HighlightSet(state, records, top)

	points := make([]ScatterPoint, 0, len(filtered))
	for i := range filtered {
		rec := &filtered[i]
		points = append(points, ScatterPoint{
			ID:              rec.ID,
			Title:           rec.Title,
			Author:          rec.Author,
			Genre:           rec.Genre,
			PageCount:       rec.PageCount,
			RatingAverage:   rec.RatingAverage,
			PublicationYear: rec.PublicationYear,
			Highlighted:     highlight[rec.ID],
		})
	}

	ids := make([]int, 0, len(highlight))
	for id := range highlight {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	return ScatterPayload{
		Points:        points,
		Highlighted:   ids,
		SelectedGenre: state.SelectedGenre,
	}
}

// Flow returns the Sankey payload.
func (s *ViewService) Flow(_ context.Context) FlowPayload {
	records, top, gen := s.dataset.Snapshot()
	state := s.coordinator.State()
	m := s.aggregates(records, top, gen, state)

	return FlowPayload{
		Nodes:          m.flow.Nodes,
		Links:          m.flow.Links,
		SelectedGenre:  state.SelectedGenre,
		SelectedNodeID: state.SelectedFlowNodeID,
	}
}

// aggregates returns the cached aggregate bundle for the current
// (generation, genre filter), recomputing it when either changed.
func (s *ViewService) aggregates(records []domain.BookRecord, top []string, gen uint64, state selection.State) *viewMemo {
	genreKey := ""
	if state.SelectedGenre != nil {
		genreKey = *state.SelectedGenre
	}

	s.memoMu.Lock()
	defer s.memoMu.Unlock()

	if s.memo != nil && s.memo.generation == gen && s.memo.genreKey == genreKey {
		return s.memo
	}

	filtered := aggregate.FilterByGenres(records, state.GenreFilter())
	s.memo = &viewMemo{
		generation: gen,
		genreKey:   genreKey,
		genres:     aggregate.ByGenre(records),
		countries:  aggregate.ByCountry(filtered),
		flow:       aggregate.BuildFlowGraph(filtered, top),
	}
	s.logger.Debug("view aggregates recomputed",
		slog.Uint64("generation", gen),
		slog.String("genre_filter", genreKey))
	return s.memo
}
