package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookscape/bookscape-server/internal/loader"
	"github.com/bookscape/bookscape-server/internal/ratelimit"
	"github.com/bookscape/bookscape-server/internal/search"
	"github.com/bookscape/bookscape-server/internal/selection"
	"github.com/bookscape/bookscape-server/internal/service"
	"github.com/bookscape/bookscape-server/internal/sse"
	"github.com/bookscape/bookscape-server/internal/store"
)

const testDatasetCSV = `id,title,author,genre,publicationYear,pageCount,ratingAverage,mostPopularCountry,adaptedToMovie
1,The Silent Harbor,Ada Quill,Fiction,2001,320,4.6,United States of America,TRUE
2,Harbor Lights,Ben Marsh,Fiction,2005,280,3.8,France,FALSE
3,Deep Winter,Cara Voss,Fantasy,2010,450,4.2,USA,FALSE
4,Paper Towns of Glass,Dee Holt,Mystery,1998,210,3.2,Japan,FALSE
`

// testServer wraps the API server with a humatest client.
type testServer struct {
	*Server
	api        humatest.TestAPI
	sseManager *sse.Manager
}

// setupTestServer creates a server over a small dataset loaded from a
// temporary CSV file, backed by real Badger and Bleve instances.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	datasetPath := filepath.Join(tmpDir, "books.csv")
	require.NoError(t, os.WriteFile(datasetPath, []byte(testDatasetCSV), 0o644))

	st, err := store.New(filepath.Join(tmpDir, "test.db"), nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.Open(filepath.Join(tmpDir, "search.bleve"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	sseManager := sse.NewManager(logger)

	datasetService := service.NewDatasetService(
		loader.New(logger), st, idx, sseManager, logger, datasetPath, 10)
	require.NoError(t, datasetService.Start(context.Background()))

	coordinator := selection.NewCoordinator(logger)
	services := &Services{
		Dataset:   datasetService,
		Views:     service.NewViewService(datasetService, coordinator, logger),
		Selection: service.NewSelectionService(coordinator, datasetService, sseManager, logger),
		Search:    service.NewSearchService(idx, logger),
	}

	router := chi.NewRouter()
	humaConfig := huma.DefaultConfig("Bookscape API Test", "1.0.0")
	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:         st,
		services:      services,
		sseManager:    sseManager,
		router:        router,
		api:           api,
		reloadLimiter: ratelimit.New(100, 100),
		logger:        logger,
	}

	s.registerHealthRoutes()
	s.registerDatasetRoutes()
	s.registerViewRoutes()
	s.registerSelectionRoutes()
	s.registerSearchRoutes()

	return &testServer{
		Server:     s,
		api:        humatest.Wrap(t, api),
		sseManager: sseManager,
	}
}

func decodeBody[T any](t *testing.T, body []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	health := decodeBody[HealthResponse](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
	assert.Equal(t, "healthy", health.Components["dataset"].Status)
	assert.Equal(t, "healthy", health.Components["search"].Status)
	assert.Equal(t, "healthy", health.Components["sse"].Status)
}

func TestGetDataset(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/dataset")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	info := decodeBody[service.DatasetInfo](t, resp.Body.Bytes())
	assert.Equal(t, 4, info.Count)
	assert.Equal(t, "startup", info.Source)
	assert.Equal(t, uint64(1), info.Generation)
}

func TestReloadDataset(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/dataset/reload")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	info := decodeBody[service.DatasetInfo](t, resp.Body.Bytes())
	assert.Equal(t, 4, info.Count)
	assert.Equal(t, "reload", info.Source)
	assert.Equal(t, uint64(2), info.Generation)
}

func TestReloadDataset_RateLimited(t *testing.T) {
	ts := setupTestServer(t)
	ts.reloadLimiter = ratelimit.New(0.1, 1)

	resp := ts.api.Post("/api/v1/dataset/reload")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/dataset/reload")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code, resp.Body.String())
}

func TestGenresView(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/views/genres")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	payload := decodeBody[service.GenresPayload](t, resp.Body.Bytes())
	assert.Nil(t, payload.SelectedGenre)
	assert.Equal(t, 4, payload.TotalRecords)
	require.Len(t, payload.Genres, 3)
	assert.Equal(t, "Fiction", payload.Genres[0].Genre)
	assert.Equal(t, 2, payload.Genres[0].Count)
	assert.False(t, payload.Genres[0].Selected)
}

func TestCountriesView_FilteredByGenre(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/genre", map[string]any{"genre": "Fiction"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/views/countries")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	payload := decodeBody[service.CountriesPayload](t, resp.Body.Bytes())
	require.NotNil(t, payload.SelectedGenre)
	assert.Equal(t, "Fiction", *payload.SelectedGenre)

	countries := make(map[string]service.CountryRow, len(payload.Countries))
	for _, row := range payload.Countries {
		countries[row.Country] = row
	}
	require.Len(t, countries, 2)
	assert.Equal(t, "United States of America",
		countries["United States of America"].TopologyName)
	assert.Equal(t, 1, countries["France"].Count)
}

func TestScatterView_BrushHighlights(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/brush", map[string]any{"ids": []int{3, 1}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view := decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Equal(t, []int{1, 3}, view.Highlighted)

	resp = ts.api.Get("/api/v1/views/scatter")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	payload := decodeBody[service.ScatterPayload](t, resp.Body.Bytes())
	require.Len(t, payload.Points, 4)
	assert.Equal(t, []int{1, 3}, payload.Highlighted)
	for _, p := range payload.Points {
		assert.Equal(t, p.ID == 1 || p.ID == 3, p.Highlighted, "point %d", p.ID)
	}
}

func TestFlowView_NodeSelection(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/node", map[string]any{"node_id": "m_Adapted"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view := decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Equal(t, []int{1}, view.Highlighted)

	resp = ts.api.Get("/api/v1/views/flow")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	payload := decodeBody[service.FlowPayload](t, resp.Body.Bytes())
	require.NotNil(t, payload.SelectedNodeID)
	assert.Equal(t, "m_Adapted", *payload.SelectedNodeID)
	assert.NotEmpty(t, payload.Nodes)
	assert.NotEmpty(t, payload.Links)
}

func TestSelection_StateMachine(t *testing.T) {
	ts := setupTestServer(t)

	// Brush, then selecting a node clears the brush.
	resp := ts.api.Post("/api/v1/selection/brush", map[string]any{"ids": []int{2}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/selection/node", map[string]any{"node_id": "g_Fiction"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view := decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Nil(t, view.State.BrushedIDs)
	require.NotNil(t, view.State.SelectedFlowNodeID)
	assert.Equal(t, "g_Fiction", *view.State.SelectedFlowNodeID)
	assert.Equal(t, []int{1, 2}, view.Highlighted)

	// Changing the genre clears the node selection too.
	resp = ts.api.Post("/api/v1/selection/genre", map[string]any{"genre": "Fantasy"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view = decodeBody[service.SelectionView](t, resp.Body.Bytes())
	require.NotNil(t, view.State.SelectedGenre)
	assert.Equal(t, "Fantasy", *view.State.SelectedGenre)
	assert.Nil(t, view.State.SelectedFlowNodeID)
	assert.Empty(t, view.Highlighted)

	// Posting the same node twice toggles it off.
	ts.api.Post("/api/v1/selection/node", map[string]any{"node_id": "r_Acclaimed"})
	resp = ts.api.Post("/api/v1/selection/node", map[string]any{"node_id": "r_Acclaimed"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view = decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Nil(t, view.State.SelectedFlowNodeID)
}

func TestSelectNode_InvalidPrefix(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/node", map[string]any{"node_id": "x_Fiction"})
	assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
}

func TestResetSelection(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Post("/api/v1/selection/genre", map[string]any{"genre": "Fiction"})
	ts.api.Post("/api/v1/selection/brush", map[string]any{"ids": []int{1}})

	resp := ts.api.Delete("/api/v1/selection")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	view := decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Nil(t, view.State.SelectedGenre)
	assert.Nil(t, view.State.BrushedIDs)
	assert.Nil(t, view.State.SelectedFlowNodeID)
	assert.Empty(t, view.Highlighted)

	resp = ts.api.Get("/api/v1/selection")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	view = decodeBody[service.SelectionView](t, resp.Body.Bytes())
	assert.Empty(t, view.Highlighted)
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=harbor")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeBody[SearchResponse](t, resp.Body.Bytes())
	assert.Equal(t, "harbor", result.Query)
	assert.Equal(t, uint64(2), result.Total)

	ids := make([]int, 0, len(result.Hits))
	for _, hit := range result.Hits {
		ids = append(ids, hit.ID)
	}
	assert.ElementsMatch(t, []int{1, 2}, ids)
}

func TestSearch_GenreFilter(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=harbor&genre=Fiction&limit=5")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeBody[SearchResponse](t, resp.Body.Bytes())
	assert.Equal(t, uint64(2), result.Total)
	for _, hit := range result.Hits {
		assert.Equal(t, "Fiction", hit.Genre)
	}
}
