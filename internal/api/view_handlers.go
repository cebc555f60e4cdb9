package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookscape/bookscape-server/internal/service"
)

func (s *Server) registerViewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getGenresView",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/genres",
		Summary:     "Genre bar chart payload",
		Description: "Returns the top genres with aggregates and the selected genre",
		Tags:        []string{"Views"},
	}, s.handleGenresView)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCountriesView",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/countries",
		Summary:     "Country map payload",
		Description: "Returns per-country aggregates with topology names, filtered by the selected genre",
		Tags:        []string{"Views"},
	}, s.handleCountriesView)

	huma.Register(s.api, huma.Operation{
		OperationID: "getScatterView",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/scatter",
		Summary:     "Scatter plot payload",
		Description: "Returns filtered records as points with highlight flags",
		Tags:        []string{"Views"},
	}, s.handleScatterView)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFlowView",
		Method:      http.MethodGet,
		Path:        "/api/v1/views/flow",
		Summary:     "Flow diagram payload",
		Description: "Returns the genre to rating tier to movie adaptation flow graph",
		Tags:        []string{"Views"},
	}, s.handleFlowView)
}

// === DTOs ===

// GenresViewOutput wraps the bar chart payload for Huma.
type GenresViewOutput struct {
	Body service.GenresPayload
}

// CountriesViewOutput wraps the map payload for Huma.
type CountriesViewOutput struct {
	Body service.CountriesPayload
}

// ScatterViewOutput wraps the scatter payload for Huma.
type ScatterViewOutput struct {
	Body service.ScatterPayload
}

// FlowViewOutput wraps the flow payload for Huma.
type FlowViewOutput struct {
	Body service.FlowPayload
}

// === Handlers ===

func (s *Server) handleGenresView(ctx context.Context, _ *struct{}) (*GenresViewOutput, error) {
	return &GenresViewOutput{Body: s.services.Views.Genres(ctx)}, nil
}

func (s *Server) handleCountriesView(ctx context.Context, _ *struct{}) (*CountriesViewOutput, error) {
	return &CountriesViewOutput{Body: s.services.Views.Countries(ctx)}, nil
}

func (s *Server) handleScatterView(ctx context.Context, _ *struct{}) (*ScatterViewOutput, error) {
	return &ScatterViewOutput{Body: s.services.Views.Scatter(ctx)}, nil
}

func (s *Server) handleFlowView(ctx context.Context, _ *struct{}) (*FlowViewOutput, error) {
	return &FlowViewOutput{Body: s.services.Views.Flow(ctx)}, nil
}
