package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookscape/bookscape-server/internal/service"
)

func (s *Server) registerSelectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getSelection",
		Method:      http.MethodGet,
		Path:        "/api/v1/selection",
		Summary:     "Get selection state",
		Description: "Returns the current cross-view selection state and highlight set",
		Tags:        []string{"Selection"},
	}, s.handleGetSelection)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/genre",
		Summary:     "Select genre",
		Description: "Sets or clears the genre filter; clears brush and flow node selections",
		Tags:        []string{"Selection"},
	}, s.handleSelectGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "applyBrush",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/brush",
		Summary:     "Apply brush",
		Description: "Replaces the brushed record ids; clears any flow node selection",
		Tags:        []string{"Selection"},
	}, s.handleApplyBrush)

	huma.Register(s.api, huma.Operation{
		OperationID: "selectFlowNode",
		Method:      http.MethodPost,
		Path:        "/api/v1/selection/node",
		Summary:     "Select flow node",
		Description: "Toggles a flow node selection; selecting a node clears the brush",
		Tags:        []string{"Selection"},
	}, s.handleSelectFlowNode)

	huma.Register(s.api, huma.Operation{
		OperationID: "resetSelection",
		Method:      http.MethodDelete,
		Path:        "/api/v1/selection",
		Summary:     "Reset selection",
		Description: "Clears the genre filter, brush, and flow node selection",
		Tags:        []string{"Selection"},
	}, s.handleResetSelection)
}

// === DTOs ===

// SelectGenreRequest sets or clears the genre filter.
type SelectGenreRequest struct {
	Genre *string `json:"genre" doc:"Genre to filter by; null or empty clears the filter"`
}

// SelectGenreInput wraps the genre selection body.
type SelectGenreInput struct {
	Body SelectGenreRequest
}

// ApplyBrushRequest replaces the brushed record-id set.
type ApplyBrushRequest struct {
	IDs []int `json:"ids" doc:"Brushed record ids; empty clears the brush"`
}

// ApplyBrushInput wraps the brush body.
type ApplyBrushInput struct {
	Body ApplyBrushRequest
}

// SelectFlowNodeRequest toggles a flow node selection.
type SelectFlowNodeRequest struct {
	NodeID *string `json:"node_id" doc:"Flow node id (g_, r_, or m_ prefixed); null or empty clears the selection"`
}

// SelectFlowNodeInput wraps the node selection body.
type SelectFlowNodeInput struct {
	Body SelectFlowNodeRequest
}

// SelectionOutput wraps the selection view for Huma.
type SelectionOutput struct {
	Body service.SelectionView
}

// === Handlers ===

func (s *Server) handleGetSelection(ctx context.Context, _ *struct{}) (*SelectionOutput, error) {
	return &SelectionOutput{Body: s.services.Selection.Get(ctx)}, nil
}

func (s *Server) handleSelectGenre(ctx context.Context, input *SelectGenreInput) (*SelectionOutput, error) {
	view, err := s.services.Selection.SelectGenre(ctx, input.Body.Genre)
	if err != nil {
		return nil, err
	}
	return &SelectionOutput{Body: view}, nil
}

func (s *Server) handleApplyBrush(ctx context.Context, input *ApplyBrushInput) (*SelectionOutput, error) {
	view, err := s.services.Selection.Brush(ctx, input.Body.IDs)
	if err != nil {
		return nil, err
	}
	return &SelectionOutput{Body: view}, nil
}

func (s *Server) handleSelectFlowNode(ctx context.Context, input *SelectFlowNodeInput) (*SelectionOutput, error) {
	view, err := s.services.Selection.SelectNode(ctx, input.Body.NodeID)
	if err != nil {
		return nil, err
	}
	return &SelectionOutput{Body: view}, nil
}

func (s *Server) handleResetSelection(ctx context.Context, _ *struct{}) (*SelectionOutput, error) {
	return &SelectionOutput{Body: s.services.Selection.Reset(ctx)}, nil
}
