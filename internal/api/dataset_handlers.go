package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/bookscape/bookscape-server/internal/errors"
	"github.com/bookscape/bookscape-server/internal/service"
)

func (s *Server) registerDatasetRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getDataset",
		Method:      http.MethodGet,
		Path:        "/api/v1/dataset",
		Summary:     "Get dataset status",
		Description: "Returns the current dataset load status",
		Tags:        []string{"Dataset"},
	}, s.handleGetDataset)

	huma.Register(s.api, huma.Operation{
		OperationID: "reloadDataset",
		Method:      http.MethodPost,
		Path:        "/api/v1/dataset/reload",
		Summary:     "Reload dataset",
		Description: "Re-reads the dataset file and replaces all records",
		Tags:        []string{"Dataset"},
	}, s.handleReloadDataset)
}

// === DTOs ===

// DatasetOutput wraps the dataset info for Huma.
type DatasetOutput struct {
	Body service.DatasetInfo
}

// === Handlers ===

func (s *Server) handleGetDataset(ctx context.Context, _ *struct{}) (*DatasetOutput, error) {
	return &DatasetOutput{Body: s.services.Dataset.Info(ctx)}, nil
}

func (s *Server) handleReloadDataset(ctx context.Context, _ *struct{}) (*DatasetOutput, error) {
	if !s.reloadLimiter.Allow("dataset.reload") {
		return nil, domainerrors.Unavailable("reload rate limit exceeded, try again shortly")
	}

	info, err := s.services.Dataset.Reload(ctx, "reload")
	if err != nil {
		return nil, err
	}
	return &DatasetOutput{Body: info}, nil
}
