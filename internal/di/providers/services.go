package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookscape/bookscape-server/internal/config"
	"github.com/bookscape/bookscape-server/internal/loader"
	"github.com/bookscape/bookscape-server/internal/logger"
	"github.com/bookscape/bookscape-server/internal/selection"
	"github.com/bookscape/bookscape-server/internal/service"
)

// ProvideSelectionCoordinator provides the cross-view selection coordinator.
func ProvideSelectionCoordinator(i do.Injector) (*selection.Coordinator, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return selection.NewCoordinator(log.Logger), nil
}

// ProvideDatasetService provides the dataset loading service.
func ProvideDatasetService(i do.Injector) (*service.DatasetService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	svc := service.NewDatasetService(
		loader.New(log.Logger),
		storeHandle.Store,
		indexHandle.Index,
		sseHandle.Manager,
		log.Logger,
		cfg.Dataset.Path,
		cfg.Dataset.TopGenres,
	)

	return svc, nil
}

// ProvideViewService provides the view payload service.
func ProvideViewService(i do.Injector) (*service.ViewService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	dataset := do.MustInvoke[*service.DatasetService](i)
	coordinator := do.MustInvoke[*selection.Coordinator](i)

	return service.NewViewService(dataset, coordinator, log.Logger), nil
}

// ProvideSelectionService provides the selection state service.
func ProvideSelectionService(i do.Injector) (*service.SelectionService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	dataset := do.MustInvoke[*service.DatasetService](i)
	coordinator := do.MustInvoke[*selection.Coordinator](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	return service.NewSelectionService(coordinator, dataset, sseHandle.Manager, log.Logger), nil
}
