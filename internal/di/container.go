// Package di provides dependency injection configuration for the Bookscape server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookscape/bookscape-server/internal/config"
	"github.com/bookscape/bookscape-server/internal/di/providers"
	"github.com/bookscape/bookscape-server/internal/logger"
	"github.com/bookscape/bookscape-server/internal/selection"
	"github.com/bookscape/bookscape-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideSelectionCoordinator)
	do.Provide(injector, providers.ProvideDatasetService)
	do.Provide(injector, providers.ProvideViewService)
	do.Provide(injector, providers.ProvideSelectionService)

	// Workers
	do.Provide(injector, providers.ProvideDatasetWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and performs the initial dataset load.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Business services
	_ = do.MustInvoke[*selection.Coordinator](injector)
	dataset := do.MustInvoke[*service.DatasetService](injector)
	_ = do.MustInvoke[*service.ViewService](injector)
	_ = do.MustInvoke[*service.SelectionService](injector)

	// Initial load before the watcher and server come up, so the first
	// request already sees data.
	if err := dataset.Start(context.Background()); err != nil {
		return err
	}

	// Workers
	_ = do.MustInvoke[*providers.DatasetWatcherHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
