package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookscape/bookscape-server/internal/config"
	"github.com/bookscape/bookscape-server/internal/logger"
	"github.com/bookscape/bookscape-server/internal/search"
	"github.com/bookscape/bookscape-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexPath := filepath.Join(cfg.Metadata.BasePath, "search.bleve")
	index, err := search.Open(indexPath, log.Logger)
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(indexHandle.Index, log.Logger), nil
}
