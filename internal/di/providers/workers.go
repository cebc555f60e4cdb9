package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/bookscape/bookscape-server/internal/config"
	"github.com/bookscape/bookscape-server/internal/logger"
	"github.com/bookscape/bookscape-server/internal/service"
	"github.com/bookscape/bookscape-server/internal/watcher"
)

// DatasetWatcherHandle wraps the dataset file watcher with shutdown capability.
type DatasetWatcherHandle struct {
	// Watcher is nil when watching is disabled or no dataset is configured.
	Watcher *watcher.Watcher
	cancel  context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DatasetWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideDatasetWatcher provides the dataset file watcher, wired to reload
// the dataset when the file settles after a change.
func ProvideDatasetWatcher(i do.Injector) (*DatasetWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dataset := do.MustInvoke[*service.DatasetService](i)

	if !cfg.Dataset.Watch || cfg.Dataset.Path == "" {
		log.Info("Dataset watching disabled")
		return &DatasetWatcherHandle{}, nil
	}

	w, err := watcher.New(cfg.Dataset.Path, log.Logger, watcher.Options{})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Dataset watcher error", "error", err)
		}
	}()
	go dataset.ConsumeWatchEvents(ctx, w.Events(), w.Errors())

	log.Info("Watching dataset file", "path", cfg.Dataset.Path)

	return &DatasetWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
