// Package watcher monitors the dataset file for changes using fsnotify
// with debouncing, so a reload is only triggered once the file has
// settled after a write.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event signals that the watched dataset file changed and settled.
type Event struct {
	ModTime time.Time
	Path    string
	Size    int64
}

// Watcher watches a single dataset file by watching its parent directory.
// Writes are debounced: the event fires only after SettleDelay passes
// without further modification.
type Watcher struct {
	logger      *slog.Logger
	watcher     *fsnotify.Watcher
	path        string
	settleDelay time.Duration

	mu    sync.Mutex
	timer *time.Timer

	events chan Event
	errors chan error
	done   chan struct{}
	wg     sync.WaitGroup
}

// Options configures a Watcher.
type Options struct {
	// SettleDelay is how long the file must be quiet before an event fires.
	// Defaults to 2 seconds.
	SettleDelay time.Duration
}

// New creates a watcher for the given dataset file.
func New(path string, logger *slog.Logger, opts Options) (*Watcher, error) {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 2 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		logger:      logger,
		watcher:     fsw,
		path:        path,
		settleDelay: opts.SettleDelay,
		events:      make(chan Event, 10),
		errors:      make(chan error, 10),
		done:        make(chan struct{}),
	}, nil
}

// Start begins watching for events. It blocks until the context is
// canceled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	select {
	case <-ctx.Done():
	case <-w.done:
	}
	return nil
}

// Stop stops the watcher and releases resources.
func (w *Watcher) Stop() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	return err
}

// Events returns the channel for receiving settled change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warn("watcher error channel full, dropping error",
					slog.String("error", err.Error()))
			}

		case <-ctx.Done():
			return

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// The parent directory is watched; only react to the dataset file itself.
	if filepath.Clean(event.Name) != w.path {
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	w.logger.Debug("dataset file event",
		slog.String("path", event.Name),
		slog.String("op", event.Op.String()))

	// Reset the settle timer. Editors and atomic-rename writers produce a
	// burst of events; only the last one matters.
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.settleDelay, w.emitSettled)
}

// emitSettled fires after the settle delay without further writes.
func (w *Watcher) emitSettled() {
	info, err := os.Stat(w.path)
	if err != nil {
		// File may have been removed mid-rewrite; ignore and wait for the
		// next write event.
		w.logger.Debug("dataset file not stat-able after settle",
			slog.String("path", w.path),
			slog.String("error", err.Error()))
		return
	}

	evt := Event{
		Path:    w.path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}

	select {
	case <-w.done:
	case w.events <- evt:
		w.logger.Info("dataset file settled",
			slog.String("path", w.path),
			slog.Int64("size", evt.Size))
	default:
		w.logger.Warn("watcher event channel full, dropping event",
			slog.String("path", w.path))
	}
}
