// Package watch rebuilds the index when the corpus file changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vocal/internal/core/domain"
	"github.com/custodia-labs/vocal/internal/core/ports/driving"
	"github.com/custodia-labs/vocal/internal/logger"
)

// DefaultDebounce collapses the burst of events an editor or export tool
// produces for a single save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher triggers a forced rebuild after the corpus file settles.
type Watcher struct {
	index    driving.IndexService
	path     string
	debounce time.Duration
	onResult func(domain.IndexStatus, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild starts.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithResultHandler receives the outcome of every rebuild.
func WithResultHandler(fn func(domain.IndexStatus, error)) Option {
	return func(w *Watcher) {
		w.onResult = fn
	}
}

// New creates a watcher for the corpus file at path.
func New(index driving.IndexService, path string, opts ...Option) (*Watcher, error) {
	if index == nil {
		return nil, errors.New("watch: index service is required")
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no corpus source to watch", domain.ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	w := &Watcher{
		index:    index,
		path:     abs,
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run blocks until ctx is cancelled. The parent directory is watched
// because most tools replace files by rename.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	logger.Info("watching %s for changes", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				logger.Debug("corpus event: %s", event)
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		case <-timer.C:
			w.rebuild(ctx)
		}
	}
}

// relevant reports whether event touches the corpus file with a change
// that alters its content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	name, err := filepath.Abs(event.Name)
	if err != nil || name != w.path {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}

func (w *Watcher) rebuild(ctx context.Context) {
	status, err := w.index.Rebuild(ctx, domain.RebuildOptions{Source: w.path, Force: true})
	switch {
	case errors.Is(err, domain.ErrRebuildInProgress):
		logger.Debug("rebuild already running, skipping")
	case err != nil:
		logger.Error("rebuild after change failed: %v", err)
	default:
		logger.Info("rebuilt index: %d records, %d segments", status.Records, status.Segments)
	}
	if w.onResult != nil {
		w.onResult(status, err)
	}
}
