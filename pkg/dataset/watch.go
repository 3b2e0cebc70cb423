package dataset

import (
	"context"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates Loader entries when files in a data directory change.
type Watcher struct {
	dir    string
	loader *Loader
	logger *log.Logger
	fsw    *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to process events and Close
// when done.
func NewWatcher(dir string, loader *Loader, logger *log.Logger) (*Watcher, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{dir: dir, loader: loader, logger: logger, fsw: fsw}, nil
}

// Run processes events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
				!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Base(ev.Name)
			w.loader.Invalidate(ctx, name)
			w.logger.Info("dataset changed", "name", name, "op", ev.Op.String())
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "dir", w.dir, "error", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Watch is NewWatcher followed by Run, closing the watcher on return.
func Watch(ctx context.Context, dir string, loader *Loader, logger *log.Logger) error {
	w, err := NewWatcher(dir, loader, logger)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx)
}
