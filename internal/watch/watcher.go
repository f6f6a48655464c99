// Package watch re-runs a callback when documents under a directory change.
//
// Events are debounced: a burst of writes (an editor saving through a temp
// file, a git checkout) produces one callback with every changed path.
// Callbacks run on the Run goroutine, so they never overlap.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mfenderov/llmsref/internal/markdown"
)

const defaultDebounce = 500 * time.Millisecond

// Config holds watcher configuration.
type Config struct {
	Root       string        // Directory watched recursively
	Extensions []string      // Only files with these extensions trigger; empty means markdown.DefaultExtensions
	Debounce   time.Duration // Quiet period before the callback fires

	// OnChange receives the changed paths relative to Root, sorted. A
	// returned error stops Run.
	OnChange func(ctx context.Context, changed []string) error
}

// Watcher monitors a directory tree.
type Watcher struct {
	config Config
	fsw    *fsnotify.Watcher
	root   string
}

// New creates a Watcher and registers every directory under Root.
func New(config Config) (*Watcher, error) {
	if config.Root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if config.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}
	if config.Debounce <= 0 {
		config.Debounce = defaultDebounce
	}
	if len(config.Extensions) == 0 {
		config.Extensions = markdown.DefaultExtensions
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", config.Root, err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{config: config, fsw: fsw, root: root}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled or a callback fails. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return fmt.Errorf("fsnotify event channel closed")
			}
			if evt.Has(fsnotify.Create) {
				if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
					if err := w.addTree(evt.Name); err != nil {
						slog.Warn("failed to watch new directory", "path", evt.Name, "error", err)
					}
					continue
				}
			}
			if evt.Op == fsnotify.Chmod || !markdown.IsDocumentFile(evt.Name, w.config.Extensions) {
				continue
			}

			rel, err := filepath.Rel(w.root, evt.Name)
			if err != nil {
				rel = evt.Name
			}
			slog.Debug("document changed", "path", rel, "op", evt.Op.String())
			pending[filepath.ToSlash(rel)] = struct{}{}
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			if err := w.config.OnChange(ctx, changed); err != nil {
				return err
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return fmt.Errorf("fsnotify error channel closed")
			}
			slog.Warn("fsnotify error", "error", err)
		}
	}
}

// addTree adds dir and all directories below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			slog.Warn("skipping inaccessible path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}
