package lint

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeremymeng/rushstack/internal/logfields"
	"github.com/jeremymeng/rushstack/internal/workspace"
)

// DefaultDebounce is the quiet period after the last change before a re-run.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the rule file and lockfiles and triggers re-runs.
type Watcher struct {
	files    map[string]struct{}
	dirs     []string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
}

// WatchPaths returns the rule file plus the committed lockfile of every
// project, deduplicated and sorted.
func WatchPaths(ws *workspace.Workspace, rulesPath string) []string {
	seen := map[string]struct{}{rulesPath: {}}
	for _, p := range ws.Projects() {
		seen[ws.CommittedLockfilePath(p)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for path := range seen {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}

// NewWatcher creates a watcher for paths. Directories containing the paths
// are watched since editors and pnpm replace files rather than write them.
func NewWatcher(paths []string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		files:    make(map[string]struct{}, len(paths)),
		watcher:  fw,
		debounce: debounce,
		logger:   logger,
	}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("failed to resolve watch path: %w", err)
		}
		w.files[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := fw.Add(dir); err != nil {
			logger.Warn("Cannot watch directory", logfields.Path(dir), logfields.Error(err))
			continue
		}
		w.dirs = append(w.dirs, dir)
	}
	if len(w.dirs) == 0 {
		_ = fw.Close()
		return nil, fmt.Errorf("none of the %d watch paths has an existing directory", len(paths))
	}
	return w, nil
}

// Run blocks until ctx is done, calling fn once per burst of changes.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()
	w.logger.Info("Watching for changes", logfields.Count(len(w.files)))

	var (
		timer   *time.Timer
		trigger <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			trigger = timer.C
		case <-trigger:
			trigger = nil
			fn(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(event.Name)]
	return ok
}
