// Package watch re-checks source files as they change on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/incheck/internal/cache"
	"github.com/standardbeagle/incheck/internal/config"
	"github.com/standardbeagle/incheck/internal/debug"
	"github.com/standardbeagle/incheck/internal/discovery"
	"github.com/standardbeagle/incheck/internal/runner"
)

// Watcher monitors directories and files and re-runs the checker on the
// source files that change below them.
type Watcher struct {
	watcher   *fsnotify.Watcher
	scanner   *discovery.Scanner
	runner    *runner.Runner
	results   *cache.ResultCache
	logger    *debug.Logger
	debouncer *eventDebouncer

	filters []*discovery.Filter
	// files holds explicitly watched files; they bypass the filters.
	files map[string]bool

	onBatch   func(*runner.Summary, error)
	closeOnce sync.Once

	// Watch mode statistics
	statsMu         sync.RWMutex
	eventsProcessed int64
	batches         int64
	errorCount      int64
	lastEventTime   time.Time
}

// Stats contains statistics about file watching
type Stats struct {
	EventsProcessed int64
	Batches         int64
	ErrorCount      int64
	LastEventTime   time.Time
	WatchedPaths    int
}

// New creates a watcher that re-checks files through r. results is the
// cache r consults; removed files are dropped from it.
func New(cfg *config.Config, scanner *discovery.Scanner, r *runner.Runner, results *cache.ResultCache, logger *debug.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = debug.Discard()
	}
	return &Watcher{
		watcher:   fsw,
		scanner:   scanner,
		runner:    r,
		results:   results,
		logger:    logger,
		debouncer: newEventDebouncer(time.Duration(cfg.Watch.DebounceMs) * time.Millisecond),
		files:     make(map[string]bool),
	}, nil
}

// OnBatch registers fn to be called after every re-check.
func (w *Watcher) OnBatch(fn func(*runner.Summary, error)) {
	w.onBatch = fn
}

// Add starts watching path. Directories are watched recursively; a file is
// watched through its parent directory.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	if !info.IsDir() {
		w.files[abs] = true
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	}

	filter := w.scanner.NewFilter(abs)
	w.filters = append(w.filters, filter)
	w.addTree(filter, abs)
	return nil
}

// Run processes file events until ctx is cancelled. The underlying
// fsnotify watcher is closed on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	w.logger.Info("watching for changes", "paths", len(w.watcher.WatchList()))

	for {
		select {
		case <-ctx.Done():
			w.debouncer.stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.incrementStats(0, 1)
			w.logger.Warn("file watcher error", "err", err)

		case <-w.debouncer.ready:
			w.flush(ctx)
		}
	}
}

// Close releases the fsnotify watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.debouncer.stop()
		err = w.watcher.Close()
	})
	return err
}

// Stats returns current watch mode statistics
func (w *Watcher) Stats() Stats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	return Stats{
		EventsProcessed: w.eventsProcessed,
		Batches:         w.batches,
		ErrorCount:      w.errorCount,
		LastEventTime:   w.lastEventTime,
		WatchedPaths:    len(w.watcher.WatchList()),
	}
}

// addTree watches dir and every directory below it the filter keeps, and
// returns the eligible files already present.
func (w *Watcher) addTree(filter *discovery.Filter, dir string) []string {
	var found []string
	visited := make(map[string]bool)

	_ = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil && info.Mode().IsRegular() && filter.Keep(path, info.Size()) {
				found = append(found, path)
			}
			return nil
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil || visited[realPath] {
			return filepath.SkipDir
		}
		visited[realPath] = true

		if path != filter.Root() && filter.SkipDir(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to add watch", "path", path, "err", err)
			return nil
		}
		w.logger.Log("WATCH", "watching %s", path)
		return nil
	})
	return found
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	w.logger.Log("WATCH", "received %v for %s", event.Op, path)

	info, err := os.Stat(path)
	if err != nil {
		// Removed or renamed away.
		if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.results != nil {
			w.results.Invalidate(path)
		}
		return
	}

	if info.IsDir() {
		if event.Op&fsnotify.Create != 0 {
			w.handleNewDirectory(path)
		}
		return
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}
	if !info.Mode().IsRegular() || !w.eligible(path, info.Size()) {
		w.logger.Log("WATCH", "ignoring %s", path)
		return
	}
	w.debouncer.add(path)
}

func (w *Watcher) handleNewDirectory(path string) {
	for _, filter := range w.filters {
		if !filter.Covers(path) || filter.SkipDir(path) {
			continue
		}
		for _, file := range w.addTree(filter, path) {
			w.debouncer.add(file)
		}
		w.logger.Log("WATCH", "added watch for new directory %s", path)
		return
	}
}

func (w *Watcher) eligible(path string, size int64) bool {
	if w.files[path] {
		return true
	}
	for _, filter := range w.filters {
		if filter.KeepWithin(path, size) {
			return true
		}
	}
	return false
}

func (w *Watcher) flush(ctx context.Context) {
	paths := w.debouncer.drain()
	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.logger.Log("WATCH", "re-checking %d files", len(paths))
	summary, err := w.runner.Run(ctx, paths)
	w.incrementStats(int64(len(paths)), 0)

	w.statsMu.Lock()
	w.batches++
	w.statsMu.Unlock()

	if w.onBatch != nil {
		w.onBatch(summary, err)
	}
}

func (w *Watcher) incrementStats(events, errors int64) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.eventsProcessed += events
	w.errorCount += errors
	w.lastEventTime = time.Now()
}
