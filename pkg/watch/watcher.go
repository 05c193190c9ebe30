// Package watch re-runs analysis when source files change on disk.
package watch

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/tangle/internal/metrics"
	"github.com/panbanda/tangle/pkg/config"
	"github.com/panbanda/tangle/pkg/parser"
)

// Callback receives the files that changed in one debounce window, sorted.
type Callback func(ctx context.Context, changed []string)

// Watcher monitors a directory tree and reports batches of changed source
// files once they have been quiet for the debounce period.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	path      string
	callback  Callback

	// outMu serialises status lines written from the event loop and the
	// debounce goroutine.
	outMu sync.Mutex
	out   io.Writer

	mu      sync.Mutex
	pending map[string]time.Time
	// hashes holds the xxhash of each known file so saves that do not
	// change content are dropped.
	hashes map[string]uint64
}

// NewWatcher creates a watcher for path. A non-positive debounce uses the
// configured watch.debounce.
func NewWatcher(path string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = cfg.Watch.DebounceDuration()
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		path:      path,
		out:       os.Stdout,
		pending:   make(map[string]time.Time),
		hashes:    make(map[string]uint64),
	}, nil
}

// SetCallback sets the function to call with each batch of changes.
func (w *Watcher) SetCallback(cb Callback) {
	w.callback = cb
}

// SetOutput redirects status lines.
func (w *Watcher) SetOutput(out io.Writer) {
	w.outMu.Lock()
	w.out = out
	w.outMu.Unlock()
}

func (w *Watcher) printf(attr color.Attribute, format string, args ...any) {
	w.outMu.Lock()
	defer w.outMu.Unlock()
	color.New(attr).Fprintf(w.out, format, args...)
}

func (w *Watcher) isSource(path string) bool {
	return parser.DetectLanguage(path) != parser.LangUnknown && !w.config.ShouldExclude(path)
}

func (w *Watcher) excludedDir(name string) bool {
	for _, excluded := range w.config.Exclude.Dirs {
		if name == excluded {
			return true
		}
	}
	return false
}

// addTree watches root and every non-excluded directory below it, and
// records the content hash of each source file found.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && w.excludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if w.isSource(path) {
			if h, ok := hashFile(path); ok {
				w.mu.Lock()
				w.hashes[path] = h
				w.mu.Unlock()
			}
		}
		return nil
	})
}

func hashFile(path string) (uint64, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(content), true
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addTree(w.path); err != nil {
		return err
	}

	w.printf(color.FgCyan, "Watching for changes in %s...\nPress Ctrl+C to stop\n", w.path)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.printf(color.FgRed, "Watch error: %v\n", err)
		}
	}
}

// handleEvent queues a source file for the next batch when its content
// changed or it went away. New directories are watched as they appear.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(info.Name()) {
				_ = w.addTree(path)
			}
			return
		}
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if !w.isSource(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		delete(w.hashes, path)
	} else {
		h, ok := hashFile(path)
		if !ok {
			return
		}
		if prev, known := w.hashes[path]; known && prev == h {
			return
		}
		w.hashes[path] = h
	}

	metrics.WatcherEvents.Inc()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	tick := w.debounce / 4
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ready := w.takeReady(time.Now()); len(ready) > 0 {
				w.run(ctx, ready)
			}
		}
	}
}

// takeReady removes and returns the pending files once every pending file
// has been quiet for the debounce period. A burst of saves across several
// files becomes one batch.
func (w *Watcher) takeReady(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return nil
	}
	for _, last := range w.pending {
		if now.Sub(last) < w.debounce {
			return nil
		}
	}

	ready := make([]string, 0, len(w.pending))
	for path := range w.pending {
		ready = append(ready, path)
	}
	sort.Strings(ready)
	w.pending = make(map[string]time.Time)
	return ready
}

func (w *Watcher) run(ctx context.Context, changed []string) {
	if w.callback == nil {
		return
	}
	for _, path := range changed {
		rel, err := filepath.Rel(w.path, path)
		if err != nil {
			rel = path
		}
		w.printf(color.FgYellow, "File changed: %s\n", rel)
	}
	w.callback(ctx, changed)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the watched directories.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
