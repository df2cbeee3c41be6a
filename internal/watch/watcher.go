// Package watch reports debounced batches of file changes below a root
// directory.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change is one file event, with Path relative to the root in slash form.
type Change struct {
	Path   string
	Action string // "create", "modify", "delete", "rename"
}

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before a batch is
	// delivered. Default: 200ms.
	Debounce time.Duration

	// Filter selects the files whose events are reported. Nil reports all.
	Filter func(rel string) bool

	// SkipDir selects directories that are not watched. Nil watches all.
	SkipDir func(rel string) bool

	// Logger receives watch errors. Nil discards them.
	Logger *zap.Logger
}

// Watcher watches a directory tree.
type Watcher struct {
	root     string
	opts     Options
	onChange func([]Change)
	fsw      *fsnotify.Watcher
	log      *zap.Logger

	mu      sync.Mutex
	pending map[string]Change
	timer   *time.Timer
	closed  bool

	// inflight counts scheduled timers, so close can wait for a delivery
	// that is already running.
	inflight sync.WaitGroup
}

// New creates a Watcher for root. onChange is called from a timer goroutine
// with each batch, sorted by path. No call is in progress or starts once Run
// has returned.
func New(root string, opts Options, onChange func([]Change)) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root path")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		root:     absRoot,
		opts:     opts,
		onChange: onChange,
		fsw:      fsw,
		log:      log,
		pending:  make(map[string]Change),
	}, nil
}

// Run watches until ctx is done. The underlying watcher is closed on
// return, so a Watcher cannot be reused.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.addRecursive(w.root); err != nil {
		return errors.Wrap(err, "add watch paths")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// WatchedDirs returns how many directories are being watched.
func (w *Watcher) WatchedDirs() int {
	return len(w.fsw.WatchList())
}

func (w *Watcher) close() {
	w.mu.Lock()
	w.closed = true
	w.stopTimer()
	w.pending = make(map[string]Change)
	w.mu.Unlock()
	w.inflight.Wait()
	_ = w.fsw.Close()
}

// stopTimer cancels the scheduled flush, if any. w.mu must be held.
func (w *Watcher) stopTimer() {
	if w.timer != nil && w.timer.Stop() {
		w.inflight.Done()
	}
	w.timer = nil
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(path); ok && rel != "." && w.opts.SkipDir != nil && w.opts.SkipDir(rel) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.log.Warn("cannot watch directory", zap.String("dir", path), zap.Error(err))
		}
		return nil
	})
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, ok := w.rel(ev.Name)
	if !ok {
		return
	}

	var action string
	switch {
	case ev.Op&fsnotify.Create != 0:
		action = "create"
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if w.opts.SkipDir == nil || !w.opts.SkipDir(rel) {
				_ = w.addRecursive(ev.Name)
				// Files created together with the directory produce no
				// events of their own.
				w.queue(Change{Path: rel, Action: action})
			}
			return
		}
	case ev.Op&fsnotify.Write != 0:
		action = "modify"
	case ev.Op&fsnotify.Remove != 0:
		action = "delete"
	case ev.Op&fsnotify.Rename != 0:
		action = "rename"
	default:
		return
	}

	// A removed or renamed directory cannot be told apart from a file, so
	// those events bypass the filter.
	if action != "delete" && action != "rename" && w.opts.Filter != nil && !w.opts.Filter(rel) {
		return
	}
	w.queue(Change{Path: rel, Action: action})
}

func (w *Watcher) queue(c Change) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if prev, ok := w.pending[c.Path]; ok && prev.Action == "delete" && c.Action == "create" {
		c.Action = "modify"
	}
	w.pending[c.Path] = c

	w.stopTimer()
	w.inflight.Add(1)
	w.timer = time.AfterFunc(w.opts.Debounce, func() {
		defer w.inflight.Done()
		w.flush()
	})
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.closed || len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}
	changes := make([]Change, 0, len(w.pending))
	for _, c := range w.pending {
		changes = append(changes, c)
	}
	w.pending = make(map[string]Change)
	w.mu.Unlock()

	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	if w.onChange != nil {
		w.onChange(changes)
	}
}
