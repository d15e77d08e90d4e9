package logsync

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDelay coalesces bursts of writes into one notification.
const watchDelay = 100 * time.Millisecond

// Watcher reports changes to a set of files by watching their directories.
// fsnotify cannot follow a file that is deleted and recreated, so the
// parent directory is watched and events are filtered by name.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *slog.Logger
	mu       sync.Mutex
	files    map[string]struct{}
	dirs     map[string]int
	events   chan string
	throttle *pathThrottle
	once     sync.Once
	closed   bool
}

// NewWatcher creates a watcher with no tracked files.
func NewWatcher(logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("logsync: create watcher: %w", err)
	}
	return &Watcher{
		fs:       fw,
		logger:   logger,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]int),
		events:   make(chan string, 16),
		throttle: newPathThrottle(watchDelay),
	}, nil
}

// Events delivers the cleaned path of each changed tracked file.
func (w *Watcher) Events() <-chan string {
	return w.events
}

// Track starts reporting changes to path. A missing directory is an error;
// the caller falls back to polling.
func (w *Watcher) Track(path string) error {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; ok {
		return nil
	}
	dir := filepath.Dir(path)
	if w.dirs[dir] == 0 {
		if err := w.fs.Add(dir); err != nil {
			return fmt.Errorf("logsync: watch %s: %w", dir, err)
		}
	}
	w.dirs[dir]++
	w.files[path] = struct{}{}
	return nil
}

// Untrack stops reporting changes to path.
func (w *Watcher) Untrack(path string) {
	path = filepath.Clean(path)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[path]; !ok {
		return
	}
	delete(w.files, path)
	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.fs.Remove(dir)
	}
}

// Tracked reports whether path is tracked.
func (w *Watcher) Tracked(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(path)]
	return ok
}

// Run forwards events until ctx is done, then closes the watcher and the
// Events channel.
func (w *Watcher) Run(ctx context.Context) {
	defer func() {
		w.throttle.Stop()
		_ = w.Close()
		w.mu.Lock()
		w.closed = true
		close(w.events)
		w.mu.Unlock()
	}()

	// The throttle fires on its own goroutine, so sends check closed under mu.
	send := func(path string) {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		select {
		case w.events <- path:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			name := filepath.Clean(ev.Name)
			if w.Tracked(name) {
				w.throttle.Enqueue(name, send)
			}
		}
	}
}

// Close releases the underlying watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		err = w.fs.Close()
	})
	return err
}

// pathThrottle delivers each path at most once per delay window.
type pathThrottle struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	delay   time.Duration
}

func newPathThrottle(delay time.Duration) *pathThrottle {
	return &pathThrottle{delay: delay, pending: make(map[string]struct{})}
}

func (t *pathThrottle) Enqueue(path string, send func(string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending[path] = struct{}{}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, func() { t.flush(send) })
	}
}

func (t *pathThrottle) flush(send func(string)) {
	t.mu.Lock()
	pending := t.pending
	t.pending = make(map[string]struct{})
	t.timer = nil
	t.mu.Unlock()

	for path := range pending {
		send(path)
	}
}

func (t *pathThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
