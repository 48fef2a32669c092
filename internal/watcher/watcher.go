// Package watcher monitors the cover drop directory. Image files copied into
// it are picked up once they stop changing and imported as record covers.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 500 * time.Millisecond

// Options configure a DropWatcher.
type Options struct {
	// SettleDelay is how long a file must stop growing before it is
	// considered fully written. Files are often copied in over several
	// writes, so emitting on the first write would import a truncated image.
	SettleDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = defaultSettleDelay
	}
}

// Event describes a file that has finished settling in the drop directory.
type Event struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// DropWatcher watches a single flat directory for dropped image files.
type DropWatcher struct {
	dir     string
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	pending map[string]*pendingFile
	mu      sync.Mutex

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// New creates a watcher for dir, creating the directory if it does not exist.
func New(logger *slog.Logger, dir string, opts Options) (*DropWatcher, error) {
	opts.setDefaults()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create drop directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch drop directory: %w", err)
	}

	return &DropWatcher{
		dir:     filepath.Clean(dir),
		opts:    opts,
		logger:  logger,
		watcher: fsw,
		pending: make(map[string]*pendingFile),
		events:  make(chan Event, 100),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching and blocks until the context is cancelled. Files
// already present in the directory are picked up as if they were just dropped,
// so covers left over from a previous run are not lost.
func (w *DropWatcher) Start(ctx context.Context) error {
	w.wg.Add(1)
	go w.processEvents(ctx)

	if err := w.scanExisting(); err != nil {
		w.logger.Warn("initial drop directory scan failed", "dir", w.dir, "error", err)
	}

	<-ctx.Done()
	return nil
}

// Events returns the channel for receiving settled file events.
func (w *DropWatcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel for receiving watch errors.
func (w *DropWatcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources.
func (w *DropWatcher) Stop() error {
	w.once.Do(func() {
		close(w.done)

		w.mu.Lock()
		for _, pending := range w.pending {
			pending.timer.Stop()
		}
		clear(w.pending)
		w.mu.Unlock()

		w.watcher.Close()
		w.wg.Wait()

		close(w.events)
		close(w.errors)
	})
	return nil
}

// scanExisting queues files that were dropped while the watcher was down.
func (w *DropWatcher) scanExisting() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || shouldIgnore(entry.Name()) {
			continue
		}
		w.startSettling(filepath.Join(w.dir, entry.Name()))
	}
	return nil
}

func (w *DropWatcher) processEvents(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsnotifyEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.errors <- err
		}
	}
}

func (w *DropWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	path := event.Name

	if shouldIgnore(filepath.Base(path)) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(path)
		return
	}

	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(path)
	}
}

// startSettling begins or restarts the settle timer for a file.
func (w *DropWatcher) startSettling(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}
	if info.IsDir() {
		return
	}

	pending := &pendingFile{
		size:    info.Size(),
		modTime: info.ModTime(),
	}
	pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
		w.checkSettled(path)
	})
	w.pending[path] = pending
}

// checkSettled emits an event if the file has stopped changing, otherwise
// restarts the timer.
func (w *DropWatcher) checkSettled(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	pending, exists := w.pending[path]
	if !exists {
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		// Deleted while settling.
		delete(w.pending, path)
		return
	}

	if info.Size() != pending.size || !info.ModTime().Equal(pending.modTime) {
		pending.size = info.Size()
		pending.modTime = info.ModTime()
		pending.timer = time.AfterFunc(w.opts.SettleDelay, func() {
			w.checkSettled(path)
		})
		return
	}

	delete(w.pending, path)

	select {
	case w.events <- Event{Path: path, Size: info.Size(), ModTime: info.ModTime()}:
	case <-w.done:
	}
}

func (w *DropWatcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if pending, exists := w.pending[path]; exists {
		pending.timer.Stop()
		delete(w.pending, path)
	}
}

// shouldIgnore filters out hidden files and editor/transfer temp files.
func shouldIgnore(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	switch filepath.Ext(name) {
	case ".tmp", ".part", ".partial", ".swp":
		return true
	}
	return false
}
