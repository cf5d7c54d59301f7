package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hippo-mem/hippo/internal/gitignore"
)

// HybridWatcher implements Watcher using fsnotify as the primary mechanism
// with polling as a fallback for directories fsnotify can't watch.
type HybridWatcher struct {
	statsTracker

	fsWatcher   *fsnotify.Watcher
	pollWatcher *PollingWatcher
	useFsnotify bool
	debouncer   *Debouncer
	excludes    *gitignore.Matcher
	events      chan []WatchEvent
	errors      chan error
	stopCh      chan struct{}
	rootPath    string
	opts        Options
	mu          sync.RWMutex
	stopped     bool
}

var _ Watcher = (*HybridWatcher)(nil)

// NewHybridWatcher creates a hybrid watcher. It attempts fsnotify first,
// falling back to polling if the platform refuses to create one.
func NewHybridWatcher(opts Options) (*HybridWatcher, error) {
	opts = opts.WithDefaults()

	var excludes *gitignore.Matcher
	if len(opts.ExcludePatterns) > 0 {
		excludes = gitignore.New()
		for _, pattern := range opts.ExcludePatterns {
			excludes.AddPattern(pattern)
		}
	}

	h := &HybridWatcher{
		debouncer: NewDebouncer(opts.DebounceWindow),
		excludes:  excludes,
		events:    make(chan []WatchEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}

	fsw, err := fsnotify.NewWatcher()
	if err == nil {
		h.fsWatcher = fsw
		h.useFsnotify = true
	} else {
		h.useFsnotify = false
		h.pollWatcher = NewPollingWatcher(opts.PollInterval)
	}

	return h, nil
}

// Start begins watching root.
func (h *HybridWatcher) Start(ctx context.Context, root string) error {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	h.rootPath = absPath
	h.setMeta(h.WatcherType(), absPath)

	go h.forwardDebouncedEvents(ctx)

	if h.useFsnotify {
		return h.startFsnotify(ctx)
	}
	return h.startPolling(ctx)
}

// startFsnotify starts the fsnotify-based watcher.
func (h *HybridWatcher) startFsnotify(ctx context.Context) error {
	h.addRecursive(h.rootPath)

	for {
		select {
		case <-ctx.Done():
			_ = h.Stop()
			return ctx.Err()
		case <-h.stopCh:
			return nil
		case event, ok := <-h.fsWatcher.Events:
			if !ok {
				return nil
			}
			h.handleFsnotifyEvent(event)
		case err, ok := <-h.fsWatcher.Errors:
			if !ok {
				return nil
			}
			h.emitError(err)
		}
	}
}

// startPolling starts the polling-based watcher, translating its raw events
// through the same filter/debounce pipeline as the fsnotify path.
func (h *HybridWatcher) startPolling(ctx context.Context) error {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-h.stopCh:
				return
			case event, ok := <-h.pollWatcher.Events():
				if !ok {
					return
				}
				if h.isPaused() || h.shouldIgnore(event.Path) {
					continue
				}
				h.debouncer.Add(event)
			case err, ok := <-h.pollWatcher.Errors():
				if !ok {
					return
				}
				h.emitError(err)
			}
		}
	}()

	return h.pollWatcher.Start(ctx, h.rootPath)
}

// handleFsnotifyEvent converts and filters a raw fsnotify event.
func (h *HybridWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	relPath, err := filepath.Rel(h.rootPath, event.Name)
	if err != nil {
		relPath = event.Name
	}

	var size int64
	isDir := false
	if info, statErr := os.Stat(event.Name); statErr == nil {
		isDir = info.IsDir()
		size = info.Size()
	}

	if h.isPaused() || h.shouldIgnore(relPath) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
		if isDir {
			h.addWatch(event.Name)
		}
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		// fsnotify reports the source side of a move as Rename; the
		// matching create at the destination arrives separately and the
		// debouncer's rename-matching rule fuses the two.
		op = OpDelete
	case event.Op&fsnotify.Chmod != 0:
		return
	default:
		return
	}

	h.debouncer.Add(WatchEvent{
		Path:      relPath,
		Operation: op,
		IsDir:     isDir,
		Size:      size,
		Timestamp: time.Now(),
	})
}

// addWatch adds a directory to the fsnotify watcher, falling back to
// Options.OnWatchFailed rather than failing the whole watch (spec's
// fail-soft rule).
func (h *HybridWatcher) addWatch(dir string) {
	if err := h.fsWatcher.Add(dir); err != nil {
		if h.opts.OnWatchFailed != nil {
			h.opts.OnWatchFailed(dir, err)
		}
	}
}

// forwardDebouncedEvents forwards debounced batches to the output channel.
func (h *HybridWatcher) forwardDebouncedEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.stopCh:
			return
		case events, ok := <-h.debouncer.Output():
			if !ok {
				return
			}
			if len(events) == 0 {
				continue
			}
			h.emitEvents(events)
		}
	}
}

// addRecursive adds every directory under root to the fsnotify watcher,
// skipping hidden directories (dotfiles/dotdirs) and anything excluded.
func (h *HybridWatcher) addRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}

		relPath, _ := filepath.Rel(h.rootPath, path)
		if relPath == "." {
			h.addWatch(path)
			return nil
		}

		if strings.HasPrefix(d.Name(), ".") || h.shouldIgnore(relPath) {
			return fs.SkipDir
		}

		h.addWatch(path)
		return nil
	})
}

// shouldIgnore reports whether relPath should be dropped, per the compiled
// ExcludePatterns matcher.
func (h *HybridWatcher) shouldIgnore(relPath string) bool {
	if relPath == "." || relPath == "" {
		return true
	}
	if h.excludes == nil {
		return false
	}
	return h.excludes.Match(relPath, false)
}

// emitEvents sends a debounced batch to the output channel, counting it
// into Stats either way.
func (h *HybridWatcher) emitEvents(events []WatchEvent) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	h.recordBatch(events)

	select {
	case h.events <- events:
	default:
		h.recordDroppedBatch()
	}
}

// emitError sends a non-fatal error to the error channel, dropping it if
// the channel is full rather than blocking the watch loop.
func (h *HybridWatcher) emitError(err error) {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		return
	}

	select {
	case h.errors <- err:
	default:
	}
}

// Stop stops the watcher and releases resources. Safe to call more than
// once.
func (h *HybridWatcher) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true
	close(h.stopCh)

	h.debouncer.Stop()

	if h.useFsnotify && h.fsWatcher != nil {
		_ = h.fsWatcher.Close()
	}
	if h.pollWatcher != nil {
		_ = h.pollWatcher.Stop()
	}

	close(h.events)
	close(h.errors)
	return nil
}

// Events returns the channel of debounced event batches.
func (h *HybridWatcher) Events() <-chan []WatchEvent {
	return h.events
}

// Errors returns the channel of non-fatal errors.
func (h *HybridWatcher) Errors() <-chan error {
	return h.errors
}

// Pause suspends event emission; events observed while paused are dropped.
func (h *HybridWatcher) Pause() {
	h.pause()
}

// Resume restores event emission after Pause.
func (h *HybridWatcher) Resume() {
	h.resume()
}

// Stats returns a snapshot of this watcher's counters.
func (h *HybridWatcher) Stats() Stats {
	return h.snapshot()
}

// WatcherType reports "fsnotify" or "polling".
func (h *HybridWatcher) WatcherType() string {
	if h.useFsnotify {
		return "fsnotify"
	}
	return "polling"
}

// RootPath returns the path being watched.
func (h *HybridWatcher) RootPath() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rootPath
}
