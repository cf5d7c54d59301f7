package watcher

import (
	"context"
	"time"
)

// Operation is the kind of file system change a WatchEvent reports.
type Operation int

const (
	// OpCreate indicates a new file or directory was created.
	OpCreate Operation = iota
	// OpModify indicates an existing file was modified.
	OpModify
	// OpDelete indicates a file or directory was deleted.
	OpDelete
	// OpRename indicates a delete+create pair was coalesced into a move,
	// per the debouncer's path-swap rule.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// WatchEvent describes one file system change, possibly the coalesced
// result of several raw events for the same path.
type WatchEvent struct {
	// Path is the file or directory path, relative to the watched root.
	Path string

	// OldPath is the previous path for a rename event; empty otherwise.
	OldPath string

	Operation Operation
	IsDir     bool

	// Size is the file's size at the time of the event, used by the
	// debouncer's rename-matching rule and otherwise informational.
	Size int64

	Timestamp time.Time
}

// Watcher watches a single root directory for changes.
type Watcher interface {
	// Start begins watching root recursively. It blocks until ctx is
	// canceled or Stop is called.
	Start(ctx context.Context, root string) error

	// Stop stops the watcher and releases resources. Safe to call more
	// than once.
	Stop() error

	// Events returns the channel of debounced event batches. Closed when
	// the watcher stops.
	Events() <-chan []WatchEvent

	// Errors returns the channel of non-fatal watch errors. Closed when
	// the watcher stops.
	Errors() <-chan error

	// Pause suspends event emission without tearing down the underlying
	// watch; Resume restores it. Events observed while paused are
	// dropped, not queued.
	Pause()
	Resume()

	// Stats returns a snapshot of this watcher's counters.
	Stats() Stats
}

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is how long to wait before emitting coalesced
	// events. Default 500ms.
	DebounceWindow time.Duration

	// PollInterval is the scan interval used in polling fallback mode.
	PollInterval time.Duration

	// EventBufferSize is the size of the output event-batch channel.
	EventBufferSize int

	// ExcludePatterns are gitignore-syntax patterns; a matching path's
	// events are dropped.
	ExcludePatterns []string

	// OnWatchFailed, if set, is called with a directory fsnotify.Add
	// refused to watch. The watcher keeps running for every other
	// directory rather than failing the whole watch; the caller is
	// expected to fall back to periodic re-walk (internal/scheduler) for
	// that subtree.
	OnWatchFailed func(dir string, err error)
}

// DefaultDebounceWindow is the default event-coalescing window, kept
// generous since a file-memory re-index is heavier than a single-record
// re-embed.
const DefaultDebounceWindow = 500 * time.Millisecond

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  DefaultDebounceWindow,
		PollInterval:    5 * time.Second,
		EventBufferSize: 1000,
	}
}

// WithDefaults returns o with zero-valued fields filled from DefaultOptions.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = d.DebounceWindow
	}
	if o.PollInterval == 0 {
		o.PollInterval = d.PollInterval
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = d.EventBufferSize
	}
	return o
}
