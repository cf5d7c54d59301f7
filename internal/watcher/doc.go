// Package watcher provides real-time file system watching with automatic
// debouncing and rename detection.
//
// It implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: polling for environments where fsnotify fails (network
//     mounts, some container filesystems)
//
// Rapid bursts of events for the same path are coalesced within a debounce
// window before being emitted, and a delete immediately followed by a
// same-size create is reported as a single rename rather than two events.
//
// Usage:
//
//	opts := watcher.DefaultOptions()
//	w, err := watcher.NewHybridWatcher(opts)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	if err := w.Start(ctx, "/path/to/project"); err != nil {
//	    return err
//	}
//
//	for batch := range w.Events() {
//	    for _, event := range batch {
//	        switch event.Operation {
//	        case watcher.OpCreate:
//	            // handle file creation
//	        case watcher.OpModify:
//	            // handle file modification
//	        case watcher.OpDelete:
//	            // handle file deletion
//	        case watcher.OpRename:
//	            // handle file move, event.OldPath -> event.Path
//	        }
//	    }
//	}
package watcher
