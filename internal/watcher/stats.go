package watcher

import "sync"

// Stats is a snapshot of one watcher's lifetime counters, guarded by a
// single RWMutex over every mutable field.
type Stats struct {
	EventsProcessed uint64
	CreatedCount    uint64
	ModifiedCount   uint64
	DeletedCount    uint64
	RenamedCount    uint64
	DroppedBatches  uint64
	Paused          bool
	WatcherType     string
	RootPath        string
}

// statsTracker accumulates Stats under a single RWMutex; embedded by both
// HybridWatcher and PollingWatcher.
type statsTracker struct {
	mu      sync.RWMutex
	stats   Stats
	paused  bool
}

func (t *statsTracker) recordBatch(events []WatchEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stats.EventsProcessed += uint64(len(events))
	for _, ev := range events {
		switch ev.Operation {
		case OpCreate:
			t.stats.CreatedCount++
		case OpModify:
			t.stats.ModifiedCount++
		case OpDelete:
			t.stats.DeletedCount++
		case OpRename:
			t.stats.RenamedCount++
		}
	}
}

func (t *statsTracker) recordDroppedBatch() {
	t.mu.Lock()
	t.stats.DroppedBatches++
	t.mu.Unlock()
}

func (t *statsTracker) setMeta(watcherType, rootPath string) {
	t.mu.Lock()
	t.stats.WatcherType = watcherType
	t.stats.RootPath = rootPath
	t.mu.Unlock()
}

func (t *statsTracker) pause() {
	t.mu.Lock()
	t.paused = true
	t.stats.Paused = true
	t.mu.Unlock()
}

func (t *statsTracker) resume() {
	t.mu.Lock()
	t.paused = false
	t.stats.Paused = false
	t.mu.Unlock()
}

func (t *statsTracker) isPaused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.paused
}

func (t *statsTracker) snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.stats
}
