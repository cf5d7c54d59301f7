package pipeline

import (
	"sync"
	"time"
)

// Snapshot is an immutable view of a Run's progress, grounded on
// async.IndexProgressSnapshot but extended with the current file,
// throughput, and ETA fields a live progress event needs.
type Snapshot struct {
	FilesScanned    int
	FilesProcessed  int
	CurrentFile     string
	ThroughputPerS  float64
	ETASeconds      float64
	ErrorCount      int
}

// Progress tracks one pipeline run's counters under a single mutex, the
// same discipline as async.IndexProgress, and fans out a Snapshot after
// every update to anything subscribed via Subscribe.
type Progress struct {
	mu sync.RWMutex

	filesScanned   int
	filesProcessed int
	currentFile    string
	errorCount     int
	startedAt      time.Time

	subscribers []chan Snapshot
}

// NewProgress builds a Progress tracker starting now.
func NewProgress(now time.Time) *Progress {
	return &Progress{startedAt: now}
}

// Subscribe returns a buffered channel that receives a Snapshot after
// every update. The channel is never closed by Progress; callers drain it
// for as long as they care to.
func (p *Progress) Subscribe() <-chan Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan Snapshot, 32)
	p.subscribers = append(p.subscribers, ch)
	return ch
}

// SetScanned updates the running count of files discovered by the walker.
func (p *Progress) SetScanned(n int) {
	p.mu.Lock()
	p.filesScanned = n
	p.mu.Unlock()
	p.publish()
}

// MarkProcessed records that path finished batch processing (successfully
// or not) and advances the processed counter.
func (p *Progress) MarkProcessed(path string, now time.Time, failed bool) {
	p.mu.Lock()
	p.filesProcessed++
	p.currentFile = path
	if failed {
		p.errorCount++
	}
	p.mu.Unlock()
	_ = now
	p.publish()
}

// Snapshot computes the current progress snapshot, including throughput
// (files/sec since start) and a naive linear ETA based on that throughput.
func (p *Progress) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

func (p *Progress) snapshotLocked() Snapshot {
	elapsed := time.Since(p.startedAt).Seconds()
	var throughput float64
	if elapsed > 0 {
		throughput = float64(p.filesProcessed) / elapsed
	}

	var eta float64
	remaining := p.filesScanned - p.filesProcessed
	if throughput > 0 && remaining > 0 {
		eta = float64(remaining) / throughput
	}

	return Snapshot{
		FilesScanned:   p.filesScanned,
		FilesProcessed: p.filesProcessed,
		CurrentFile:    p.currentFile,
		ThroughputPerS: throughput,
		ETASeconds:     eta,
		ErrorCount:     p.errorCount,
	}
}

func (p *Progress) publish() {
	p.mu.RLock()
	snap := p.snapshotLocked()
	subs := make([]chan Snapshot, len(p.subscribers))
	copy(subs, p.subscribers)
	p.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: drop rather than block the pipeline, the
			// same non-blocking-fanout tradeoff async.IndexProgress's
			// polling Snapshot() accessor makes implicitly.
		}
	}
}
