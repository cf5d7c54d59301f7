// Package scheduler periodically re-syncs every configured source on its
// own cadence, independent of live filesystem watching -- the fallback
// path for sources with no active watcher (or whose watcher missed events
// because a directory couldn't be watched). It runs a tick-driven
// background loop: a ticker plus a per-key in-flight guard.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hippo-mem/hippo/internal/memory"
)

// Syncer is the narrow surface Scheduler drives. Satisfied by
// *engine.Engine; kept as an interface here so scheduler doesn't import
// the facade package, the same narrow-interface-at-call-site habit
// internal/pipeline and internal/search already follow.
type Syncer interface {
	ListSources(ctx context.Context) ([]memory.SourceConfig, error)
	SyncSource(ctx context.Context, src memory.Source) error
}

// Scheduler wakes every TickInterval and re-syncs any enabled source whose
// last sync is older than SourceInterval.
type Scheduler struct {
	syncer         Syncer
	tickInterval   time.Duration
	sourceInterval time.Duration

	cron    *cron.Cron
	entryID cron.EntryID

	mu       sync.Mutex
	inFlight map[string]bool
}

// New builds a Scheduler. tickInterval and sourceInterval default to
// config.SchedulerConfig's own defaults (300s / 3600s) when zero.
func New(syncer Syncer, tickInterval, sourceInterval time.Duration) *Scheduler {
	if tickInterval <= 0 {
		tickInterval = 300 * time.Second
	}
	if sourceInterval <= 0 {
		sourceInterval = 3600 * time.Second
	}
	return &Scheduler{
		syncer:         syncer,
		tickInterval:   tickInterval,
		sourceInterval: sourceInterval,
		cron:           cron.New(),
		inFlight:       make(map[string]bool),
	}
}

// Start registers the periodic tick and begins running it in the
// background. ctx bounds the scheduler's lifetime: canceling it stops the
// cron loop via Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	id, err := s.cron.AddFunc(everySpec(s.tickInterval), func() { s.tick(ctx) })
	if err != nil {
		return err
	}
	s.entryID = id
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the cron loop, waiting for any in-progress tick to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// tick checks every configured source and re-syncs those due, skipping any
// source a previous tick is still syncing -- the in-flight guard that
// makes overlapping ticks safe to ignore rather than queue.
func (s *Scheduler) tick(ctx context.Context) {
	sources, err := s.syncer.ListSources(ctx)
	if err != nil {
		slog.Warn("scheduler: failed to list sources", slog.String("error", err.Error()))
		return
	}

	now := time.Now()
	for _, cfg := range sources {
		if !cfg.Enabled {
			continue
		}
		if !s.due(cfg, now) {
			continue
		}

		key := cfg.Source.Key()
		if !s.claim(key) {
			continue
		}

		go func(src memory.Source, key string) {
			defer s.release(key)
			if err := s.syncer.SyncSource(ctx, src); err != nil {
				slog.Warn("scheduler: re-sync failed", slog.String("source", key), slog.String("error", err.Error()))
			}
		}(cfg.Source, key)
	}
}

// due reports whether cfg's source is overdue for a re-sync: either it has
// never synced, or more than its configured interval (falling back to
// s.sourceInterval when unset) has elapsed since LastSync.
func (s *Scheduler) due(cfg memory.SourceConfig, now time.Time) bool {
	if cfg.LastSync == nil {
		return true
	}
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = s.sourceInterval
	}
	return now.Sub(*cfg.LastSync) >= interval
}

// claim marks key as in-flight, reporting false if it already was.
func (s *Scheduler) claim(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[key] {
		return false
	}
	s.inFlight[key] = true
	return true
}

func (s *Scheduler) release(key string) {
	s.mu.Lock()
	delete(s.inFlight, key)
	s.mu.Unlock()
}

// everySpec builds a robfig/cron "@every" spec from a duration, rounding
// down to the nearest second since cron's @every parser works in whole
// time.ParseDuration units.
func everySpec(d time.Duration) string {
	return "@every " + d.String()
}
