package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hippo-mem/hippo/internal/duplicate"
	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/pipeline"
	"github.com/hippo-mem/hippo/internal/search"
	"github.com/hippo-mem/hippo/internal/store"
	"github.com/hippo-mem/hippo/internal/telemetry"
	"github.com/hippo-mem/hippo/internal/thumbnail"
	"github.com/hippo-mem/hippo/internal/vectorindex"
	"github.com/hippo-mem/hippo/internal/watcher"
)

// Embedder is the shared embedding seam handed to both the indexing
// pipeline and the search engine, so a query and the content it searches
// are embedded by the same model.
type Embedder interface {
	pipeline.Embedder
	search.Embedder
}

// Config bundles what NewEngine needs beyond the store itself. WatchOptions
// and PipelineOptions carry zero-value defaults (BatchSize, Workers,
// DebounceWindow etc are filled in by their owning packages).
type Config struct {
	Embedder      Embedder
	WatchOptions  watcher.Options
	HashSizeLimit int64
	BatchSize     int
	Workers       int

	// ThumbnailDir, when set, enables Thumbnail by rooting the
	// content-addressed JPEG cache there. Left empty, Thumbnail always
	// errors.
	ThumbnailDir string
}

// watchEntry tracks one active watcher goroutine and its cancel func so
// UnwatchSource/UnwatchAll can tear it down cleanly.
type watchEntry struct {
	source  memory.Source
	watcher *watcher.HybridWatcher
	cancel  context.CancelFunc
}

// Engine is the single surface a caller drives hippo through: it wires
// together the durable store, the indexing pipeline, hybrid search,
// duplicate detection, and live filesystem watching. Everything runs
// behind a direct method surface; nothing here requires a process
// boundary.
type Engine struct {
	store   *store.Store
	search  *search.Engine
	vec     *vectorindex.Index
	thumbs  *thumbnail.Cache
	metrics *telemetry.QueryMetrics
	cfg     Config

	mu       sync.Mutex
	watchers map[string]*watchEntry // keyed by Source.Key()
}

// New builds an Engine over an already-open Store. When cfg.Embedder is
// set, every vector family collection is provisioned up front at the
// embedder's dimensionality; every embedding the pipeline computes is
// then fanned out to both the store's local fallback table and this
// in-process index via vectorSink. When cfg.ThumbnailDir is set,
// Thumbnail becomes available; otherwise it always errors.
func New(s *store.Store, cfg Config) (*Engine, error) {
	vec := vectorindex.NewIndex()

	var searchOpts []search.EngineOption
	if cfg.Embedder != nil {
		configs := make(map[vectorindex.Family]vectorindex.CollectionConfig, len(vectorindex.Families))
		for _, family := range vectorindex.Families {
			configs[family] = vectorindex.DefaultCollectionConfig(cfg.Embedder.Dimensions())
		}
		vec.EnsureCollections(configs)
		searchOpts = append(searchOpts, search.WithEmbedder(cfg.Embedder), search.WithVectorSearcher(vec))
	}

	var thumbs *thumbnail.Cache
	if cfg.ThumbnailDir != "" {
		var err error
		thumbs, err = thumbnail.NewCache(cfg.ThumbnailDir)
		if err != nil {
			return nil, err
		}
	}

	var metricsStore telemetry.QueryMetricsStore
	if err := telemetry.InitTelemetrySchema(s.DB()); err != nil {
		slog.Warn("query telemetry disabled: failed to initialize schema", slog.String("error", err.Error()))
	} else if ms, err := telemetry.NewSQLiteMetricsStore(s.DB()); err != nil {
		slog.Warn("query telemetry disabled: failed to open metrics store", slog.String("error", err.Error()))
	} else {
		metricsStore = ms
	}

	return &Engine{
		store:    s,
		search:   search.NewEngine(s, searchOpts...),
		vec:      vec,
		thumbs:   thumbs,
		metrics:  telemetry.NewQueryMetrics(metricsStore),
		cfg:      cfg,
		watchers: make(map[string]*watchEntry),
	}, nil
}

// Close flushes and releases the engine's query telemetry. It does not
// close the underlying Store, which a caller opened and owns.
func (e *Engine) Close() error {
	return e.metrics.Close()
}

// QueryMetrics returns a snapshot of recorded search telemetry: query type
// mix, top terms, zero-result queries, and latency distribution.
func (e *Engine) QueryMetrics() *telemetry.QueryMetricsSnapshot {
	return e.metrics.Snapshot()
}

// vectorSink fans a computed embedding out to both the store's local
// fallback table (consulted when no external vector backend is wired) and
// the in-process vectorindex.Index that backs live semantic search.
type vectorSink struct {
	store *store.Store
	vec   *vectorindex.Index
}

func (v *vectorSink) StoreEmbedding(ctx context.Context, memoryID string, kind string, vector []float32, model string) error {
	if err := v.store.StoreEmbedding(ctx, memoryID, kind, vector, model); err != nil {
		return err
	}
	if err := v.vec.Upsert(memoryID, vector, memory.KindName(kind)); err != nil {
		slog.Warn("failed to index embedding in vector index", slog.String("memory_id", memoryID), slog.String("error", err.Error()))
	}
	return nil
}

// pipelineOptions builds the Options a Run needs, wiring the shared
// Embedder (if any) through both the pipeline's Embedder seam and
// vectorSink, which keeps the store's fallback table and the in-process
// vector index consistent with each other.
func (e *Engine) pipelineOptions(cfg memory.SourceConfig) pipeline.Options {
	opts := pipeline.Options{
		BatchSize:       e.cfg.BatchSize,
		Workers:         e.cfg.Workers,
		HashSizeLimit:   e.cfg.HashSizeLimit,
		ExcludePatterns: cfg.ExcludePatterns,
		IncludePatterns: cfg.IncludePatterns,
	}
	if e.cfg.Embedder != nil {
		opts.Embedder = e.cfg.Embedder
		opts.EmbeddingSink = &vectorSink{store: e.store, vec: e.vec}
	}
	return opts
}

// AddSource registers source with the default sync interval and runs its
// first full index immediately, then lets the scheduler re-sync on
// cfg.SyncInterval.
func (e *Engine) AddSource(ctx context.Context, src memory.Source) error {
	cfg := memory.SourceConfig{Source: src, Enabled: true, SyncInterval: memory.DefaultSyncInterval}
	if err := e.store.AddSource(ctx, cfg); err != nil {
		return err
	}
	return e.SyncSource(ctx, src)
}

// RemoveSource deregisters source. When deleteMemories is true every
// memory indexed from it is also deleted; data is otherwise never deleted
// unless explicitly requested.
func (e *Engine) RemoveSource(ctx context.Context, src memory.Source, deleteMemories bool) error {
	if err := e.store.RemoveSource(ctx, src.Key()); err != nil {
		return err
	}
	if !deleteMemories {
		return nil
	}
	if src.Kind != memory.SourceLocal {
		return nil
	}
	return e.store.DeleteByPathPrefix(ctx, src.Root)
}

// SyncSource runs (or re-runs) a full walk-and-index pass over source,
// stamping its last-sync time on success. Progress is tracked internally
// and discarded; callers that want live progress use RunWithProgress.
func (e *Engine) SyncSource(ctx context.Context, src memory.Source) error {
	_, err := e.RunWithProgress(ctx, src, nil)
	return err
}

// RunWithProgress is SyncSource with an optional external *pipeline.Progress
// a caller can Subscribe to before the run starts.
func (e *Engine) RunWithProgress(ctx context.Context, src memory.Source, progress *pipeline.Progress) (*pipeline.Progress, error) {
	cfg, err := e.store.GetSource(ctx, src.Key())
	if err != nil {
		cfg = memory.SourceConfig{Source: src, Enabled: true, SyncInterval: memory.DefaultSyncInterval}
	}

	p := pipeline.New(e.store, e.pipelineOptions(cfg))
	if progress == nil {
		progress = pipeline.NewProgress(time.Now())
	}
	if err := p.Run(ctx, src, progress); err != nil {
		return progress, err
	}

	return progress, e.store.UpdateSourceLastSync(ctx, src.Key(), time.Now())
}

// ListSources returns every configured source.
func (e *Engine) ListSources(ctx context.Context) ([]memory.SourceConfig, error) {
	return e.store.ListSources(ctx)
}

// ClearAll stops every watcher and deletes every memory and source
// configuration -- a full destructive reset of the index.
func (e *Engine) ClearAll(ctx context.Context) error {
	e.UnwatchAll()

	sources, err := e.store.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, cfg := range sources {
		if err := e.store.RemoveSource(ctx, cfg.Source.Key()); err != nil {
			return err
		}
	}
	return e.store.DeleteByPathPrefix(ctx, "")
}

// Search runs a bare keyword query with default paging, for callers that
// don't need tag/kind/date filters.
func (e *Engine) Search(ctx context.Context, text string) (*search.Results, error) {
	return e.SearchAdvanced(ctx, search.SearchQuery{Text: text})
}

// SearchAdvanced runs a fully specified SearchQuery, recording query
// telemetry (type, latency, zero-result/term tracking) for every call.
func (e *Engine) SearchAdvanced(ctx context.Context, q search.SearchQuery) (*search.Results, error) {
	start := time.Now()
	results, err := e.search.Search(ctx, q)
	if err != nil {
		return results, err
	}

	queryType := telemetry.QueryTypeMixed
	if q.Text == "" {
		queryType = telemetry.QueryTypeLexical
	}
	e.metrics.Record(telemetry.QueryEvent{
		Query:       q.Text,
		QueryType:   queryType,
		ResultCount: len(results.Results),
		Latency:     time.Since(start),
		Timestamp:   start,
	})

	return results, nil
}

// SuggestTags returns up to 10 tag names ranked by relevance to prefix.
func (e *Engine) SuggestTags(ctx context.Context, prefix string) ([]string, error) {
	return search.SuggestTags(ctx, e.store, prefix)
}

// GetMemory returns a single memory by id.
func (e *Engine) GetMemory(ctx context.Context, id memory.ID) (*memory.Memory, error) {
	return e.store.GetByID(ctx, id)
}

// AddTag attaches tag to the memory with id and persists it.
func (e *Engine) AddTag(ctx context.Context, id memory.ID, tag memory.Tag) error {
	m, err := e.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.AddTag(tag)
	return e.store.Upsert(ctx, m)
}

// RemoveTag detaches the named tag from the memory with id, if present.
func (e *Engine) RemoveTag(ctx context.Context, id memory.ID, name string) error {
	m, err := e.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	m.RemoveTag(name)
	return e.store.Upsert(ctx, m)
}

// ToggleFavorite flips the favorite flag on the memory with id and returns
// its new state.
func (e *Engine) ToggleFavorite(ctx context.Context, id memory.ID) (bool, error) {
	return e.store.ToggleFavorite(ctx, id)
}

// ListTags returns every tag currently attached to at least one memory.
func (e *Engine) ListTags(ctx context.Context) ([]store.TagCount, error) {
	return e.store.ListTags(ctx)
}

// Stats summarizes the index's current contents by loading every stored
// memory; acceptable since Stats is not a hot path.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	memories, err := e.allMemories(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{TotalMemories: len(memories), ByKind: make(map[memory.KindName]int)}
	for _, m := range memories {
		stats.ByKind[m.Kind.Name]++
		if m.IsFavorite {
			stats.FavoriteCount++
		}
	}

	tags, err := e.store.ListTags(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.TotalTags = len(tags)

	sources, err := e.store.ListSources(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats.Sources = len(sources)

	return stats, nil
}

// allMemories loads every memory in the store in one unpaged query, with
// no candidate cap; used by Stats and FindDuplicates which both need the
// whole corpus rather than a search-shaped slice of it.
func (e *Engine) allMemories(ctx context.Context) ([]*memory.Memory, error) {
	return e.store.FindByPathPrefix(ctx, "")
}

// WatchSource starts a live filesystem watcher for source, debouncing
// bursts and re-running SyncSource for the affected subtree on each
// coalesced batch. It is idempotent: watching an already-watched source is
// a no-op. The watch outlives the call -- it is torn down only by
// UnwatchSource/UnwatchAll, not by cancellation of ctx, which is not used;
// the initial readiness check is a fixed 10ms wait.
func (e *Engine) WatchSource(ctx context.Context, src memory.Source) error {
	if src.Kind != memory.SourceLocal {
		return fmt.Errorf("engine: only local sources can be watched, got %q", src.Kind)
	}

	e.mu.Lock()
	if _, ok := e.watchers[src.Key()]; ok {
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()

	w, err := watcher.NewHybridWatcher(e.cfg.WatchOptions)
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	entry := &watchEntry{source: src, watcher: w, cancel: cancel}

	e.mu.Lock()
	e.watchers[src.Key()] = entry
	e.mu.Unlock()

	startErrCh := make(chan error, 1)
	go func() {
		startErrCh <- w.Start(watchCtx, src.Root)
	}()
	go e.pumpEvents(watchCtx, src, w)

	select {
	case err := <-startErrCh:
		// Start returned already: the watch failed to even begin.
		e.mu.Lock()
		delete(e.watchers, src.Key())
		e.mu.Unlock()
		cancel()
		return err
	case <-time.After(10 * time.Millisecond):
		// Start is blocking as expected (it runs until Stop/ctx cancel);
		// treat the watch as live.
		return nil
	}
}

// pumpEvents re-syncs src whenever its watcher delivers a debounced batch,
// until watchCtx is canceled. A failing re-sync's error is discarded (the
// pipeline itself logs per-file failures), as are watcher error events;
// pumpEvents just keeps listening rather than tearing the watch down, per
// the watcher's fail-soft contract.
func (e *Engine) pumpEvents(watchCtx context.Context, src memory.Source, w *watcher.HybridWatcher) {
	for {
		select {
		case <-watchCtx.Done():
			return
		case _, ok := <-w.Events():
			if !ok {
				return
			}
			_ = e.SyncSource(watchCtx, src)
		case _, ok := <-w.Errors():
			if !ok {
				return
			}
		}
	}
}

// UnwatchSource stops the live watcher for source, if any.
func (e *Engine) UnwatchSource(src memory.Source) error {
	e.mu.Lock()
	entry, ok := e.watchers[src.Key()]
	if ok {
		delete(e.watchers, src.Key())
	}
	e.mu.Unlock()

	if !ok {
		return nil
	}
	entry.cancel()
	return entry.watcher.Stop()
}

// WatchAll starts a watcher for every enabled, local source currently
// configured.
func (e *Engine) WatchAll(ctx context.Context) error {
	sources, err := e.store.ListSources(ctx)
	if err != nil {
		return err
	}
	for _, cfg := range sources {
		if !cfg.Enabled || cfg.Source.Kind != memory.SourceLocal {
			continue
		}
		if err := e.WatchSource(ctx, cfg.Source); err != nil {
			return err
		}
	}
	return nil
}

// UnwatchAll stops every active watcher.
func (e *Engine) UnwatchAll() {
	e.mu.Lock()
	entries := make([]*watchEntry, 0, len(e.watchers))
	for _, entry := range e.watchers {
		entries = append(entries, entry)
	}
	e.watchers = make(map[string]*watchEntry)
	e.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
		_ = entry.watcher.Stop()
	}
}

// WatchedPaths returns the root path of every actively watched source.
func (e *Engine) WatchedPaths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	paths := make([]string, 0, len(e.watchers))
	for _, entry := range e.watchers {
		paths = append(paths, entry.source.Root)
	}
	return paths
}

// ActiveWatchers returns the number of sources currently being watched.
func (e *Engine) ActiveWatchers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.watchers)
}

// Thumbnail returns the path to a cached JPEG preview of the memory with
// id, generating it on first request. Only available for Image memories,
// and only when the Engine was built with a ThumbnailDir.
func (e *Engine) Thumbnail(ctx context.Context, id memory.ID) (string, error) {
	if e.thumbs == nil {
		return "", fmt.Errorf("engine: no thumbnail cache configured")
	}

	m, err := e.store.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if m.Kind.Name != memory.KindImage {
		return "", fmt.Errorf("engine: memory %q is not an image (kind %q)", id, m.Kind.Name)
	}

	return e.thumbs.Generate(ctx, m.Path)
}

// FindDuplicates scans the whole index for exact content duplicates and
// embedding near-duplicates.
func (e *Engine) FindDuplicates(ctx context.Context, minSize int64) (DuplicateReport, error) {
	memories, err := e.allMemories(ctx)
	if err != nil {
		return DuplicateReport{}, err
	}

	exact, summary := duplicate.FindExact(memories, minSize)

	semantic, err := duplicate.FindSemantic(e.store)
	if err != nil {
		// A degraded vector backend shouldn't hide the exact-duplicate
		// results a caller already paid the full scan for.
		semantic = nil
	}

	return DuplicateReport{Exact: exact, Semantic: semantic, Summary: summary}, nil
}
