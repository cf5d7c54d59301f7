package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	hippoerrors "github.com/hippo-mem/hippo/internal/errors"
	"github.com/hippo-mem/hippo/internal/extract"
	"github.com/hippo-mem/hippo/internal/gitignore"
	"github.com/hippo-mem/hippo/internal/hash"
	"github.com/hippo-mem/hippo/internal/memory"
)

// maxWorkers caps the default worker pool size at min(CPU count, 8).
const maxWorkers = 8

func defaultWorkers() int {
	n := runtime.NumCPU()
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

// Pipeline runs the walk → batch → process → write → embed flow for one
// Source: a walker goroutine feeds paths over a channel, and each batch is
// processed by an errgroup-bounded worker pool.
type Pipeline struct {
	store    Store
	registry *extract.Registry
	opts     Options
	excludes *gitignore.Matcher
}

// New builds a Pipeline writing to store, using the default Extractor
// Registry. opts.ExcludePatterns, if any, are compiled into a
// gitignore.Matcher, the same pattern language the watcher uses for its
// own ignore filtering.
func New(store Store, opts Options) *Pipeline {
	opts = opts.withDefaults()

	var excludes *gitignore.Matcher
	if len(opts.ExcludePatterns) > 0 {
		excludes = gitignore.New()
		for _, pattern := range opts.ExcludePatterns {
			excludes.AddPattern(pattern)
		}
	}

	return &Pipeline{store: store, registry: extract.NewRegistry(), opts: opts, excludes: excludes}
}

// skip reports whether path should be excluded from indexing per the
// configured Exclude/IncludePatterns.
func (p *Pipeline) skip(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}

	if p.excludes != nil && p.excludes.Match(rel, false) {
		return true
	}

	if len(p.opts.IncludePatterns) == 0 {
		return false
	}
	for _, pattern := range p.opts.IncludePatterns {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

// Run walks source.Root, processes every recognized file in batches of
// opts.BatchSize using opts.Workers concurrent workers, and upserts each
// resulting Memory into the store. It returns once the walk completes and
// every batch has been processed, or ctx is canceled at a batch boundary.
// Per-file failures do not abort the run; only cancellation of ctx, seen
// at a batch boundary or during the walk, is returned.
func (p *Pipeline) Run(ctx context.Context, source memory.Source, progress *Progress) error {
	if source.Kind != memory.SourceLocal {
		return nil
	}

	paths := make(chan string, p.opts.Workers*10)
	walkErrCh := make(chan error, 1)
	go func() {
		defer close(paths)
		walkErrCh <- walk(ctx, source.Root, paths)
	}()

	scanned := 0
	batch := make([]string, 0, p.opts.BatchSize)
	for path := range paths {
		if p.skip(source.Root, path) {
			continue
		}
		batch = append(batch, path)
		scanned++
		if progress != nil {
			progress.SetScanned(scanned)
		}
		if len(batch) >= p.opts.BatchSize {
			if err := p.processBatch(ctx, batch, source, progress); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := p.processBatch(ctx, batch, source, progress); err != nil {
			return err
		}
	}

	if err := <-walkErrCh; err != nil {
		return hippoerrors.IndexingError("failed to walk source root", err).WithDetail("root", source.Root)
	}
	return nil
}

// processBatch runs the batch's files through processFile concurrently,
// bounded by opts.Workers, with cooperative cancellation at batch
// boundaries.
func (p *Pipeline) processBatch(ctx context.Context, batch []string, source memory.Source, progress *Progress) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for _, path := range batch {
		path := path
		g.Go(func() error {
			now := time.Now()
			failed := p.processFile(gctx, path, source, now)
			if progress != nil {
				progress.MarkProcessed(path, now, failed)
			}
			return nil
		})
	}

	return g.Wait()
}

// processFile classifies, hashes, and extracts metadata for a single
// path, then writes the resulting Memory and hands it off for embedding.
// It always returns whether the file's processing hit any failure, for
// progress/error-counting purposes only — it never returns a Go error
// itself, since per-file failures must not abort the batch.
func (p *Pipeline) processFile(ctx context.Context, path string, source memory.Source, now time.Time) bool {
	failed := false

	kind := classify(path)
	fresh := memory.New(path, source, kind, now)

	meta, err := p.registry.Dispatch(ctx, path, kind)
	if err != nil {
		slog.Warn("extractor failed, keeping partial metadata", slog.String("path", path), slog.String("error", err.Error()))
		failed = true
	}
	fresh.Metadata = meta
	copyKindAttrsFromMetadata(&fresh.Kind, &fresh.Metadata)

	info, statErr := os.Stat(path)
	if statErr != nil {
		fresh.CreatedAt, fresh.ModifiedAt = now, now
		failed = true
	} else {
		fresh.ModifiedAt = info.ModTime()
		fresh.CreatedAt = createdAt(info, now)
		size := info.Size()
		fresh.Metadata.FileSize = &size
	}

	mimeType := mimeTypeFor(fresh.Extension())
	if mimeType != "" {
		fresh.Metadata.MimeType = &mimeType
	}

	if info != nil && info.Size() < p.opts.HashSizeLimit {
		if digest, ok, hashErr := hash.File(path); hashErr == nil && ok {
			fresh.Metadata.Hash = &digest
		} else if hashErr != nil {
			failed = true
		}
	}

	fresh.AddTag(memory.Tag{Name: "type:" + string(kind.Name), Source: memory.TagSourceSystem})
	if folder := fresh.Folder(); folder != "" {
		fresh.AddTag(memory.Tag{Name: "folder:" + folder, Source: memory.TagSourceSystem})
	}

	resolved, err := resolve(ctx, p.store, fresh, now)
	if err != nil {
		slog.Warn("failed to resolve existing memory for re-index merge", slog.String("path", path), slog.String("error", err.Error()))
		resolved = fresh
		failed = true
	}

	if err := p.store.Upsert(ctx, resolved); err != nil {
		slog.Warn("failed to upsert memory, skipping", slog.String("path", path), slog.String("error", err.Error()))
		return true
	}

	p.embed(ctx, resolved)

	return failed
}

// embed is a best-effort, non-fatal hand-off to the configured Embedder.
// A memory with no stored embedding remains searchable by keyword alone.
func (p *Pipeline) embed(ctx context.Context, m *memory.Memory) {
	if p.opts.Embedder == nil || p.opts.EmbeddingSink == nil {
		return
	}

	text := embeddingText(m)
	if text == "" {
		return
	}

	vector, err := p.opts.Embedder.Embed(ctx, text)
	if err != nil {
		slog.Warn("embedder failed, memory remains keyword-searchable", slog.String("path", m.Path), slog.String("error", err.Error()))
		return
	}

	if err := p.opts.EmbeddingSink.StoreEmbedding(ctx, string(m.ID), string(m.Kind.Name), vector, p.opts.Embedder.ModelName()); err != nil {
		slog.Warn("failed to store embedding", slog.String("path", m.Path), slog.String("error", err.Error()))
	}
}

// embeddingText builds the text an Embedder summarizes, favoring the
// richest signal available: title, then description, then the tags
// followed by the filename.
func embeddingText(m *memory.Memory) string {
	if m.Metadata.Title != nil && *m.Metadata.Title != "" {
		return *m.Metadata.Title
	}
	if m.Metadata.Description != nil && *m.Metadata.Description != "" {
		return *m.Metadata.Description
	}
	return m.TagsText() + " " + m.Filename()
}

// createdAt prefers a filesystem-reported creation time if the platform's
// os.FileInfo happened to surface one; Go's stdlib doesn't expose this
// portably, so this always falls back to ModTime, matching what every
// platform's os.Stat actually guarantees.
func createdAt(info os.FileInfo, now time.Time) time.Time {
	if info == nil {
		return now
	}
	return info.ModTime()
}

// copyKindAttrsFromMetadata copies the extractor's raw probe results onto
// Kind's duplicated fields (Kind.Video.DurationMs <- Metadata.Video.DurationMs,
// Kind.Code.Lines <- Metadata.Code.Lines), per the fields' own doc
// comments in internal/memory/metadata.go.
func copyKindAttrsFromMetadata(kind *memory.Kind, meta *memory.Metadata) {
	switch kind.Name {
	case memory.KindVideo:
		if meta.Video != nil && kind.Video != nil {
			kind.Video.DurationMs = meta.Video.DurationMs
		}
	case memory.KindAudio:
		if meta.Audio != nil && kind.Audio != nil {
			kind.Audio.DurationMs = meta.Audio.DurationMs
		}
	case memory.KindCode:
		if meta.Code != nil && kind.Code != nil {
			kind.Code.Lines = meta.Code.Lines
		}
	}
}
