package pipeline

import (
	"context"

	"github.com/hippo-mem/hippo/internal/memory"
)

// Store is the persistence surface the pipeline writes through. It is
// satisfied by *store.Store; kept as a narrow interface here so pipeline
// doesn't import the concrete store package.
type Store interface {
	memoryLookup
	Upsert(ctx context.Context, m *memory.Memory) error
}

// Embedder generates a vector embedding for a Memory's text
// representation. hippo never implements its own embedding model; this
// interface is the seam a caller wires to whatever external provider it
// configures. Failures are non-fatal to indexing: a memory with no
// embedding remains searchable by keyword.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
	ModelName() string
}

// EmbeddingSink receives a computed embedding for storage. *store.Store
// satisfies this for the local fallback table; a wired vectorindex.Index
// (adapted to this shape) would serve the external-backend path.
type EmbeddingSink interface {
	StoreEmbedding(ctx context.Context, memoryID string, kind string, vector []float32, model string) error
}

// Options configures a pipeline Run.
type Options struct {
	// BatchSize is the number of paths processed per batch. Default 100.
	BatchSize int
	// Workers is the fixed worker-pool size for batch processing.
	// Default min(runtime.NumCPU(), 8).
	Workers int
	// HashSizeLimit is the file size above which hashing is skipped.
	HashSizeLimit int64
	// Embedder is optional; nil disables the embed step entirely.
	Embedder Embedder
	// EmbeddingSink is optional; nil disables the embed step entirely.
	EmbeddingSink EmbeddingSink

	// ExcludePatterns are gitignore-syntax patterns; a path matching one
	// is skipped during the walk, per the Source's SourceConfig.
	ExcludePatterns []string
	// IncludePatterns, if non-empty, restrict indexing to paths matching
	// at least one glob pattern, per the Source's SourceConfig.
	IncludePatterns []string
}

// DefaultBatchSize is the walk batch size used when Options.BatchSize is
// unset.
const DefaultBatchSize = 100

// DefaultHashSizeLimit is the hashing cutoff used when
// Options.HashSizeLimit is unset.
const DefaultHashSizeLimit = 500 * 1024 * 1024

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers()
	}
	if o.HashSizeLimit <= 0 {
		o.HashSizeLimit = DefaultHashSizeLimit
	}
	return o
}
