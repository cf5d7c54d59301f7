// Package engine is the facade that wires storage, indexing, search,
// duplicate detection, and filesystem watching into the single surface
// every caller (the CLI, a test) drives hippo through. Everything runs
// in-process; nothing here requires a socket boundary.
package engine

import (
	"time"

	"github.com/hippo-mem/hippo/internal/duplicate"
	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/search"
)

// Stats summarizes the index's current contents.
type Stats struct {
	TotalMemories int
	ByKind        map[memory.KindName]int
	TotalTags     int
	FavoriteCount int
	Sources       int
}

// WatcherStatus reports one active watch.
type WatcherStatus struct {
	Source memory.Source
	Path   string
}

// DuplicateReport is the result of FindDuplicates: exact hash-matched
// groups plus the near-duplicate clusters embedding similarity surfaced.
type DuplicateReport struct {
	Exact    []duplicate.Group
	Semantic []duplicate.SemanticGroup
	Summary  duplicate.Summary
}

// IndexExport is the full round-trippable snapshot produced by
// ExportIndex and consumed by ImportIndex.
type IndexExport struct {
	Version    int                    `json:"version"`
	ExportDate time.Time              `json:"export_date"`
	Memories   []*memory.Memory       `json:"memories"`
	Sources    []memory.SourceConfig  `json:"sources"`
	Tags       []TagExport            `json:"tags"`
	Clusters   []duplicate.SemanticGroup `json:"clusters,omitempty"`
}

// TagExport is one row of the denormalized tag count table. ImportIndex
// does not write these rows; the target's counts follow from the tags on
// the memories it imports.
type TagExport struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ImportStats tallies what an ImportIndex call did. TagsImported and
// ClustersImported are the counts of tag rows and clusters in the export;
// nothing is written to the store for either.
type ImportStats struct {
	MemoriesImported int      `json:"memories_imported"`
	TagsImported     int      `json:"tags_imported"`
	SourcesImported  int      `json:"sources_imported"`
	ClustersImported int      `json:"clusters_imported"`
	DuplicatesSkipped int     `json:"duplicates_skipped"`
	Errors           []string `json:"errors,omitempty"`
}

// SearchSummary is the plain-text search entry point's result, a thin
// wrapper the caller can format without reaching into search.Results.
type SearchSummary = search.Results
