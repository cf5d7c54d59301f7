package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/hippo-mem/hippo/internal/duplicate"
	"github.com/hippo-mem/hippo/internal/memory"
)

// ExportVersion is the schema version stamped on every IndexExport this
// build produces. ImportIndex accepts any version <= ExportVersion.
const ExportVersion = 1

// ExportIndex snapshots the whole index -- every memory, source
// configuration, tag count, and the current semantic duplicate clusters --
// into a single round-trippable document.
func (e *Engine) ExportIndex(ctx context.Context) (*IndexExport, error) {
	memories, err := e.allMemories(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := e.store.ListSources(ctx)
	if err != nil {
		return nil, err
	}

	tagCounts, err := e.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	tags := make([]TagExport, len(tagCounts))
	for i, tc := range tagCounts {
		tags[i] = TagExport{Name: tc.Name, Count: tc.Count}
	}

	clusters, err := duplicate.FindSemantic(e.store)
	if err != nil {
		clusters = nil
	}

	return &IndexExport{
		Version:    ExportVersion,
		ExportDate: time.Now(),
		Memories:   memories,
		Sources:    sources,
		Tags:       tags,
		Clusters:   clusters,
	}, nil
}

// ImportIndex merges an IndexExport into the store. A memory whose path
// already exists is skipped (counted as DuplicatesSkipped) rather than
// overwritten, since import is meant to merge a second machine's index in,
// not clobber the local one. Per-record failures are collected into
// Errors and do not abort the import.
func (e *Engine) ImportIndex(ctx context.Context, export *IndexExport) (ImportStats, error) {
	var stats ImportStats

	if export.Version > ExportVersion {
		return stats, fmt.Errorf("engine: export version %d is newer than supported version %d", export.Version, ExportVersion)
	}

	for _, m := range export.Memories {
		existing, err := e.store.GetByPath(ctx, m.Path)
		if err == nil && existing != nil {
			stats.DuplicatesSkipped++
			continue
		}

		imported := *m
		imported.Tags = make([]memory.Tag, len(m.Tags))
		copy(imported.Tags, m.Tags)
		for i := range imported.Tags {
			if imported.Tags[i].Source != memory.TagSourceUser {
				imported.Tags[i].Source = memory.TagSourceImported
			}
		}

		if err := e.store.Upsert(ctx, &imported); err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		stats.MemoriesImported++
	}

	for _, cfg := range export.Sources {
		if err := e.store.AddSource(ctx, cfg); err != nil {
			stats.Errors = append(stats.Errors, err.Error())
			continue
		}
		stats.SourcesImported++
	}

	stats.TagsImported = len(export.Tags)
	stats.ClustersImported = len(export.Clusters)

	return stats, nil
}
