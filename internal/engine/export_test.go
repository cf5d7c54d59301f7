package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/memory"
)

func TestEngine_ExportImportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")

	e := newTestEngine(t)
	require.NoError(t, e.AddSource(context.Background(), memory.NewLocalSource(dir)))

	export, err := e.ExportIndex(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ExportVersion, export.Version)
	require.Len(t, export.Memories, 1)
	require.Len(t, export.Sources, 1)

	target := newTestEngine(t)
	stats, err := target.ImportIndex(context.Background(), export)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MemoriesImported)
	assert.Equal(t, 1, stats.SourcesImported)
	assert.Zero(t, stats.DuplicatesSkipped)

	results, err := target.Search(context.Background(), "a.go")
	require.NoError(t, err)
	assert.NotEmpty(t, results.Results)
}

func TestEngine_ImportIndex_SkipsExistingPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")

	e := newTestEngine(t)
	require.NoError(t, e.AddSource(context.Background(), memory.NewLocalSource(dir)))
	export, err := e.ExportIndex(context.Background())
	require.NoError(t, err)

	stats, err := e.ImportIndex(context.Background(), export)
	require.NoError(t, err)
	assert.Zero(t, stats.MemoriesImported)
	assert.Equal(t, 1, stats.DuplicatesSkipped)
}

func TestEngine_ImportIndex_MarksNonUserTagsAsImported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.go"), "package a")

	e := newTestEngine(t)
	require.NoError(t, e.AddSource(context.Background(), memory.NewLocalSource(dir)))
	export, err := e.ExportIndex(context.Background())
	require.NoError(t, err)

	target := newTestEngine(t)
	_, err = target.ImportIndex(context.Background(), export)
	require.NoError(t, err)

	results, err := target.Search(context.Background(), "a.go")
	require.NoError(t, err)
	require.NotEmpty(t, results.Results)
	m := results.Results[0].Memory
	for _, tag := range m.Tags {
		assert.Equal(t, memory.TagSourceImported, tag.Source)
	}
}
