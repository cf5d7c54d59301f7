package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/memory"
)

func newTestMemory(path string) *memory.Memory {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := memory.New(path, memory.NewLocalSource("/root"), memory.NewCodeKind("go", 10), now)
	m.Tags = []memory.Tag{{Name: "system-tag", Source: memory.TagSourceSystem}}
	return m
}

func TestUpsert_ThenGetByID_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")

	require.NoError(t, s.Upsert(ctx, m))

	got, err := s.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Path, got.Path)
	assert.Equal(t, m.Kind.Name, got.Kind.Name)
	assert.Len(t, got.Tags, 1)
}

func TestGetByPath_UnknownPath_ReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetByPath(context.Background(), "/nope")
	assert.Error(t, err)
}

func TestUpsert_SamePath_ReplacesRowAndKeepsPathUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")
	require.NoError(t, s.Upsert(ctx, m))

	m2 := newTestMemory("/root/a.go")
	m2.ID = m.ID
	m2.Tags = []memory.Tag{{Name: "renamed", Source: memory.TagSourceSystem}}
	require.NoError(t, s.Upsert(ctx, m2))

	got, err := s.GetByPath(ctx, "/root/a.go")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Tags[0].Name)
}

func TestFindByPathPrefix_ReturnsMatchingMemories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, newTestMemory("/root/sub/a.go")))
	require.NoError(t, s.Upsert(ctx, newTestMemory("/root/sub/b.go")))
	require.NoError(t, s.Upsert(ctx, newTestMemory("/root/other/c.go")))

	got, err := s.FindByPathPrefix(ctx, "/root/sub/")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDelete_RemovesMemoryAndTagCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")
	require.NoError(t, s.Upsert(ctx, m))

	require.NoError(t, s.Delete(ctx, m.ID))

	_, err := s.GetByID(ctx, m.ID)
	assert.Error(t, err)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestDelete_AlsoDeletesEmbeddingRow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")
	require.NoError(t, s.Upsert(ctx, m))
	require.NoError(t, s.StoreEmbedding(ctx, string(m.ID), string(m.Kind.Name), []float32{1, 2, 3}, "test-model"))

	require.NoError(t, s.Delete(ctx, m.ID))

	_, err := s.GetEmbedding(ctx, string(m.ID))
	assert.Error(t, err)
}

func TestDeleteByPathPrefix_RemovesAllMatching(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, newTestMemory("/root/sub/a.go")))
	require.NoError(t, s.Upsert(ctx, newTestMemory("/root/sub/b.go")))

	require.NoError(t, s.DeleteByPathPrefix(ctx, "/root/sub/"))

	got, err := s.FindByPathPrefix(ctx, "/root/sub/")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestToggleFavorite_FlipsState(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")
	require.NoError(t, s.Upsert(ctx, m))

	fav, err := s.ToggleFavorite(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, fav)

	fav, err = s.ToggleFavorite(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, fav)
}

func TestToggleFavorite_UnknownID_ReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.ToggleFavorite(context.Background(), memory.NewID())
	assert.Error(t, err)
}

func TestUpsert_TagChange_UpdatesTagCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	m := newTestMemory("/root/a.go")
	m.Tags = []memory.Tag{{Name: "keep", Source: memory.TagSourceSystem}, {Name: "drop", Source: memory.TagSourceSystem}}
	require.NoError(t, s.Upsert(ctx, m))

	m.Tags = []memory.Tag{{Name: "keep", Source: memory.TagSourceSystem}, {Name: "added", Source: memory.TagSourceSystem}}
	require.NoError(t, s.Upsert(ctx, m))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	names := map[string]int{}
	for _, tc := range tags {
		names[tc.Name] = tc.Count
	}
	assert.Equal(t, 1, names["keep"])
	assert.Equal(t, 1, names["added"])
	assert.Equal(t, 0, names["drop"])
}
