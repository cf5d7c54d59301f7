package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/memory"
)

func TestListTags_OrderedByCountDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := newTestMemory("/root/a.go")
	a.Tags = tagSet("popular", "rare")
	require.NoError(t, s.Upsert(ctx, a))

	b := newTestMemory("/root/b.go")
	b.Tags = tagSet("popular")
	require.NoError(t, s.Upsert(ctx, b))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "popular", tags[0].Name)
	assert.Equal(t, 2, tags[0].Count)
	assert.Equal(t, "rare", tags[1].Name)
	assert.Equal(t, 1, tags[1].Count)
}

func TestListTags_ZeroCountTags_Excluded(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := newTestMemory("/root/a.go")
	m.Tags = tagSet("transient")
	require.NoError(t, s.Upsert(ctx, m))
	require.NoError(t, s.Delete(ctx, m.ID))

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func tagSet(names ...string) []memory.Tag {
	tags := make([]memory.Tag, len(names))
	for i, n := range names {
		tags[i] = memory.Tag{Name: n, Source: memory.TagSourceSystem}
	}
	return tags
}
