package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/store"
)

func TestSuggestTags_ExactMatchRanksFirst(t *testing.T) {
	fs := &fakeStore{tags: []store.TagCount{
		{Name: "invoices", Count: 50},
		{Name: "invoice", Count: 5},
	}}
	got, err := SuggestTags(context.Background(), fs, "invoice")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "invoice", got[0])
}

func TestSuggestTags_PrefixBeatsContains(t *testing.T) {
	fs := &fakeStore{tags: []store.TagCount{
		{Name: "contains-invoice-text", Count: 1},
		{Name: "invoice-2026", Count: 1},
	}}
	got, err := SuggestTags(context.Background(), fs, "invoice")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "invoice-2026", got[0])
}

func TestSuggestTags_WordBoundaryMatch(t *testing.T) {
	fs := &fakeStore{tags: []store.TagCount{
		{Name: "tax/invoice", Count: 3},
	}}
	got, err := SuggestTags(context.Background(), fs, "invoice")
	require.NoError(t, err)
	assert.Contains(t, got, "tax/invoice")
}

func TestSuggestTags_NoMatch_Excluded(t *testing.T) {
	fs := &fakeStore{tags: []store.TagCount{
		{Name: "receipts", Count: 10},
	}}
	got, err := SuggestTags(context.Background(), fs, "invoice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestTags_LimitsToTop10(t *testing.T) {
	var tags []store.TagCount
	for i := 0; i < 15; i++ {
		tags = append(tags, store.TagCount{Name: "invoice-variant", Count: i + 1})
	}
	fs := &fakeStore{tags: tags}
	got, err := SuggestTags(context.Background(), fs, "invoice")
	require.NoError(t, err)
	assert.Len(t, got, 10)
}
