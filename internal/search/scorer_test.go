package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hippo-mem/hippo/internal/memory"
)

func newScorerMemory(path string, tags []string) *memory.Memory {
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	m := memory.New(path, memory.NewLocalSource("/root"), memory.NewCodeKind("go", 5), now)
	for _, name := range tags {
		m.Tags = append(m.Tags, memory.Tag{Name: name, Source: memory.TagSourceSystem})
	}
	return m
}

func TestScoreCandidate_NoTextQuery_ScoresOne(t *testing.T) {
	m := newScorerMemory("/root/a.go", nil)
	score, _, ok := scoreCandidate(m, SearchQuery{}, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 1.0, score)
}

func TestScoreCandidate_NoTermMatches_Dropped(t *testing.T) {
	m := newScorerMemory("/root/a.go", nil)
	_, _, ok := scoreCandidate(m, SearchQuery{Text: "zzz"}, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestScoreCandidate_FilenameMatch_ScoresEight(t *testing.T) {
	m := newScorerMemory("/root/invoice.go", nil)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(60 * 24 * time.Hour)
	score, highlights, ok := scoreCandidate(m, SearchQuery{Text: "invoice"}, now)
	require.True(t, ok)
	assert.InDelta(t, (8.0+4.0)*1.5, score, 0.001) // 8 (contains) + 4 (prefix bonus), single term matched -> x1.5
	require.Len(t, highlights, 1)
	assert.Equal(t, "filename", highlights[0].Field)
}

func TestScoreCandidate_TagMatch_ExactBonus(t *testing.T) {
	m := newScorerMemory("/root/a.go", []string{"invoice"})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(60 * 24 * time.Hour)
	score, _, ok := scoreCandidate(m, SearchQuery{Text: "invoice"}, now)
	require.True(t, ok)
	assert.InDelta(t, (7.0+3.0)*1.5, score, 0.001) // 7 (tag contains) + 3 (exact bonus), single term -> x1.5
}

func TestScoreCandidate_AllTermsMatched_AppliesMultiplier(t *testing.T) {
	m := newScorerMemory("/root/x-invoice-receipt.go", nil)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC).Add(60 * 24 * time.Hour)
	score, _, ok := scoreCandidate(m, SearchQuery{Text: "invoice receipt"}, now)
	require.True(t, ok)
	assert.InDelta(t, (8.0+8.0)*1.5, score, 0.001)
}

func TestScoreCandidate_RecencyMultiplier_Under7Days(t *testing.T) {
	now := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	m := memory.New("/root/x.go", memory.NewLocalSource("/root"), memory.NewCodeKind("go", 1), now.Add(-2*24*time.Hour))
	score, _, ok := scoreCandidate(m, SearchQuery{}, now)
	require.True(t, ok)
	assert.InDelta(t, 1.1, score, 0.0001)
}

func TestScoreCandidate_RecencyMultiplier_Under30Days(t *testing.T) {
	now := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	m := memory.New("/root/x.go", memory.NewLocalSource("/root"), memory.NewCodeKind("go", 1), now.Add(-10*24*time.Hour))
	score, _, ok := scoreCandidate(m, SearchQuery{}, now)
	require.True(t, ok)
	assert.InDelta(t, 1.05, score, 0.0001)
}

func TestScoreCandidate_IncludeTagMissing_Dropped(t *testing.T) {
	m := newScorerMemory("/root/a.go", nil)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, _, ok := scoreCandidate(m, SearchQuery{Tags: []TagFilter{{Name: "invoice", Mode: TagFilterInclude}}}, now)
	assert.False(t, ok)
}

func TestScoreCandidate_IncludeTagPresent_AddsBoost(t *testing.T) {
	m := newScorerMemory("/root/a.go", []string{"invoice"})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	score, _, ok := scoreCandidate(m, SearchQuery{Tags: []TagFilter{{Name: "invoice", Mode: TagFilterInclude}}}, now)
	require.True(t, ok)
	assert.Equal(t, 6.0, score) // base 1.0 + 5.0 boost
}

func TestScoreCandidate_ExcludeTagPresent_Dropped(t *testing.T) {
	m := newScorerMemory("/root/a.go", []string{"spam"})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, _, ok := scoreCandidate(m, SearchQuery{Tags: []TagFilter{{Name: "spam", Mode: TagFilterExclude}}}, now)
	assert.False(t, ok)
}

func TestScoreCandidate_KindMismatch_Dropped(t *testing.T) {
	m := newScorerMemory("/root/a.go", nil)
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, _, ok := scoreCandidate(m, SearchQuery{Kinds: []memory.KindName{memory.KindImage}}, now)
	assert.False(t, ok)
}

func TestScoreCandidate_DateRange_OutsideBounds_Dropped(t *testing.T) {
	now := time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)
	m := memory.New("/root/a.go", memory.NewLocalSource("/root"), memory.NewCodeKind("go", 1), now.Add(-100*24*time.Hour))
	_, _, ok := scoreCandidate(m, SearchQuery{DateRange: &DateRange{Start: now.Add(-10 * 24 * time.Hour)}}, now)
	assert.False(t, ok)
}

func TestScoreCandidate_FuzzyTagMatch_SingleToken(t *testing.T) {
	m := newScorerMemory("/root/a.go", []string{"receipt"})
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	score, _, ok := scoreCandidate(m, SearchQuery{Text: "recipt"}, now)
	require.True(t, ok)
	assert.Greater(t, score, 0.0)
}
