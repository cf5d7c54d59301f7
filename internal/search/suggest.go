package search

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/hippo-mem/hippo/internal/store"
)

// TagCounter supplies every tag name and its usage count, satisfied by
// *store.Store's ListTags.
type TagCounter interface {
	ListTags(ctx context.Context) ([]store.TagCount, error)
}

// SuggestTags scores every known tag against text and returns the top 10,
// using a synonym/prefix expansion idiom with a fixed weight table:
// exact=100, prefix=80, contains=50, word-boundary=40, each plus ln(count).
func SuggestTags(ctx context.Context, tags TagCounter, text string) ([]string, error) {
	all, err := tags.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	textLower := strings.ToLower(text)
	type scored struct {
		name  string
		score float64
	}
	var candidates []scored

	for _, tc := range all {
		nameLower := strings.ToLower(tc.Name)

		var base float64
		switch {
		case nameLower == textLower:
			base = 100.0
		case strings.HasPrefix(nameLower, textLower):
			base = 80.0
		case strings.Contains(nameLower, textLower):
			base = 50.0
		case wordBoundaryMatch(nameLower, textLower):
			base = 40.0
		default:
			continue
		}

		boost := math.Log(float64(tc.Count))
		if boost < 0 {
			boost = 0
		}
		candidates = append(candidates, scored{name: tc.Name, score: base + boost})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > 10 {
		candidates = candidates[:10]
	}

	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.name
	}
	return out, nil
}

// wordBoundaryMatch reports whether any alphanumeric word of name starts
// with prefix, using the same boundary-splitting idiom as SplitCodeToken.
func wordBoundaryMatch(name, prefix string) bool {
	for _, word := range strings.FieldsFunc(name, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || 'A' <= r && r <= 'Z')
	}) {
		if strings.HasPrefix(word, prefix) {
			return true
		}
	}
	return false
}
