package search

import (
	"context"
	"strings"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/store"
)

// fakeStore is an in-memory stand-in for *store.Store, implementing just
// enough of CandidateStore to exercise Engine and SuggestTags without a
// real database.
type fakeStore struct {
	memories []*memory.Memory
	tags     []store.TagCount
}

func (f *fakeStore) SearchCandidates(ctx context.Context, filter store.CandidateFilter) ([]*memory.Memory, error) {
	var out []*memory.Memory
	for _, m := range f.memories {
		if len(filter.Kinds) > 0 {
			matched := false
			for _, k := range filter.Kinds {
				if m.Kind.Name == k {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		if len(filter.IncludeTags) > 0 {
			matched := false
			for _, want := range filter.IncludeTags {
				if strings.Contains(strings.ToLower(m.TagsText()), strings.ToLower(want)) {
					matched = true
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeStore) ListTags(ctx context.Context) ([]store.TagCount, error) {
	return f.tags, nil
}
