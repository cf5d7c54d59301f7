// Package duplicate groups Memories that are exact content duplicates
// (same hash) or near-duplicates (high embedding similarity), ported
// from original_source/hippo-core/src/duplicates/mod.rs's
// find_duplicates and its wasted-space accounting.
package duplicate

import (
	"sort"

	"github.com/hippo-mem/hippo/internal/memory"
)

// Group is a set of memories sharing the same content hash. The first
// entry by Path is treated as the original; the rest are duplicates.
type Group struct {
	Hash  string
	Size  int64
	Paths []string
	IDs   []memory.ID
}

// DuplicateCount is the number of memories in the group beyond the
// first (the "original").
func (g Group) DuplicateCount() int {
	if len(g.IDs) == 0 {
		return 0
	}
	return len(g.IDs) - 1
}

// WastedBytes is the storage spent on duplicate copies:
// DuplicateCount * Size.
func (g Group) WastedBytes() int64 {
	return int64(g.DuplicateCount()) * g.Size
}

// Summary totals a duplicate scan.
type Summary struct {
	FilesScanned   int
	DuplicateGroups int
	TotalDuplicates int
	WastedBytes     int64
}

// FindExact groups memories by Metadata.Hash, keeping only hashes shared
// by more than one memory, excluding files smaller than minSize. Groups
// are ordered by WastedBytes descending.
func FindExact(memories []*memory.Memory, minSize int64) ([]Group, Summary) {
	summary := Summary{FilesScanned: len(memories)}

	byHash := make(map[string][]*memory.Memory)
	for _, m := range memories {
		if m.Metadata.Hash == nil || m.Metadata.FileSize == nil {
			continue
		}
		if *m.Metadata.FileSize < minSize {
			continue
		}
		byHash[*m.Metadata.Hash] = append(byHash[*m.Metadata.Hash], m)
	}

	var groups []Group
	for hash, members := range byHash {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Path < members[j].Path })

		g := Group{Hash: hash, Size: *members[0].Metadata.FileSize}
		for _, m := range members {
			g.Paths = append(g.Paths, m.Path)
			g.IDs = append(g.IDs, m.ID)
		}
		summary.TotalDuplicates += g.DuplicateCount()
		summary.WastedBytes += g.WastedBytes()
		groups = append(groups, g)
	}
	summary.DuplicateGroups = len(groups)

	sort.Slice(groups, func(i, j int) bool {
		if groups[i].WastedBytes() != groups[j].WastedBytes() {
			return groups[i].WastedBytes() > groups[j].WastedBytes()
		}
		return groups[i].Hash < groups[j].Hash
	})

	return groups, summary
}
