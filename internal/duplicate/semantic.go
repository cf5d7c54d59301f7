package duplicate

import (
	"sort"

	"github.com/hippo-mem/hippo/internal/vectorindex"
)

// SemanticThreshold is the minimum pairwise cosine similarity for two
// memories to be linked into the same SemanticGroup.
const SemanticThreshold = 0.75

// MinSemanticGroupSize drops connected components smaller than this
// (a single memory with no near neighbors isn't a "duplicate").
const MinSemanticGroupSize = 2

// SemanticGroup is a connected component of memory ids whose embeddings
// are pairwise similar enough (directly or transitively through a chain
// of >= SemanticThreshold edges) to be considered near-duplicates.
type SemanticGroup struct {
	IDs []string
}

// EmbeddingSource supplies every stored embedding for a family. Satisfied
// by *store.Store (via internal/vectorindex.EmbeddingSource).
type EmbeddingSource = vectorindex.EmbeddingSource

// FindSemantic walks every vector family, clustering memories whose
// embeddings are pairwise cosine-similar above SemanticThreshold into
// connected components, reusing internal/vectorindex.CosineSearch for
// the pairwise scoring. Groups smaller than MinSemanticGroupSize are
// dropped. A family with no embeddings yields no groups for that family,
// not an error.
func FindSemantic(source EmbeddingSource) ([]SemanticGroup, error) {
	var groups []SemanticGroup
	for _, family := range vectorindex.Families {
		embeddings, err := source.GetAllEmbeddings(family)
		if err != nil {
			return nil, err
		}
		groups = append(groups, clusterByCosine(embeddings)...)
	}
	return groups, nil
}

// clusterByCosine unions every pair of ids scoring >= SemanticThreshold
// into connected components via a simple union-find, then drops
// components smaller than MinSemanticGroupSize.
func clusterByCosine(embeddings map[string][]float32) []SemanticGroup {
	if len(embeddings) < MinSemanticGroupSize {
		return nil
	}

	uf := newUnionFind()
	for id := range embeddings {
		uf.add(id)
	}

	for id, vec := range embeddings {
		neighbors := vectorindex.CosineSearch(vec, embeddings, len(embeddings))
		for _, n := range neighbors {
			if n.ID == id {
				continue
			}
			if float64(n.Score) >= SemanticThreshold {
				uf.union(id, n.ID)
			}
		}
	}

	members := make(map[string][]string)
	for id := range embeddings {
		root := uf.find(id)
		members[root] = append(members[root], id)
	}

	var groups []SemanticGroup
	for _, ids := range members {
		if len(ids) < MinSemanticGroupSize {
			continue
		}
		sort.Strings(ids)
		groups = append(groups, SemanticGroup{IDs: ids})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].IDs) != len(groups[j].IDs) {
			return len(groups[i].IDs) > len(groups[j].IDs)
		}
		return groups[i].IDs[0] < groups[j].IDs[0]
	})
	return groups
}

type unionFind struct {
	parent map[string]string
}

func newUnionFind() *unionFind {
	return &unionFind{parent: make(map[string]string)}
}

func (u *unionFind) add(id string) {
	if _, ok := u.parent[id]; !ok {
		u.parent[id] = id
	}
}

func (u *unionFind) find(id string) string {
	root := id
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[id] != root {
		u.parent[id], id = root, u.parent[id]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
