package vectorindex

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"

	"github.com/hippo-mem/hippo/internal/memory"
)

// collection is one family's HNSW graph plus its string<->uint64 key
// bridge: one graph per Family rather than one graph total. Lazy
// deletion — orphaning map entries rather than calling graph.Delete —
// avoids a known coder/hnsw bug where deleting the last node corrupts
// the graph.
type collection struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	config  CollectionConfig
	idMap   map[string]uint64
	keyMap  map[uint64]string
	nextKey uint64
}

func newCollection(cfg CollectionConfig) *collection {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = cfg.M
	g.EfSearch = cfg.EfSearch
	g.Ml = 0.25
	return &collection{
		graph:  g,
		config: cfg,
		idMap:  make(map[string]uint64),
		keyMap: make(map[uint64]string),
	}
}

func (c *collection) upsert(id string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if existingKey, ok := c.idMap[id]; ok {
		delete(c.keyMap, existingKey)
		delete(c.idMap, id)
	}

	vec := make([]float32, len(vector))
	copy(vec, vector)
	normalizeInPlace(vec)

	key := c.nextKey
	c.nextKey++
	c.graph.Add(hnsw.MakeNode(key, vec))
	c.idMap[id] = key
	c.keyMap[key] = id
}

func (c *collection) search(query []float32, k int) []Result {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.graph.Len() == 0 {
		return nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	normalizeInPlace(q)

	nodes := c.graph.Search(q, k)
	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		id, ok := c.keyMap[node.Key]
		if !ok {
			continue
		}
		distance := c.graph.Distance(q, node.Value)
		results = append(results, Result{ID: id, Score: 1 - distance/2})
	}
	return results
}

func (c *collection) delete(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.idMap[id]; ok {
		delete(c.keyMap, key)
		delete(c.idMap, id)
	}
}

func (c *collection) count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.idMap)
}

// Index is the in-process vector backend: one collection per Family,
// provisioned by EnsureCollections. It never runs degraded — the embedded
// coder/hnsw graph is always available — but Upsert/Search share their
// Result shape with the cosine fallback in degraded.go so callers can use
// either without caring which one answered.
type Index struct {
	mu          sync.RWMutex
	collections map[Family]*collection
}

// NewIndex builds an empty Index. Call EnsureCollections before use.
func NewIndex() *Index {
	return &Index{collections: make(map[Family]*collection)}
}

// EnsureCollections provisions a graph for every family in configs,
// replacing any already provisioned for the same family. Call once at
// startup, before any Upsert.
func (idx *Index) EnsureCollections(configs map[Family]CollectionConfig) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for family, cfg := range configs {
		idx.collections[family] = newCollection(cfg)
	}
}

func (idx *Index) collectionFor(family Family) (*collection, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	c, ok := idx.collections[family]
	return c, ok
}

// Upsert inserts or replaces id's vector in the collection for kind. A
// vector arriving with the wrong dimension is padded with zeros or
// truncated to fit, and the mismatch is logged — never an error, a
// deliberate relaxation from rejecting the write outright on a
// dimension mismatch.
func (idx *Index) Upsert(id string, vector []float32, kind memory.KindName) error {
	family := FamilyForKind(kind)
	c, ok := idx.collectionFor(family)
	if !ok {
		return fmt.Errorf("vectorindex: collection %q not provisioned", family)
	}

	vector = fitDimension(vector, c.config.Dimensions, family, id)
	c.upsert(id, vector)
	return nil
}

// Search returns the k nearest neighbors to query within family's
// collection, cosine similarity descending.
func (idx *Index) Search(query []float32, family Family, k int) ([]Result, error) {
	c, ok := idx.collectionFor(family)
	if !ok {
		return nil, fmt.Errorf("vectorindex: collection %q not provisioned", family)
	}
	results := c.search(query, k)
	sortResults(results)
	return results, nil
}

// FindSimilar wraps Search and removes id itself from the result set.
func (idx *Index) FindSimilar(id string, vector []float32, family Family, k int) ([]Result, error) {
	results, err := idx.Search(vector, family, k+1)
	if err != nil {
		return nil, err
	}
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.ID == id {
			continue
		}
		out = append(out, r)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Delete removes id from the collection for kind.
func (idx *Index) Delete(id string, kind memory.KindName) error {
	family := FamilyForKind(kind)
	c, ok := idx.collectionFor(family)
	if !ok {
		return nil
	}
	c.delete(id)
	return nil
}

// Count returns the number of live (non-orphaned) vectors in family's
// collection.
func (idx *Index) Count(family Family) int {
	c, ok := idx.collectionFor(family)
	if !ok {
		return 0
	}
	return c.count()
}

func fitDimension(vector []float32, want int, family Family, id string) []float32 {
	if len(vector) == want {
		return vector
	}
	slog.Warn("vectorindex: vector dimension mismatch, resizing",
		slog.String("collection", string(family)),
		slog.String("id", id),
		slog.Int("want", want),
		slog.Int("got", len(vector)))

	fitted := make([]float32, want)
	copy(fitted, vector)
	return fitted
}

func normalizeInPlace(v []float32) {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	if sumSquares == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSquares))
	for i := range v {
		v[i] *= inv
	}
}

// sortResults orders by score descending, ties broken by id byte order —
// the same ordering degraded.go's cosine fallback produces, so the two
// paths are provably equivalent for identical inputs.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
}
