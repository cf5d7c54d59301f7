package search

import (
	"context"
	"sort"
	"time"

	"github.com/hippo-mem/hippo/internal/memory"
	"github.com/hippo-mem/hippo/internal/store"
	"github.com/hippo-mem/hippo/internal/vectorindex"
)

// CandidateStore is the store surface Engine reads candidates and tag
// counts from. Satisfied by *store.Store; kept narrow here so search
// doesn't depend on the full store API.
type CandidateStore interface {
	SearchCandidates(ctx context.Context, filter store.CandidateFilter) ([]*memory.Memory, error)
	ListTags(ctx context.Context) ([]store.TagCount, error)
}

// Embedder computes a query embedding for semantic augmentation. Left
// unset, Engine degrades to keyword-only ranking transparently.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// VectorSearcher answers nearest-neighbor queries against a vector
// collection. Satisfied by *vectorindex.Index.
type VectorSearcher interface {
	Search(query []float32, family vectorindex.Family, k int) ([]vectorindex.Result, error)
}

// Engine scores and ranks memories against a SearchQuery, fusing
// in-process keyword scoring with optional vector-similarity
// augmentation.
type Engine struct {
	store    CandidateStore
	embedder Embedder
	vectors  VectorSearcher
	fusion   *RRFFusion
	weights  Weights
}

// EngineOption configures an Engine at construction via the functional-
// options pattern.
type EngineOption func(*Engine)

// WithEmbedder wires a query embedder, enabling the semantic-fusion
// path. Without one, Search never attempts vector augmentation.
func WithEmbedder(e Embedder) EngineOption {
	return func(eng *Engine) { eng.embedder = e }
}

// WithVectorSearcher wires the vector backend Search queries against.
func WithVectorSearcher(v VectorSearcher) EngineOption {
	return func(eng *Engine) { eng.vectors = v }
}

// WithWeights overrides the default keyword/semantic fusion weights.
func WithWeights(w Weights) EngineOption {
	return func(eng *Engine) { eng.weights = w }
}

// WithRRFConstant overrides RRF's default k=60 smoothing constant.
func WithRRFConstant(k int) EngineOption {
	return func(eng *Engine) { eng.fusion = NewRRFFusionWithK(k) }
}

// NewEngine builds an Engine over s. Vector augmentation is disabled
// until both WithEmbedder and WithVectorSearcher are supplied.
func NewEngine(s CandidateStore, opts ...EngineOption) *Engine {
	eng := &Engine{
		store:   s,
		fusion:  NewRRFFusion(),
		weights: DefaultWeights(),
	}
	for _, opt := range opts {
		opt(eng)
	}
	return eng
}

// Search runs query through SQL-prefiltered candidate selection,
// in-process keyword scoring, optional semantic fusion, then ordering
// and pagination. Store failures are fatal; vector backend failures
// degrade to keyword-only ranking.
func (e *Engine) Search(ctx context.Context, q SearchQuery) (*Results, error) {
	candidates, err := e.store.SearchCandidates(ctx, e.candidateFilter(q))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	type scoredMemory struct {
		memory     *memory.Memory
		score      float64
		highlights []Highlight
	}
	scored := make([]scoredMemory, 0, len(candidates))
	for _, m := range candidates {
		score, highlights, ok := scoreCandidate(m, q, now)
		if !ok {
			continue
		}
		scored = append(scored, scoredMemory{memory: m, score: score, highlights: highlights})
	}

	byID := make(map[string]*scoredMemory, len(scored))
	for i := range scored {
		byID[scored[i].memory.ID.String()] = &scored[i]
	}

	keywordList := make([]keywordRanked, len(scored))
	for i, s := range scored {
		keywordList[i] = keywordRanked{ID: s.memory.ID.String(), Score: s.score}
	}
	sort.Slice(keywordList, func(i, j int) bool {
		return keywordList[i].Score > keywordList[j].Score
	})

	vecList := e.semanticCandidates(ctx, q)

	var ordered []Result
	if len(vecList) > 0 {
		fused := e.fusion.Fuse(keywordList, vecList, e.weights)
		for _, f := range fused {
			sm, ok := byID[f.ID]
			if !ok {
				continue // vector-only hit with no keyword candidate row; skip rather than fetch individually
			}
			ordered = append(ordered, Result{Memory: sm.memory, Score: f.RRFScore, Highlights: sm.highlights})
		}
	} else {
		sort.SliceStable(scored, func(i, j int) bool {
			if scored[i].score != scored[j].score {
				return scored[i].score > scored[j].score
			}
			return scored[i].memory.ModifiedAt.After(scored[j].memory.ModifiedAt)
		})
		for _, s := range scored {
			ordered = append(ordered, Result{Memory: s.memory, Score: s.score, Highlights: s.highlights})
		}
	}

	total := len(ordered)
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultResultLimit
	}
	offset := q.Offset
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := ordered[offset:end]

	var suggested []string
	if q.Text != "" {
		suggested, err = SuggestTags(ctx, e.store, q.Text)
		if err != nil {
			return nil, err
		}
	}

	return &Results{Results: page, TotalCount: total, SuggestedTags: suggested}, nil
}

// candidateFilter derives the SQL-expressible prefilter from q: include
// tags, kind equality, and the candidate row cap.
func (e *Engine) candidateFilter(q SearchQuery) store.CandidateFilter {
	var include []string
	for _, tf := range q.Tags {
		if tf.Mode == TagFilterInclude {
			include = append(include, tf.Name)
		}
	}
	return store.CandidateFilter{
		IncludeTags: include,
		Kinds:       q.Kinds,
		Limit:       DefaultCandidateLimit,
	}
}

// semanticCandidates embeds q.Text and searches every vector family,
// merging results by best score. Returns nil when no embedder/vector
// backend is wired, when the query has no text, or when embedding
// fails -- all degrade to keyword-only ranking rather than failing the
// search.
func (e *Engine) semanticCandidates(ctx context.Context, q SearchQuery) []vecRanked {
	if e.embedder == nil || e.vectors == nil || q.Text == "" {
		return nil
	}
	vector, err := e.embedder.Embed(ctx, q.Text)
	if err != nil {
		return nil
	}

	best := make(map[string]float64)
	for _, family := range vectorindex.Families {
		results, err := e.vectors.Search(vector, family, DefaultCandidateLimit)
		if err != nil {
			continue
		}
		for _, r := range results {
			score := float64(r.Score)
			if prev, ok := best[r.ID]; !ok || score > prev {
				best[r.ID] = score
			}
		}
	}
	if len(best) == 0 {
		return nil
	}

	out := make([]vecRanked, 0, len(best))
	for id, score := range best {
		out = append(out, vecRanked{ID: id, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}
