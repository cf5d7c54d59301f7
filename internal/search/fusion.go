package search

import "sort"

// DefaultRRFConstant is the standard RRF smoothing parameter. k=60 is
// empirically validated across domains (used by Azure AI Search,
// OpenSearch, etc.).
const DefaultRRFConstant = 60

// FusedResult is one memory id after RRF fusion of a keyword-ranked list
// and a semantic-ranked list.
type FusedResult struct {
	ID           string
	RRFScore     float64
	KeywordScore float64
	KeywordRank  int // 1-indexed, 0 if absent from the keyword list
	VecScore     float64
	VecRank      int // 1-indexed, 0 if absent from the vector list
	InBothLists  bool
}

// RRFFusion combines a keyword-ranked and a vector-ranked result list
// using Reciprocal Rank Fusion, generalized from the chunk-search
// engine's BM25+Semantic fusion to a Keyword+Semantic one: RRF's
// rank-reciprocal formula is already a weighted sum over rank position,
// so only the field names and default weights changed.
//
// Algorithm: RRF_score(d) = Σ weight_i / (k + rank_i)
type RRFFusion struct {
	K int
}

// NewRRFFusion creates a new RRF fusion instance with default k=60.
func NewRRFFusion() *RRFFusion {
	return &RRFFusion{K: DefaultRRFConstant}
}

// NewRRFFusionWithK creates a new RRF fusion with custom k value. If k <=
// 0, defaults to 60.
func NewRRFFusionWithK(k int) *RRFFusion {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRFFusion{K: k}
}

// keywordRanked and vecRanked are the minimal shapes Fuse needs from each
// source list, so callers can feed it either scorer output or
// vectorindex.Result directly.
type keywordRanked struct {
	ID    string
	Score float64
}

type vecRanked struct {
	ID    string
	Score float64
}

// Fuse combines keyword and vector results using Reciprocal Rank Fusion.
//
// Documents appearing in only one list use missing_rank = max(len(kw),
// len(vec)) + 1 for the missing source's contribution.
//
// Results are sorted by: RRFScore (desc) → InBothLists (true first) →
// KeywordScore (desc) → ID (asc).
func (f *RRFFusion) Fuse(keyword []keywordRanked, vec []vecRanked, weights Weights) []*FusedResult {
	if len(keyword) == 0 && len(vec) == 0 {
		return []*FusedResult{}
	}

	capacity := len(keyword) + len(vec)
	scores := make(map[string]*FusedResult, capacity)

	for rank, r := range keyword {
		result := f.getOrCreate(scores, r.ID)
		result.KeywordScore = r.Score
		result.KeywordRank = rank + 1
		result.RRFScore += weights.Keyword / float64(f.K+rank+1)
	}

	for rank, r := range vec {
		result := f.getOrCreate(scores, r.ID)
		result.VecScore = r.Score
		result.VecRank = rank + 1
		result.RRFScore += weights.Semantic / float64(f.K+rank+1)

		if result.KeywordRank > 0 {
			result.InBothLists = true
		}
	}

	missingRank := f.calculateMissingRank(len(keyword), len(vec))
	for _, r := range scores {
		if r.KeywordRank == 0 && r.VecRank > 0 {
			r.RRFScore += weights.Keyword / float64(f.K+missingRank)
		}
		if r.VecRank == 0 && r.KeywordRank > 0 {
			r.RRFScore += weights.Semantic / float64(f.K+missingRank)
		}
	}

	results := f.toSortedSlice(scores)
	f.normalize(results)
	return results
}

func (f *RRFFusion) getOrCreate(m map[string]*FusedResult, id string) *FusedResult {
	if r, ok := m[id]; ok {
		return r
	}
	r := &FusedResult{ID: id}
	m[id] = r
	return r
}

// calculateMissingRank returns rank for documents not in a list. Uses
// max(len1, len2) + 1 to penalize missing documents appropriately.
func (f *RRFFusion) calculateMissingRank(kwLen, vecLen int) int {
	if kwLen > vecLen {
		return kwLen + 1
	}
	return vecLen + 1
}

func (f *RRFFusion) toSortedSlice(m map[string]*FusedResult) []*FusedResult {
	results := make([]*FusedResult, 0, len(m))
	for _, r := range m {
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool {
		return f.compare(results[i], results[j])
	})
	return results
}

// compare implements deterministic comparison for sorting. Returns true
// if a should rank before b.
func (f *RRFFusion) compare(a, b *FusedResult) bool {
	if a.RRFScore != b.RRFScore {
		return a.RRFScore > b.RRFScore
	}
	if a.InBothLists != b.InBothLists {
		return a.InBothLists
	}
	if a.KeywordScore != b.KeywordScore {
		return a.KeywordScore > b.KeywordScore
	}
	return a.ID < b.ID
}

// normalize scales all RRF scores to 0-1 range, using the maximum score
// as the reference (becomes 1.0).
func (f *RRFFusion) normalize(results []*FusedResult) {
	if len(results) == 0 {
		return
	}
	maxScore := results[0].RRFScore
	if maxScore == 0 {
		return
	}
	for _, r := range results {
		r.RRFScore /= maxScore
	}
}
