// Package search ranks memories against a SearchQuery by combining an
// in-process keyword score with an optional vector-similarity score,
// fused by Reciprocal Rank Fusion.
package search

import (
	"time"

	"github.com/hippo-mem/hippo/internal/memory"
)

// TagFilterMode discriminates whether a TagFilter must be present
// (Include) or must be absent (Exclude) on a candidate.
type TagFilterMode string

const (
	TagFilterInclude TagFilterMode = "include"
	TagFilterExclude TagFilterMode = "exclude"
)

// TagFilter pins one tag name to an inclusion or exclusion requirement.
type TagFilter struct {
	Name string
	Mode TagFilterMode
}

// DateRange bounds candidates by ModifiedAt. Either bound may be zero to
// leave that side unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SearchQuery is the input to Engine.Search, matching the shape of
// `SearchQuery{text?, tags[], sources[], kinds[], date_range?, location?,
// sort, limit, offset}`.
type SearchQuery struct {
	Text      string
	Tags      []TagFilter
	Sources   []memory.Source
	Kinds     []memory.KindName
	DateRange *DateRange

	// Limit caps the number of results returned after ordering. 0 means
	// the default of 500.
	Limit int
	// Offset skips this many ordered results before applying Limit.
	Offset int
}

// Highlight marks a field that contributed to a result's score, for
// displaying why a memory matched.
type Highlight struct {
	Field   string
	Snippet string
}

// Result is one scored memory in a SearchResults response.
type Result struct {
	Memory     *memory.Memory
	Score      float64
	Highlights []Highlight
}

// Results is the full response of a search call.
type Results struct {
	Results       []Result
	TotalCount    int
	SuggestedTags []string
}

// Weights configures the relative importance of keyword vs semantic
// search in fusion. Generalized from the chunk-search engine's
// BM25/Semantic split: Keyword plays the role BM25 used to.
type Weights struct {
	Keyword  float64
	Semantic float64
}

// DefaultWeights returns the default keyword/semantic split used when a
// caller does not override it: 0.3 keyword, 0.7 semantic.
func DefaultWeights() Weights {
	return Weights{Keyword: 0.3, Semantic: 0.7}
}

// DefaultResultLimit is applied when a SearchQuery sets no Limit.
const DefaultResultLimit = 500

// DefaultCandidateLimit bounds how many memories are pulled from the
// store before in-process scoring, independent of the final result
// Limit.
const DefaultCandidateLimit = 5000
