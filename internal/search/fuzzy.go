package search

import "github.com/hbollon/go-edlib"

// fuzzyThreshold is the minimum normalized similarity for a fuzzy match
// to count as a hit. Chosen loosely enough to catch typos and plurals
// ("recipt" / "receipt") without matching unrelated short tags.
const fuzzyThreshold = 0.75

// fuzzySimilarity computes 1 - edit_distance/max(len(a), len(b)) between a
// and b, the single-token fuzzy-matching formula used for typo-tolerant tag
// and term matching. go-edlib's Levenshtein mode already returns that
// normalized similarity.
func fuzzySimilarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0
	}
	sim, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	return float64(sim)
}
