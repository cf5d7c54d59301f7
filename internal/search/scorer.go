package search

import (
	"strings"
	"time"

	"github.com/hippo-mem/hippo/internal/memory"
)

// scoreCandidate implements the keyword scoring table: title,
// filename, path, tag, and extension matches at fixed additive weights,
// an all-terms-matched multiplier, tag include/exclude filtering, and a
// recency multiplier. Returns ok=false when the candidate should be
// dropped (a text query where no term matched, an excluded tag present,
// a required tag missing, a kind mismatch, or outside DateRange).
func scoreCandidate(m *memory.Memory, q SearchQuery, now time.Time) (score float64, highlights []Highlight, ok bool) {
	if q.Text == "" {
		score = 1.0
	} else {
		terms := strings.Fields(strings.ToLower(q.Text))
		if len(terms) == 0 {
			score = 1.0
		} else {
			matched := 0
			filename := strings.ToLower(m.Filename())
			path := strings.ToLower(m.Path)
			ext := m.Extension()
			var title string
			hasTitle := m.Metadata.Title != nil
			if hasTitle {
				title = strings.ToLower(*m.Metadata.Title)
			}

			for _, term := range terms {
				termMatched := false

				if hasTitle && strings.Contains(title, term) {
					score += 10.0
					termMatched = true
					if title == term || strings.HasPrefix(title, term+" ") {
						score += 5.0
					}
					highlights = append(highlights, Highlight{Field: "title", Snippet: *m.Metadata.Title})
				}

				if strings.Contains(filename, term) {
					score += 8.0
					termMatched = true
					if strings.HasPrefix(filename, term) {
						score += 4.0
					}
					highlights = append(highlights, Highlight{Field: "filename", Snippet: m.Filename()})
				}

				if strings.Contains(path, term) && !strings.Contains(filename, term) {
					score += 3.0
					termMatched = true
				}

				tagHit := false
				for _, tag := range m.Tags {
					tagLower := strings.ToLower(tag.Name)
					if strings.Contains(tagLower, term) {
						score += 7.0
						termMatched = true
						tagHit = true
						highlights = append(highlights, Highlight{Field: "tag", Snippet: tag.Name})
						if tagLower == term {
							score += 3.0
						}
					}
				}
				// Single-token queries additionally try Levenshtein fuzzy
				// matching against tags as an alternative keyword signal,
				// catching typos a substring match misses.
				if !tagHit && len(terms) == 1 {
					for _, tag := range m.Tags {
						sim := fuzzySimilarity(strings.ToLower(tag.Name), term)
						if sim >= fuzzyThreshold {
							score += 7.0 * sim
							termMatched = true
							highlights = append(highlights, Highlight{Field: "tag", Snippet: tag.Name})
							break
						}
					}
				}

				if ext != "" && strings.Contains(ext, term) {
					score += 2.0
					termMatched = true
				}

				if termMatched {
					matched++
				}
			}

			if matched == 0 {
				return 0, nil, false
			}
			if matched == len(terms) {
				score *= 1.5
			}
		}
	}

	for _, tf := range q.Tags {
		has := hasTagFold(m, tf.Name)
		switch tf.Mode {
		case TagFilterInclude:
			if !has {
				return 0, nil, false
			}
			score += 5.0
		case TagFilterExclude:
			if has {
				return 0, nil, false
			}
		}
	}

	if len(q.Kinds) > 0 {
		matchesKind := false
		for _, k := range q.Kinds {
			if m.Kind.Name == k {
				matchesKind = true
				break
			}
		}
		if !matchesKind {
			return 0, nil, false
		}
	}

	if q.DateRange != nil {
		if !q.DateRange.Start.IsZero() && m.ModifiedAt.Before(q.DateRange.Start) {
			return 0, nil, false
		}
		if !q.DateRange.End.IsZero() && m.ModifiedAt.After(q.DateRange.End) {
			return 0, nil, false
		}
	}

	age := now.Sub(m.ModifiedAt)
	switch {
	case age < 7*24*time.Hour:
		score *= 1.1
	case age < 30*24*time.Hour:
		score *= 1.05
	}

	return score, highlights, true
}

// hasTagFold reports whether m carries a tag named name, ignoring case.
// The SQL candidate prefilter (internal/store/candidates.go) lowercases
// tags for its tags_text LIKE match, so the in-process filter has to
// agree or it silently drops candidates the prefilter already accepted.
func hasTagFold(m *memory.Memory, name string) bool {
	for _, t := range m.Tags {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}
