package memory

// TagSource records who or what attached a tag to a memory.
type TagSource string

const (
	// TagSourceUser is a tag the user attached by hand. User tags survive
	// re-indexing verbatim, never replaced by freshly computed tags.
	TagSourceUser TagSource = "user"
	// TagSourceAI is a tag produced by an AI model, carrying a confidence score.
	TagSourceAI TagSource = "ai"
	// TagSourceSystem is a tag derived deterministically during extraction
	// (e.g. from EXIF data or a file's kind).
	TagSourceSystem TagSource = "system"
	// TagSourceImported is a tag carried over from an import_index bundle.
	TagSourceImported TagSource = "imported"
)

// AITagInfo carries the fields that apply only to AI-sourced tags. Keeping
// this as its own type, rather than a Confidence field on Tag itself, keeps
// "AI tag with no confidence" and "non-AI tag with a confidence" both
// unrepresentable.
type AITagInfo struct {
	// Confidence is in [0, 100].
	Confidence float64 `json:"confidence"`
}

// Tag is a single label on a Memory, with provenance. AI is non-nil only
// when Source is TagSourceAI.
type Tag struct {
	Name   string     `json:"name"`
	Source TagSource  `json:"source"`
	AI     *AITagInfo `json:"ai,omitempty"`
}

// NewAITag builds an AI-sourced tag with the given confidence in [0, 100].
func NewAITag(name string, confidence float64) Tag {
	return Tag{Name: name, Source: TagSourceAI, AI: &AITagInfo{Confidence: confidence}}
}

// MergeTags combines a set of preserved tags with a freshly computed set,
// deduping by name with earliest-source-wins (the preserved tag keeps its
// provenance when both sets name the same tag).
//
// This is the resolution for the "possible source bug" noted in the design:
// re-indexing must not silently discard user-applied tags just because the
// extractor no longer derives them.
func MergeTags(preserved, fresh []Tag) []Tag {
	seen := make(map[string]bool, len(preserved)+len(fresh))
	merged := make([]Tag, 0, len(preserved)+len(fresh))

	for _, t := range preserved {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		merged = append(merged, t)
	}
	for _, t := range fresh {
		if seen[t.Name] {
			continue
		}
		seen[t.Name] = true
		merged = append(merged, t)
	}
	return merged
}

// SplitByPreserve separates tags into those that must survive re-indexing
// untouched (User-sourced) and those that are safe to recompute.
func SplitByPreserve(tags []Tag) (preserved, recomputable []Tag) {
	for _, t := range tags {
		if t.Source == TagSourceUser {
			preserved = append(preserved, t)
		} else {
			recomputable = append(recomputable, t)
		}
	}
	return preserved, recomputable
}
