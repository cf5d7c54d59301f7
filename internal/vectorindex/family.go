// Package vectorindex wraps github.com/coder/hnsw into one approximate
// nearest-neighbor collection per kind family, with an in-process cosine
// fallback for when a collection has no graph available. Both paths answer
// the same query shape so search can stay oblivious to which one is live.
package vectorindex

import "github.com/hippo-mem/hippo/internal/memory"

// Family selects which collection a Memory's embedding belongs to. Kinds
// that don't get their own collection fall into FamilyText, the default.
type Family string

const (
	FamilyImages Family = "images"
	FamilyCode   Family = "code"
	FamilyText   Family = "text"
)

// Families lists every collection a fresh Index provisions.
var Families = []Family{FamilyImages, FamilyCode, FamilyText}

// FamilyForKind maps a Memory's kind to its vector collection.
func FamilyForKind(kind memory.KindName) Family {
	switch kind {
	case memory.KindImage:
		return FamilyImages
	case memory.KindCode:
		return FamilyCode
	default:
		return FamilyText
	}
}
