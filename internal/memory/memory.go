package memory

import (
	"path/filepath"
	"strings"
	"time"
)

// Memory is a single indexed record: one file (or folder) plus everything
// derived about it.
type Memory struct {
	ID     ID     `json:"id"`
	Path   string `json:"path"` // absolute
	Source Source `json:"source"`
	Kind   Kind   `json:"kind"`

	Metadata Metadata `json:"metadata"`
	Tags     []Tag    `json:"tags"`

	// EmbeddingID is empty until an embedding has been computed and stored,
	// either in the external vector backend or the local fallback table.
	EmbeddingID string `json:"embedding_id,omitempty"`

	Connections []Connection `json:"connections,omitempty"`

	IsFavorite bool `json:"is_favorite"`

	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
	IndexedAt  time.Time `json:"indexed_at"`
}

// New builds a fresh Memory for a path not yet seen by the store. Callers
// that are re-indexing an existing path must instead load the prior
// record and call ReplaceWith, to preserve invariant 1 (id stability
// across upserts of the same path).
func New(path string, source Source, kind Kind, now time.Time) *Memory {
	return &Memory{
		ID:         NewID(),
		Path:       path,
		Source:     source,
		Kind:       kind,
		Tags:       nil,
		CreatedAt:  now,
		ModifiedAt: now,
		IndexedAt:  now,
	}
}

// ReplaceWith refreshes m's derived fields from a freshly extracted
// record for the same path, preserving m's id, CreatedAt, IsFavorite,
// Connections, and user-sourced tags (per the tag-merge resolution of the
// "possible source bug": System/AI/Imported tags are replaced wholesale,
// User tags never are). It returns m for chaining.
func (m *Memory) ReplaceWith(fresh *Memory, now time.Time) *Memory {
	preserved, _ := SplitByPreserve(m.Tags)
	_, recomputed := SplitByPreserve(fresh.Tags)

	m.Kind = fresh.Kind
	m.Metadata = fresh.Metadata
	m.Tags = MergeTags(preserved, recomputed)
	m.ModifiedAt = fresh.ModifiedAt
	m.IndexedAt = indexedAtFloor(m.IndexedAt, now)
	return m
}

// indexedAtFloor enforces invariant 5: indexed_at is monotonic
// non-decreasing per id.
func indexedAtFloor(prev, now time.Time) time.Time {
	if now.Before(prev) {
		return prev
	}
	return now
}

// Filename returns the base name of Path.
func (m *Memory) Filename() string {
	return filepath.Base(m.Path)
}

// Extension returns the lowercase, dot-less extension of Path.
func (m *Memory) Extension() string {
	ext := filepath.Ext(m.Path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Folder returns the name of Path's immediate parent directory, the value
// used for the automatic `folder:<dir_name>` tag.
func (m *Memory) Folder() string {
	return filepath.Base(filepath.Dir(m.Path))
}

// HasTag reports whether m carries a tag with the given name, regardless
// of source.
func (m *Memory) HasTag(name string) bool {
	for _, t := range m.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// AddTag appends tag to m unless a tag with the same name already exists,
// per the dedup-by-name, earliest-source-wins rule.
func (m *Memory) AddTag(tag Tag) {
	if m.HasTag(tag.Name) {
		return
	}
	m.Tags = append(m.Tags, tag)
}

// RemoveTag removes the tag with the given name, if present. Reports
// whether a tag was removed.
func (m *Memory) RemoveTag(name string) bool {
	for i, t := range m.Tags {
		if t.Name == name {
			m.Tags = append(m.Tags[:i], m.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// ToggleFavorite flips IsFavorite and returns the new state.
func (m *Memory) ToggleFavorite() bool {
	m.IsFavorite = !m.IsFavorite
	return m.IsFavorite
}

// TagsText concatenates tag names space-separated, the denormalized
// column the store indexes for keyword search over tags.
func (m *Memory) TagsText() string {
	names := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		names[i] = t.Name
	}
	return strings.Join(names, " ")
}
