// Package memory defines the core data model: Memory records, their Kind
// (a tagged union over file categories), Tags with source provenance,
// Sources, and Connections between records.
package memory

import "github.com/google/uuid"

// ID is an opaque 128-bit identifier for a Memory record.
type ID string

// NewID generates a fresh, random 128-bit ID.
func NewID() ID {
	return ID(uuid.NewString())
}

// Empty reports whether the ID is the zero value.
func (id ID) Empty() bool {
	return id == ""
}

func (id ID) String() string {
	return string(id)
}
