// Package model defines the core memory data types.
package model

import (
	"fmt"
	"time"
)

// MemoryType classifies a stored memory.
type MemoryType string

// The fixed memory type vocabulary.
const (
	TypeFact         MemoryType = "fact"
	TypePreference   MemoryType = "preference"
	TypeConversation MemoryType = "conversation"
	TypeNote         MemoryType = "note"
)

// Types lists every valid memory type, in a stable order.
var Types = []MemoryType{TypeFact, TypePreference, TypeConversation, TypeNote}

// ParseMemoryType converts a string to a MemoryType, rejecting unknown values.
func ParseMemoryType(s string) (MemoryType, error) {
	switch MemoryType(s) {
	case TypeFact, TypePreference, TypeConversation, TypeNote:
		return MemoryType(s), nil
	}
	return "", fmt.Errorf("invalid memory type: %q", s)
}

// Valid reports whether t is one of the known memory types.
func (t MemoryType) Valid() bool {
	_, err := ParseMemoryType(string(t))
	return err == nil
}

// Memory represents a stored memory entry.
//
// UpdatedAt tracks content/context changes only; a tag-only update leaves it
// untouched.
type Memory struct {
	ID           int64      `json:"id"`
	Content      string     `json:"content"`
	Type         MemoryType `json:"memory_type"`
	Context      string     `json:"context,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	AccessCount  int        `json:"access_count"`
	LastAccessed *time.Time `json:"last_accessed,omitempty"`
}

// HasTag reports whether the memory carries the given (normalized) tag.
func (m *Memory) HasTag(name string) bool {
	for _, t := range m.Tags {
		if t == name {
			return true
		}
	}
	return false
}

// Tag is an entry in the deduplicated tag vocabulary.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Statistics aggregates store-wide memory metrics. All numeric fields are
// zero, not an error, when the store is empty.
type Statistics struct {
	TotalCount  int                `json:"total_count"`
	TypeCounts  map[MemoryType]int `json:"type_counts"`
	TotalTags   int                `json:"total_tags"`
	AvgAccess   float64            `json:"avg_access_count"`
	MinAccess   int                `json:"min_access_count"`
	MaxAccess   int                `json:"max_access_count"`
	AvgLength   float64            `json:"avg_content_length"`
	MinLength   int                `json:"min_content_length"`
	MaxLength   int                `json:"max_content_length"`
	Oldest      *time.Time         `json:"oldest_memory,omitempty"`
	Newest      *time.Time         `json:"newest_memory,omitempty"`
	WithTags    int                `json:"memories_with_tags"`
	WithoutTags int                `json:"memories_without_tags"`
}
