// Package store provides the memory storage engine and its SQLite implementation.
package store

import (
	"context"
	"time"

	"github.com/ctxmem/ctxmem/internal/model"
)

// CreateParams holds parameters for creating a memory.
type CreateParams struct {
	Content string
	Type    model.MemoryType
	Context string
	Tags    []string
}

// UpdateParams holds parameters for updating a memory. Nil pointer fields are
// left unchanged; a non-nil Tags slice replaces the full association set.
type UpdateParams struct {
	Content *string
	Context *string
	Tags    []string
}

// SearchParams holds filters for searching memories. All provided filters
// compose conjunctively; tag membership itself is any-of across Tags.
type SearchParams struct {
	Content     string // case-sensitive substring of content
	Type        model.MemoryType
	Tags        []string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ListParams holds parameters for listing memories.
type ListParams struct {
	Type   model.MemoryType
	Limit  int
	Offset int
}

// Store defines the storage engine contract consumed by the memory service.
type Store interface {
	// CreateMemory inserts a memory with its tag associations in one
	// transaction and returns the new id.
	CreateMemory(ctx context.Context, p CreateParams) (int64, error)

	// GetMemory fetches a memory by id, bumping access_count and
	// last_accessed first so the returned row reflects the new state.
	// Returns nil (and no mutation) when the id does not exist.
	GetMemory(ctx context.Context, id int64) (*model.Memory, error)

	// UpdateMemory applies the provided fields. Returns false when the id
	// does not exist.
	UpdateMemory(ctx context.Context, id int64, p UpdateParams) (bool, error)

	// DeleteMemory removes a memory and, by cascade, its tag associations.
	// Returns false when the id does not exist.
	DeleteMemory(ctx context.Context, id int64) (bool, error)

	// SearchMemories returns memories matching all provided filters,
	// newest first.
	SearchMemories(ctx context.Context, p SearchParams) ([]model.Memory, error)

	// ListMemories returns memories, optionally filtered by type, newest
	// first.
	ListMemories(ctx context.Context, p ListParams) ([]model.Memory, error)

	// CountMemories counts memories, optionally filtered by type.
	CountMemories(ctx context.Context, typ model.MemoryType) (int, error)

	// ClearMemories deletes memories, optionally filtered by type, and
	// returns the number removed.
	ClearMemories(ctx context.Context, typ model.MemoryType) (int, error)

	// TouchMemory bumps access tracking without reading the row. Returns
	// false when the id does not exist.
	TouchMemory(ctx context.Context, id int64) (bool, error)

	// GetOrCreateTag returns the id of the named tag, creating it if
	// needed. Concurrent calls with the same name resolve to one row.
	GetOrCreateTag(ctx context.Context, name string) (int64, error)

	// ListTags returns the full tag vocabulary ordered by name.
	ListTags(ctx context.Context) ([]model.Tag, error)

	// PurgeUnusedTags deletes tags with no remaining associations and
	// returns the number removed.
	PurgeUnusedTags(ctx context.Context) (int, error)

	// Close closes the store.
	Close() error
}
