// Package memory implements the domain service over the storage engine:
// input validation and normalization, composite search, and statistics.
package memory

import (
	"context"
	"fmt"

	"github.com/ctxmem/ctxmem/internal/model"
	"github.com/ctxmem/ctxmem/internal/store"
)

// Manager validates and normalizes domain-level calls and translates them
// into storage engine primitives.
type Manager struct {
	store store.Store
}

// NewManager wraps the given store.
func NewManager(s store.Store) *Manager {
	return &Manager{store: s}
}

// StoreRequest holds inputs for storing a new memory.
type StoreRequest struct {
	Content string
	Type    model.MemoryType
	Tags    []string
	Context string
}

// Store validates the request and persists a new memory, returning its id.
func (m *Manager) Store(ctx context.Context, req StoreRequest) (int64, error) {
	content, err := validateContent(req.Content)
	if err != nil {
		return 0, err
	}
	if !req.Type.Valid() {
		return 0, invalid("memory_type", "unknown type %q", req.Type)
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return 0, err
	}
	contextStr, err := validateContext(req.Context)
	if err != nil {
		return 0, err
	}

	id, err := m.store.CreateMemory(ctx, store.CreateParams{
		Content: content,
		Type:    req.Type,
		Context: contextStr,
		Tags:    tags,
	})
	if err != nil {
		return 0, fmt.Errorf("store memory: %w", err)
	}
	return id, nil
}

// GetByID fetches one memory, bumping its access tracking. Returns nil when
// the id does not exist.
func (m *Manager) GetByID(ctx context.Context, id int64) (*model.Memory, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return m.store.GetMemory(ctx, id)
}

// Touch bumps access tracking without returning the memory. Returns false
// when the id does not exist.
func (m *Manager) Touch(ctx context.Context, id int64) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	return m.store.TouchMemory(ctx, id)
}

// UpdateRequest holds the mutable fields of a memory. Nil pointers leave the
// field unchanged; a non-nil Tags slice replaces the full tag set.
type UpdateRequest struct {
	Content *string
	Context *string
	Tags    []string
}

// Update applies the provided fields to an existing memory. Returns false
// when the id does not exist.
func (m *Manager) Update(ctx context.Context, id int64, req UpdateRequest) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}

	p := store.UpdateParams{}
	if req.Content != nil {
		content, err := validateContent(*req.Content)
		if err != nil {
			return false, err
		}
		p.Content = &content
	}
	if req.Context != nil {
		contextStr, err := validateContext(*req.Context)
		if err != nil {
			return false, err
		}
		p.Context = &contextStr
	}
	if req.Tags != nil {
		tags, err := normalizeTags(req.Tags)
		if err != nil {
			return false, err
		}
		if tags == nil {
			tags = []string{}
		}
		p.Tags = tags
	}

	return m.store.UpdateMemory(ctx, id, p)
}

// Delete removes a memory and its tag associations. Returns false when the
// id does not exist.
func (m *Manager) Delete(ctx context.Context, id int64) (bool, error) {
	if err := validateID(id); err != nil {
		return false, err
	}
	return m.store.DeleteMemory(ctx, id)
}

// List returns memories newest first, optionally filtered by type.
func (m *Manager) List(ctx context.Context, typ model.MemoryType, limit, offset int) ([]model.Memory, error) {
	if typ != "" && !typ.Valid() {
		return nil, invalid("memory_type", "unknown type %q", typ)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	if err := validateOffset(offset); err != nil {
		return nil, err
	}
	return m.store.ListMemories(ctx, store.ListParams{Type: typ, Limit: limit, Offset: offset})
}

// Count counts memories, optionally filtered by type.
func (m *Manager) Count(ctx context.Context, typ model.MemoryType) (int, error) {
	if typ != "" && !typ.Valid() {
		return 0, invalid("memory_type", "unknown type %q", typ)
	}
	return m.store.CountMemories(ctx, typ)
}

// Clear deletes memories, optionally filtered by type, returning the number
// removed.
func (m *Manager) Clear(ctx context.Context, typ model.MemoryType) (int, error) {
	if typ != "" && !typ.Valid() {
		return 0, invalid("memory_type", "unknown type %q", typ)
	}
	return m.store.ClearMemories(ctx, typ)
}

// Tags returns every tag name in the vocabulary, sorted.
func (m *Manager) Tags(ctx context.Context) ([]string, error) {
	tags, err := m.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names, nil
}

// PurgeUnusedTags removes tags with no remaining associations.
func (m *Manager) PurgeUnusedTags(ctx context.Context) (int, error) {
	return m.store.PurgeUnusedTags(ctx)
}
