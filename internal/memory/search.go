package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/ctxmem/ctxmem/internal/model"
	"github.com/ctxmem/ctxmem/internal/store"
)

// Retrieve finds memories whose content contains the query substring,
// newest first.
func (m *Manager) Retrieve(ctx context.Context, query string, typ model.MemoryType, limit int) ([]model.Memory, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("query", "cannot be empty")
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("memory_type", "unknown type %q", typ)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	return m.store.SearchMemories(ctx, store.SearchParams{Content: query, Type: typ, Limit: limit})
}

// AdvancedQuery holds the multi-filter search inputs. Keywords are joined
// into a single phrase match; Tags match any-of unless MatchAllTags is set.
type AdvancedQuery struct {
	Keywords     []string
	Type         model.MemoryType
	Tags         []string
	MatchAllTags bool
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
	Offset       int
}

// SearchAdvanced runs a conjunction of keyword phrase match, type, tag and
// inclusive date-range filters as one storage query. With MatchAllTags the
// tag containment check runs in this layer, so pagination applies after the
// superset filter.
func (m *Manager) SearchAdvanced(ctx context.Context, q AdvancedQuery) ([]model.Memory, error) {
	if q.Type != "" && !q.Type.Valid() {
		return nil, invalid("memory_type", "unknown type %q", q.Type)
	}
	if err := validateLimit(q.Limit); err != nil {
		return nil, err
	}
	if err := validateOffset(q.Offset); err != nil {
		return nil, err
	}

	var keywords []string
	for _, kw := range q.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	tags, err := normalizeTags(q.Tags)
	if err != nil {
		return nil, err
	}

	p := store.SearchParams{
		Content:     strings.Join(keywords, " "),
		Type:        q.Type,
		Tags:        tags,
		CreatedFrom: q.DateFrom,
		CreatedTo:   q.DateTo,
	}

	if q.MatchAllTags && len(tags) > 1 {
		// Any-of narrows the candidates; containment and pagination
		// happen here.
		candidates, err := m.store.SearchMemories(ctx, p)
		if err != nil {
			return nil, err
		}
		matched := filterSupersets(candidates, tags)
		return page(matched, q.Limit, q.Offset), nil
	}

	p.Limit = q.Limit
	p.Offset = q.Offset
	return m.store.SearchMemories(ctx, p)
}

// SearchByKeywords searches content for the given keywords. With matchAll,
// only memories containing every keyword are returned; otherwise any
// keyword matches. Both modes return newest first.
func (m *Manager) SearchByKeywords(ctx context.Context, keywords []string, matchAll bool, typ model.MemoryType, limit int) ([]model.Memory, error) {
	var cleaned []string
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	if len(cleaned) == 0 {
		return nil, invalid("keywords", "cannot be empty")
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("memory_type", "unknown type %q", typ)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	if matchAll {
		// Intersect id sets across per-keyword matches, starting from
		// the first keyword's results.
		var matched []model.Memory
		for i, kw := range cleaned {
			found, err := m.store.SearchMemories(ctx, store.SearchParams{Content: kw, Type: typ})
			if err != nil {
				return nil, err
			}
			if i == 0 {
				matched = found
				continue
			}
			ids := make(map[int64]bool, len(found))
			for _, mem := range found {
				ids[mem.ID] = true
			}
			kept := matched[:0]
			for _, mem := range matched {
				if ids[mem.ID] {
					kept = append(kept, mem)
				}
			}
			matched = kept
			if len(matched) == 0 {
				break
			}
		}
		sortNewestFirst(matched)
		return page(matched, limit, 0), nil
	}

	// Union of per-keyword matches, deduplicated by id.
	var merged []model.Memory
	seen := map[int64]bool{}
	for _, kw := range cleaned {
		found, err := m.store.SearchMemories(ctx, store.SearchParams{Content: kw, Type: typ})
		if err != nil {
			return nil, err
		}
		for _, mem := range found {
			if !seen[mem.ID] {
				seen[mem.ID] = true
				merged = append(merged, mem)
			}
		}
	}
	sortNewestFirst(merged)
	return page(merged, limit, 0), nil
}

// GetByTags returns memories carrying the given tags: any-of by default,
// all-of with matchAll. The all-of check is a service-layer scan over the
// (optionally type-filtered) listing, acceptable at personal scale.
func (m *Manager) GetByTags(ctx context.Context, tagNames []string, matchAll bool, typ model.MemoryType, limit int) ([]model.Memory, error) {
	tags, err := normalizeTags(tagNames)
	if err != nil {
		return nil, err
	}
	if len(tags) == 0 {
		return nil, invalid("tags", "cannot be empty")
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("memory_type", "unknown type %q", typ)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	if matchAll {
		all, err := m.store.ListMemories(ctx, store.ListParams{Type: typ})
		if err != nil {
			return nil, err
		}
		return page(filterSupersets(all, tags), limit, 0), nil
	}

	return m.store.SearchMemories(ctx, store.SearchParams{Tags: tags, Type: typ, Limit: limit})
}

// Recent returns memories created within the last N days.
func (m *Manager) Recent(ctx context.Context, days int, typ model.MemoryType, limit int) ([]model.Memory, error) {
	if days <= 0 {
		return nil, invalid("days", "must be positive")
	}
	from := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	return m.SearchAdvanced(ctx, AdvancedQuery{Type: typ, DateFrom: &from, Limit: limit})
}

// FrequentlyAccessed returns memories with access_count at or above the
// threshold, most accessed first. Computed over a full listing.
func (m *Manager) FrequentlyAccessed(ctx context.Context, minAccessCount int, typ model.MemoryType, limit int) ([]model.Memory, error) {
	if minAccessCount <= 0 {
		return nil, invalid("min_access_count", "must be positive")
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("memory_type", "unknown type %q", typ)
	}
	if err := validateLimit(limit); err != nil {
		return nil, err
	}

	all, err := m.store.ListMemories(ctx, store.ListParams{Type: typ})
	if err != nil {
		return nil, err
	}

	var frequent []model.Memory
	for _, mem := range all {
		if mem.AccessCount >= minAccessCount {
			frequent = append(frequent, mem)
		}
	}
	sort.SliceStable(frequent, func(i, j int) bool {
		return frequent[i].AccessCount > frequent[j].AccessCount
	})
	return page(frequent, limit, 0), nil
}

// filterSupersets keeps memories whose tag set contains every wanted tag.
func filterSupersets(memories []model.Memory, wanted []string) []model.Memory {
	var matched []model.Memory
	for _, mem := range memories {
		has := true
		for _, tag := range wanted {
			if !mem.HasTag(tag) {
				has = false
				break
			}
		}
		if has {
			matched = append(matched, mem)
		}
	}
	return matched
}

func sortNewestFirst(memories []model.Memory) {
	sort.SliceStable(memories, func(i, j int) bool {
		if memories[i].CreatedAt.Equal(memories[j].CreatedAt) {
			return memories[i].ID > memories[j].ID
		}
		return memories[i].CreatedAt.After(memories[j].CreatedAt)
	})
}

func page(memories []model.Memory, limit, offset int) []model.Memory {
	if offset > 0 {
		if offset >= len(memories) {
			return nil
		}
		memories = memories[offset:]
	}
	if limit > 0 && len(memories) > limit {
		memories = memories[:limit]
	}
	return memories
}
