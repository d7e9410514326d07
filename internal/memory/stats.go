package memory

import (
	"context"
	"unicode/utf8"

	"github.com/ctxmem/ctxmem/internal/model"
	"github.com/ctxmem/ctxmem/internal/store"
)

// Statistics aggregates store-wide metrics: totals, per-type counts, tag
// vocabulary size and, when any memory exists, access-count, content-length
// and creation-date aggregates. An empty store yields zeros, not an error.
func (m *Manager) Statistics(ctx context.Context) (*model.Statistics, error) {
	stats := &model.Statistics{TypeCounts: map[model.MemoryType]int{}}

	for _, typ := range model.Types {
		count, err := m.store.CountMemories(ctx, typ)
		if err != nil {
			return nil, err
		}
		stats.TypeCounts[typ] = count
	}

	total, err := m.store.CountMemories(ctx, "")
	if err != nil {
		return nil, err
	}
	stats.TotalCount = total

	tags, err := m.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	stats.TotalTags = len(tags)

	if total == 0 {
		return stats, nil
	}

	all, err := m.store.ListMemories(ctx, store.ListParams{})
	if err != nil {
		return nil, err
	}

	var accessSum, lengthSum int
	// Content lengths are measured in characters, same as the validation
	// limits.
	for i, mem := range all {
		length := utf8.RuneCountInString(mem.Content)
		accessSum += mem.AccessCount
		lengthSum += length

		if i == 0 {
			stats.MinAccess, stats.MaxAccess = mem.AccessCount, mem.AccessCount
			stats.MinLength, stats.MaxLength = length, length
			created := mem.CreatedAt
			stats.Oldest, stats.Newest = &created, &created
		} else {
			if mem.AccessCount < stats.MinAccess {
				stats.MinAccess = mem.AccessCount
			}
			if mem.AccessCount > stats.MaxAccess {
				stats.MaxAccess = mem.AccessCount
			}
			if length < stats.MinLength {
				stats.MinLength = length
			}
			if length > stats.MaxLength {
				stats.MaxLength = length
			}
			if mem.CreatedAt.Before(*stats.Oldest) {
				created := mem.CreatedAt
				stats.Oldest = &created
			}
			if mem.CreatedAt.After(*stats.Newest) {
				created := mem.CreatedAt
				stats.Newest = &created
			}
		}

		if len(mem.Tags) > 0 {
			stats.WithTags++
		} else {
			stats.WithoutTags++
		}
	}

	stats.AvgAccess = float64(accessSum) / float64(len(all))
	stats.AvgLength = float64(lengthSum) / float64(len(all))
	return stats, nil
}
