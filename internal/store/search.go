package store

import (
	"context"
	"strings"
	"time"

	"github.com/ctxmem/ctxmem/internal/model"
)

// SearchMemories returns memories matching all provided filters, newest
// first. Content matching is case-sensitive containment (instr, not LIKE).
// Tag filtering restricts to memories carrying any of the given tag names;
// all-of composition is resolved at the service layer.
func (s *SQLiteStore) SearchMemories(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	query := `SELECT DISTINCT m.id, m.content, m.memory_type, m.context,
	                 m.created_at, m.updated_at, m.access_count, m.last_accessed
	          FROM memories m`
	where := []string{}
	args := []interface{}{}

	if len(p.Tags) > 0 {
		query += `
		 JOIN memory_tags mt ON m.id = mt.memory_id
		 JOIN tags t ON mt.tag_id = t.id`
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(p.Tags)), ",")
		where = append(where, "t.name IN ("+placeholders+")")
		for _, tag := range p.Tags {
			args = append(args, tag)
		}
	}

	if p.Content != "" {
		where = append(where, "instr(m.content, ?) > 0")
		args = append(args, p.Content)
	}
	if p.Type != "" {
		where = append(where, "m.memory_type = ?")
		args = append(args, string(p.Type))
	}
	if p.CreatedFrom != nil {
		where = append(where, "m.created_at >= ?")
		args = append(args, p.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if p.CreatedTo != nil {
		where = append(where, "m.created_at <= ?")
		args = append(args, p.CreatedTo.UTC().Format(time.RFC3339))
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY m.created_at DESC, m.id DESC"
	query, args = paginate(query, args, p.Limit, p.Offset)

	return s.queryMemories(ctx, query, args...)
}
