package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctxmem/ctxmem/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateMemory(ctx, CreateParams{
		Content: "the user prefers tabs",
		Type:    model.TypePreference,
		Context: "editor setup",
		Tags:    []string{"editor", "style"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	mem, err := s.GetMemory(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if mem == nil {
		t.Fatal("expected memory, got nil")
	}
	if mem.Content != "the user prefers tabs" {
		t.Errorf("content round-trip failed: %q", mem.Content)
	}
	if mem.Type != model.TypePreference {
		t.Errorf("expected type preference, got %q", mem.Type)
	}
	if mem.Context != "editor setup" {
		t.Errorf("context round-trip failed: %q", mem.Context)
	}
	if len(mem.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %v", mem.Tags)
	}
}

func TestGetBumpsAccessCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote})

	for i := 1; i <= 3; i++ {
		mem, err := s.GetMemory(ctx, id)
		if err != nil {
			t.Fatalf("get %d: %v", i, err)
		}
		// The returned row reflects the post-increment state.
		if mem.AccessCount != i {
			t.Errorf("after get %d: access_count = %d", i, mem.AccessCount)
		}
		if mem.LastAccessed == nil {
			t.Error("expected last_accessed to be set")
		}
	}
}

func TestGetAbsentDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.GetMemory(ctx, 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if mem != nil {
		t.Fatalf("expected nil for absent id, got %+v", mem)
	}
}

func TestSearchDoesNotBumpAccessCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "searchable", Type: model.TypeNote})

	for i := 0; i < 3; i++ {
		if _, err := s.SearchMemories(ctx, SearchParams{Content: "search"}); err != nil {
			t.Fatalf("search: %v", err)
		}
		if _, err := s.ListMemories(ctx, ListParams{}); err != nil {
			t.Fatalf("list: %v", err)
		}
	}

	mem, _ := s.GetMemory(ctx, id)
	if mem.AccessCount != 1 {
		t.Errorf("expected access_count 1 (this get only), got %d", mem.AccessCount)
	}
}

func TestUpdateContentAndContext(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "old", Type: model.TypeFact, Context: "ctx"})

	content := "new"
	ok, err := s.UpdateMemory(ctx, id, UpdateParams{Content: &content})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !ok {
		t.Fatal("expected update to succeed")
	}

	mem, _ := s.GetMemory(ctx, id)
	if mem.Content != "new" {
		t.Errorf("expected updated content, got %q", mem.Content)
	}
	if mem.Context != "ctx" {
		t.Errorf("context should be untouched, got %q", mem.Context)
	}

	// Empty context clears the column.
	empty := ""
	s.UpdateMemory(ctx, id, UpdateParams{Context: &empty})
	mem, _ = s.GetMemory(ctx, id)
	if mem.Context != "" {
		t.Errorf("expected cleared context, got %q", mem.Context)
	}
}

func TestUpdateAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	content := "x"
	ok, err := s.UpdateMemory(ctx, 42, UpdateParams{Content: &content})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if ok {
		t.Error("expected false for absent id")
	}
}

func TestUpdateReplacesTagSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote, Tags: []string{"a", "b"}})

	ok, err := s.UpdateMemory(ctx, id, UpdateParams{Tags: []string{"b", "c"}})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}

	mem, _ := s.GetMemory(ctx, id)
	if len(mem.Tags) != 2 || mem.Tags[0] != "b" || mem.Tags[1] != "c" {
		t.Errorf("expected [b c], got %v", mem.Tags)
	}

	// Empty set clears all associations.
	s.UpdateMemory(ctx, id, UpdateParams{Tags: []string{}})
	mem, _ = s.GetMemory(ctx, id)
	if len(mem.Tags) != 0 {
		t.Errorf("expected no tags, got %v", mem.Tags)
	}
}

func TestTagOnlyUpdateKeepsUpdatedAt(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote})
	before, _ := s.GetMemory(ctx, id)

	s.UpdateMemory(ctx, id, UpdateParams{Tags: []string{"later"}})

	after, _ := s.GetMemory(ctx, id)
	if !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("tag-only update changed updated_at: %v -> %v", before.UpdatedAt, after.UpdatedAt)
	}
}

func TestDeleteCascadesAssociations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote, Tags: []string{"orphan"}})

	ok, err := s.DeleteMemory(ctx, id)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM memory_tags`).Scan(&n); err != nil {
		t.Fatalf("count associations: %v", err)
	}
	if n != 0 {
		t.Errorf("expected cascade to remove associations, found %d", n)
	}

	// Tag row survives until purged.
	removed, _ := s.PurgeUnusedTags(ctx)
	if removed != 1 {
		t.Errorf("expected 1 orphaned tag purged, got %d", removed)
	}
	removed, _ = s.PurgeUnusedTags(ctx)
	if removed != 0 {
		t.Errorf("expected second purge to remove 0, got %d", removed)
	}
}

func TestDeleteAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok, err := s.DeleteMemory(ctx, 7)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("expected false for absent id")
	}
}

func TestListPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var ids []int64
	for i := 0; i < 5; i++ {
		id, _ := s.CreateMemory(ctx, CreateParams{Content: "entry", Type: model.TypeNote})
		ids = append(ids, id)
	}

	page1, err := s.ListMemories(ctx, ListParams{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	page2, _ := s.ListMemories(ctx, ListParams{Limit: 2, Offset: 2})
	page3, _ := s.ListMemories(ctx, ListParams{Limit: 2, Offset: 4})

	if len(page1) != 2 || len(page2) != 2 || len(page3) != 1 {
		t.Fatalf("page sizes: %d %d %d", len(page1), len(page2), len(page3))
	}

	seen := map[int64]bool{}
	var ordered []int64
	for _, page := range [][]model.Memory{page1, page2, page3} {
		for _, m := range page {
			if seen[m.ID] {
				t.Errorf("id %d appears on two pages", m.ID)
			}
			seen[m.ID] = true
			ordered = append(ordered, m.ID)
		}
	}
	// Newest first across pages: descending ids for same-second rows.
	for i := 1; i < len(ordered); i++ {
		if ordered[i] >= ordered[i-1] {
			t.Errorf("unexpected order: %v", ordered)
			break
		}
	}
	for _, id := range ids {
		if !seen[id] {
			t.Errorf("id %d missing from pages", id)
		}
	}
}

func TestCountAndClearByType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.CreateMemory(ctx, CreateParams{Content: "a", Type: model.TypeFact})
	s.CreateMemory(ctx, CreateParams{Content: "b", Type: model.TypePreference})
	s.CreateMemory(ctx, CreateParams{Content: "c", Type: model.TypeNote})

	n, _ := s.CountMemories(ctx, model.TypeFact)
	if n != 1 {
		t.Errorf("expected 1 fact, got %d", n)
	}

	removed, err := s.ClearMemories(ctx, model.TypeFact)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	rest, _ := s.ListMemories(ctx, ListParams{})
	if len(rest) != 2 {
		t.Errorf("expected 2 remaining, got %d", len(rest))
	}

	removed, _ = s.ClearMemories(ctx, "")
	if removed != 2 {
		t.Errorf("expected 2 removed by unconditional clear, got %d", removed)
	}
}

func TestTouchMemory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote})

	ok, err := s.TouchMemory(ctx, id)
	if err != nil || !ok {
		t.Fatalf("touch: ok=%v err=%v", ok, err)
	}

	mem, _ := s.GetMemory(ctx, id)
	if mem.AccessCount != 2 { // touch + this get
		t.Errorf("expected access_count 2, got %d", mem.AccessCount)
	}

	ok, _ = s.TouchMemory(ctx, 999)
	if ok {
		t.Error("expected false for absent id")
	}
}

func TestInMemoryStore(t *testing.T) {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	id, err := s.CreateMemory(ctx, CreateParams{Content: "ephemeral", Type: model.TypeNote})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mem, err := s.GetMemory(ctx, id)
	if err != nil || mem == nil {
		t.Fatalf("get: mem=%v err=%v", mem, err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestStrictTimestampParsing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.CreateMemory(ctx, CreateParams{Content: "x", Type: model.TypeNote})

	// Corrupt the stored timestamp; reads must fail loudly, not nil it out.
	if _, err := s.db.Exec(`UPDATE memories SET created_at = 'not-a-time' WHERE id = ?`, id); err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	if _, err := s.GetMemory(ctx, id); err == nil {
		t.Error("expected error for malformed created_at")
	}
}
