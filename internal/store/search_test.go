package store

import (
	"context"
	"testing"
	"time"

	"github.com/ctxmem/ctxmem/internal/model"
)

func seedSearchFixtures(t *testing.T, s *SQLiteStore) (python, golang, editor int64) {
	t.Helper()
	ctx := context.Background()
	python, _ = s.CreateMemory(ctx, CreateParams{
		Content: "Python uses significant whitespace",
		Type:    model.TypeFact,
		Tags:    []string{"python", "language"},
	})
	golang, _ = s.CreateMemory(ctx, CreateParams{
		Content: "Go compiles to static binaries",
		Type:    model.TypeFact,
		Tags:    []string{"go", "language"},
	})
	editor, _ = s.CreateMemory(ctx, CreateParams{
		Content: "the user prefers dark themes",
		Type:    model.TypePreference,
		Tags:    []string{"editor"},
	})
	return python, golang, editor
}

func TestSearchByContent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	python, _, _ := seedSearchFixtures(t, s)

	got, err := s.SearchMemories(ctx, SearchParams{Content: "whitespace"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].ID != python {
		t.Fatalf("expected the whitespace memory, got %v", got)
	}
}

func TestSearchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSearchFixtures(t, s)

	got, _ := s.SearchMemories(ctx, SearchParams{Content: "Python"})
	if len(got) != 1 {
		t.Errorf("expected exact-case match, got %d results", len(got))
	}
	got, _ = s.SearchMemories(ctx, SearchParams{Content: "python"})
	if len(got) != 0 {
		t.Errorf("expected no lowercase match, got %d results", len(got))
	}
}

func TestSearchByType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSearchFixtures(t, s)

	got, _ := s.SearchMemories(ctx, SearchParams{Type: model.TypePreference})
	if len(got) != 1 || got[0].Type != model.TypePreference {
		t.Fatalf("expected one preference, got %v", got)
	}
}

func TestSearchByTagsAnyOf(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	python, golang, _ := seedSearchFixtures(t, s)

	got, _ := s.SearchMemories(ctx, SearchParams{Tags: []string{"language"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 language memories, got %d", len(got))
	}

	// Multiple tags widen the match and never duplicate a row.
	got, _ = s.SearchMemories(ctx, SearchParams{Tags: []string{"python", "go", "language"}})
	if len(got) != 2 {
		t.Fatalf("expected 2 distinct memories, got %d", len(got))
	}
	ids := map[int64]bool{got[0].ID: true, got[1].ID: true}
	if !ids[python] || !ids[golang] {
		t.Errorf("expected ids %d and %d, got %v", python, golang, ids)
	}
}

func TestSearchFiltersCompose(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, golang, _ := seedSearchFixtures(t, s)

	got, _ := s.SearchMemories(ctx, SearchParams{
		Content: "binaries",
		Type:    model.TypeFact,
		Tags:    []string{"language"},
	})
	if len(got) != 1 || got[0].ID != golang {
		t.Fatalf("expected only the Go memory, got %v", got)
	}

	got, _ = s.SearchMemories(ctx, SearchParams{
		Content: "binaries",
		Type:    model.TypePreference,
	})
	if len(got) != 0 {
		t.Errorf("conflicting filters should match nothing, got %d", len(got))
	}
}

func TestSearchByDateRange(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedSearchFixtures(t, s)

	past := time.Now().UTC().Add(-time.Hour)
	future := time.Now().UTC().Add(time.Hour)

	got, _ := s.SearchMemories(ctx, SearchParams{CreatedFrom: &past, CreatedTo: &future})
	if len(got) != 3 {
		t.Errorf("expected all 3 within range, got %d", len(got))
	}

	got, _ = s.SearchMemories(ctx, SearchParams{CreatedTo: &past})
	if len(got) != 0 {
		t.Errorf("expected none before range, got %d", len(got))
	}
}

func TestSearchPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 4; i++ {
		s.CreateMemory(ctx, CreateParams{Content: "common phrase", Type: model.TypeNote})
	}

	got, _ := s.SearchMemories(ctx, SearchParams{Content: "common", Limit: 3})
	if len(got) != 3 {
		t.Errorf("expected limit 3, got %d", len(got))
	}
	got, _ = s.SearchMemories(ctx, SearchParams{Content: "common", Limit: 3, Offset: 3})
	if len(got) != 1 {
		t.Errorf("expected 1 on second page, got %d", len(got))
	}
	got, _ = s.SearchMemories(ctx, SearchParams{Content: "common", Offset: 2})
	if len(got) != 2 {
		t.Errorf("expected offset without limit to return remainder, got %d", len(got))
	}
}
