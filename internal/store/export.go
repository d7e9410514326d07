package store

import (
	"context"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ctxmem/ctxmem/internal/model"
)

// Snapshot is a portable JSON export of the whole store.
type Snapshot struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Memories  []model.Memory `json:"memories"`
}

// ExportAll captures every memory (with resolved tags) into a snapshot.
// Export is a plain read path and does not touch access counters.
func (s *SQLiteStore) ExportAll(ctx context.Context) (*Snapshot, error) {
	memories, err := s.queryMemories(ctx,
		`SELECT id, content, memory_type, context, created_at, updated_at, access_count, last_accessed
		 FROM memories ORDER BY id`)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entropy := rand.New(rand.NewSource(now.UnixNano()))
	return &Snapshot{
		ID:        ulid.MustNew(ulid.Timestamp(now), entropy).String(),
		CreatedAt: now,
		Memories:  memories,
	}, nil
}

// ImportAll stores the snapshot's memories as new entries and returns the
// number imported. Ids, timestamps and access counters are reassigned; only
// the substantive fields carry over.
func (s *SQLiteStore) ImportAll(ctx context.Context, snap *Snapshot) (int, error) {
	imported := 0
	for _, m := range snap.Memories {
		_, err := s.CreateMemory(ctx, CreateParams{
			Content: m.Content,
			Type:    m.Type,
			Context: m.Context,
			Tags:    m.Tags,
		})
		if err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
