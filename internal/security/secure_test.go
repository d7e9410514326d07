package security

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxmem/ctxmem/internal/memory"
	"github.com/ctxmem/ctxmem/internal/model"
	"github.com/ctxmem/ctxmem/internal/store"
)

func newTestBase(t *testing.T) (*memory.Manager, *store.SQLiteStore) {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return memory.NewManager(s), s
}

func TestSecureStoreEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	base, raw := newTestBase(t)

	c, err := NewCipher("pw", nil)
	require.NoError(t, err)
	sec := NewSecureManager(base, c, nil)

	id, err := sec.Store(ctx, memory.StoreRequest{
		Content: "the launch code is 0000",
		Type:    model.TypeFact,
		Context: "war games",
		Tags:    []string{"movies"},
	})
	require.NoError(t, err)

	// The raw row must not contain the plaintext.
	stored, err := raw.GetMemory(ctx, id)
	require.NoError(t, err)
	assert.NotContains(t, stored.Content, "launch code")
	assert.NotContains(t, stored.Context, "war games")
	assert.Equal(t, []string{"movies"}, stored.Tags, "tags stay in the clear for indexing")

	// The decorated read path restores it.
	got, err := sec.GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "the launch code is 0000", got.Content)
	assert.Equal(t, "war games", got.Context)
}

func TestSecureStoreWithoutCipher(t *testing.T) {
	ctx := context.Background()
	base, _ := newTestBase(t)
	sec := NewSecureManager(base, nil, NewPolicy(nil, 0, true))

	id, err := sec.Store(ctx, memory.StoreRequest{
		Content: "reach me at bob@example.com",
		Type:    model.TypeNote,
	})
	require.NoError(t, err)

	got, err := sec.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "reach me at [EMAIL]", got.Content, "masking applies even without encryption")
}

func TestSecureStoreScreensBlockedContent(t *testing.T) {
	ctx := context.Background()
	base, _ := newTestBase(t)
	sec := NewSecureManager(base, nil, NewPolicy([]string{"forbidden"}, 0, false))

	_, err := sec.Store(ctx, memory.StoreRequest{Content: "this is forbidden knowledge", Type: model.TypeNote})
	assert.Error(t, err)

	_, err = sec.Store(ctx, memory.StoreRequest{Content: "ok", Type: model.TypeNote, Context: "forbidden zone"})
	assert.Error(t, err, "context is screened too")

	n, err := base.Count(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetByIDAbsent(t *testing.T) {
	ctx := context.Background()
	base, _ := newTestBase(t)

	c, err := NewCipher("pw", nil)
	require.NoError(t, err)
	sec := NewSecureManager(base, c, nil)

	got, err := sec.GetByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	base, raw := newTestBase(t)
	sec := NewSecureManager(base, nil, NewPolicy(nil, 30, false))

	oldID, err := base.Store(ctx, memory.StoreRequest{Content: "ancient", Type: model.TypeNote})
	require.NoError(t, err)
	_, err = base.Store(ctx, memory.StoreRequest{Content: "fresh", Type: model.TypeNote})
	require.NoError(t, err)

	// Backdate one row past the retention window.
	stale := time.Now().UTC().Add(-40 * 24 * time.Hour).Format(time.RFC3339)
	_, err = raw.DB().Exec(`UPDATE memories SET created_at = ? WHERE id = ?`, stale, oldID)
	require.NoError(t, err)

	purged, err := sec.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	remaining, err := base.List(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "fresh", remaining[0].Content)
}

func TestPurgeExpiredNoRetention(t *testing.T) {
	ctx := context.Background()
	base, _ := newTestBase(t)
	sec := NewSecureManager(base, nil, nil)

	_, err := base.Store(ctx, memory.StoreRequest{Content: "kept forever", Type: model.TypeNote})
	require.NoError(t, err)

	purged, err := sec.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestStatus(t *testing.T) {
	base, _ := newTestBase(t)

	c, err := NewCipher("pw", nil)
	require.NoError(t, err)

	st := NewSecureManager(base, c, NewPolicy([]string{"a", "b"}, 7, true)).Status()
	assert.True(t, st.EncryptionEnabled)
	assert.Equal(t, 2, st.BlockedKeywords)
	assert.Equal(t, 7, st.RetentionDays)

	st = NewSecureManager(base, nil, nil).Status()
	assert.False(t, st.EncryptionEnabled)
	assert.Zero(t, st.BlockedKeywords)
	assert.Zero(t, st.RetentionDays)
}
