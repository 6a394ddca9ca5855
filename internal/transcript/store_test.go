package transcript

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportchat/internal/models"
)

func newSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	dsn := fmt.Sprintf("file:transcript-%s?mode=memory&cache=shared", uuid.NewString())
	b, err := OpenSQLiteBackend(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func backends(t *testing.T) map[string]Backend {
	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"sqlite": newSQLiteBackend(t),
	}
}

func TestStoreKeepsAppendOrder(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := backend.Open("s1")

			want := make([]models.Message, 0, 6)
			for i := 0; i < 6; i++ {
				role := models.RoleUser
				if i%2 == 1 {
					role = models.RoleAssistant
				}
				msg := models.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
				require.NoError(t, store.Append(ctx, msg))
				want = append(want, msg)
			}
			// duplicates are kept
			require.NoError(t, store.Append(ctx, want[0]))
			want = append(want, want[0])

			got, err := store.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestStoreClear(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := backend.Open("s1")

			require.NoError(t, store.Clear(ctx))
			got, err := store.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Append(ctx, models.Message{Role: models.RoleUser, Content: "a"}))
			require.NoError(t, store.Append(ctx, models.Message{Role: models.RoleAssistant, Content: "b"}))
			require.NoError(t, store.Clear(ctx))
			require.NoError(t, store.Clear(ctx))

			got, err = store.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, got)

			require.NoError(t, store.Append(ctx, models.Message{Role: models.RoleUser, Content: "again"}))
			got, err = store.All(ctx)
			require.NoError(t, err)
			assert.Equal(t, []models.Message{{Role: models.RoleUser, Content: "again"}}, got)
		})
	}
}

func TestSessionsDoNotShareTranscripts(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			a := backend.Open("a")
			b := backend.Open("b")

			require.NoError(t, a.Append(ctx, models.Message{Role: models.RoleUser, Content: "only a"}))
			require.NoError(t, b.Clear(ctx))

			gotA, err := a.All(ctx)
			require.NoError(t, err)
			assert.Len(t, gotA, 1)

			gotB, err := b.All(ctx)
			require.NoError(t, err)
			assert.Empty(t, gotB)

			require.NoError(t, backend.Drop(ctx, "a"))
		})
	}
}

func TestMemoryStoreAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Append(ctx, models.Message{Role: models.RoleUser, Content: "original"}))

	got, err := store.All(ctx)
	require.NoError(t, err)
	got[0].Content = "mutated"

	again, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", again[0].Content)
}

func TestNewBackend(t *testing.T) {
	b, err := NewBackend("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryBackend{}, b)

	_, err = NewBackend("sqlite", "/tmp/transcripts.db")
	assert.Error(t, err)

	_, err = NewBackend("redis", "")
	assert.Error(t, err)
}

func TestSQLiteStoreRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	b := newSQLiteBackend(t)
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, seq, role, content, created_at) VALUES ('s1', 1, 'system', 'x', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	_, err = b.Open("s1").All(ctx)
	assert.ErrorContains(t, err, `unknown role "system"`)
}

func TestSQLiteStoreWrapsDriverErrors(t *testing.T) {
	b := newSQLiteBackend(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Open("s1").Append(ctx, models.Message{Role: models.RoleUser, Content: "late"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorContains(t, err, "append message")
}
