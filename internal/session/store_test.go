package session

import (
	"context"
	"testing"
	"time"

	"csvpilot/domain/core"
	"csvpilot/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	_, ok := store.Get(ctx, "sess_missing")
	assert.False(t, ok)

	sc := ports.SessionContext{
		SessionID: "sess_a",
		DatasetID: "ds_a",
		FilePath:  "uploads/a.csv",
	}
	require.NoError(t, store.Put(ctx, sc))

	got, ok := store.Get(ctx, "sess_a")
	require.True(t, ok)
	assert.Equal(t, sc.FilePath, got.FilePath)
	assert.False(t, got.UpdatedAt.IsZero(), "Put stamps UpdatedAt")

	require.NoError(t, store.Delete(ctx, "sess_a"))
	_, ok = store.Get(ctx, "sess_a")
	assert.False(t, ok)
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.SessionContext{SessionID: "sess_a"}))
	time.Sleep(20 * time.Millisecond)

	_, ok := store.Get(ctx, "sess_a")
	assert.False(t, ok, "expired entries are invisible")
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(10 * time.Millisecond)
	ctx := context.Background()

	for _, id := range []core.SessionID{"sess_a", "sess_b", "sess_c"} {
		require.NoError(t, store.Put(ctx, ports.SessionContext{SessionID: id}))
	}
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 3, store.Sweep())
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreCopiesOnGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, ports.SessionContext{SessionID: "sess_a", FilePath: "one.csv"}))
	got, ok := store.Get(ctx, "sess_a")
	require.True(t, ok)
	got.FilePath = "mutated.csv"

	again, ok := store.Get(ctx, "sess_a")
	require.True(t, ok)
	assert.Equal(t, "one.csv", again.FilePath)
}
