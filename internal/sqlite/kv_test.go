package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/robolab/internal/kv"
	"github.com/stretchr/testify/require"
)

func TestKVStore(t *testing.T) {
	store := NewKVStore(NewTestDB(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "robots-storage")
	require.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, store.Set(ctx, "robots-storage", []byte("v1")))
	require.NoError(t, store.Set(ctx, "robots-storage", []byte("v2")))

	got, err := store.Get(ctx, "robots-storage")
	require.NoError(t, err)
	require.Equal(t, "v2", string(got))

	require.NoError(t, store.Delete(ctx, "robots-storage"))
	_, err = store.Get(ctx, "robots-storage")
	require.ErrorIs(t, err, kv.ErrNotFound)
}
