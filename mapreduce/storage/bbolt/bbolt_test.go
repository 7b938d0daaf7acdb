package bbolt

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tymbaca/mapreduce-engine/mapreduce"
)

var _ mapreduce.Storage = (*BboltStorage)(nil)

func TestBbolt(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	storage, err := New(path)
	require.NoError(t, err)

	require.NoError(t, storage.Put(ctx, "2", "key1", "val1"))
	val, ok, err := storage.Get(ctx, "2", "key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "val1", val)

	require.NoError(t, storage.Put(ctx, "2", "key1", "val2"))
	val, _, err = storage.Get(ctx, "2", "key1")
	require.NoError(t, err)
	require.Equal(t, "val2", val)

	_, ok, err = storage.Get(ctx, "2", "key2")
	require.NoError(t, err)
	require.False(t, ok)

	_, ok, err = storage.Get(ctx, "3", "key1")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, storage.Put(ctx, "2", "b", "1"))
	require.NoError(t, storage.Put(ctx, "2", "a", "1"))
	keys, err := storage.Keys(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "key1"}, keys)

	keys, err = storage.Keys(ctx, "missing")
	require.NoError(t, err)
	require.Empty(t, keys)

	require.NoError(t, storage.Close())

	// values survive reopening
	storage, err = New(path)
	require.NoError(t, err)

	val, ok, err = storage.Get(ctx, "2", "key1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "val2", val)

	require.NoError(t, storage.Destroy())
	require.NoFileExists(t, path)
}
