package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Lifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("in memory blob")
	require.NoError(t, store.Put(ctx, "a/blob-1", data))

	blob, err := store.Open(ctx, "a/blob-1")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(len(data)), blob.Size())

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	// Overwriting after Open must not affect the open handle.
	require.NoError(t, store.Put(ctx, "a/blob-1", []byte("replaced")))
	got, err = ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, "a/blob-1"))
	_, err = store.Open(ctx, "a/blob-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_CreateStream(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	w, err := store.Create(ctx, "streamed")
	require.NoError(t, err)
	_, err = w.Write([]byte("part one "))
	require.NoError(t, err)
	_, err = w.Write([]byte("part two"))
	require.NoError(t, err)

	// Invisible until Close.
	_, err = store.Open(ctx, "streamed")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, "streamed")
	require.NoError(t, err)
	defer blob.Close()

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, []byte("part one part two"), got)
}

func TestMemoryStore_List(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, name := range []string{"seg/b", "seg/a", "cat/1"} {
		require.NoError(t, store.Put(ctx, name, nil))
	}

	names, err := store.List(ctx, "seg/")
	require.NoError(t, err)
	assert.Equal(t, []string{"seg/a", "seg/b"}, names)

	all, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cat/1", "seg/a", "seg/b"}, all)
}

func TestMemoryBlob_ReadSemantics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "b", []byte("0123456789")))

	blob, err := store.Open(ctx, "b")
	require.NoError(t, err)
	defer blob.Close()

	// Short read at the tail returns io.EOF.
	buf := make([]byte, 6)
	n, err := blob.ReadAt(ctx, buf, 7)
	assert.Equal(t, 3, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "789", string(buf[:n]))

	// Past the end.
	_, err = blob.ReadAt(ctx, buf, 42)
	assert.ErrorIs(t, err, io.EOF)

	_, err = blob.ReadRange(ctx, 42, 1)
	assert.ErrorIs(t, err, io.EOF)

	// Mappable fast path.
	mappable, ok := blob.(Mappable)
	require.True(t, ok)
	raw, err := mappable.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789"), raw)
}

func TestReadAll_EmptyBlob(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)
	defer blob.Close()

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, got)
}
