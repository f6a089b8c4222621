package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_PutGet(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("%PDF-1.4 fake resume")

	require.NoError(t, store.Put(ctx, "job-1/upload-1.pdf", data))

	got, err := store.Get(ctx, "job-1/upload-1.pdf")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFSStore_Overwrite(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "k.txt", []byte("one")))
	require.NoError(t, store.Put(ctx, "k.txt", []byte("two")))

	got, err := store.Get(ctx, "k.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestFSStore_MissingKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope.pdf")
	assert.Error(t, err)
}

func TestFSStore_RejectsTraversal(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, store.Put(ctx, "../escape.txt", []byte("x")))
	assert.Error(t, store.Put(ctx, "/abs.txt", []byte("x")))
	_, err = store.Get(ctx, "../escape.txt")
	assert.Error(t, err)
}
