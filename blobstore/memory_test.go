package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "codebook.bin", strings.NewReader("payload"), 7))

	blob, err := store.Open(ctx, "codebook.bin")
	require.NoError(t, err)
	defer blob.Close()

	assert.Equal(t, int64(7), blob.Size())
	got, err := io.ReadAll(blob)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(got))
}

func TestMemoryStore_OpenMissing(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Open(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "cb/a", strings.NewReader("1"), 1))
	require.NoError(t, store.Put(ctx, "cb/b", strings.NewReader("2"), 1))

	names, err := store.List(ctx, "cb/")
	require.NoError(t, err)
	assert.Equal(t, []string{"cb/a", "cb/b"}, names)

	require.NoError(t, store.Delete(ctx, "cb/a"))
	names, err = store.List(ctx, "cb/")
	require.NoError(t, err)
	assert.Equal(t, []string{"cb/b"}, names)
}
