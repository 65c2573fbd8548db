package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key := "documents/report.pdf"
	require.NoError(t, store.Put(ctx, key, strings.NewReader("%PDF-1.4 data"), 13, "application/pdf"))

	ok, err := store.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 data", string(data))

	require.NoError(t, store.Delete(ctx, key))
	ok, err = store.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStoreMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(ctx, "documents/missing.pdf")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, store.Delete(ctx, "documents/missing.pdf"), ErrNotExist)
}

func TestLocalStoreKeysStayInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "../../escape.txt", strings.NewReader("x"), 1, "text/plain"))
	ok, err := store.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = store.Open(ctx, "  ")
	assert.Error(t, err)
}

func TestNewDocumentKey(t *testing.T) {
	a := NewDocumentKey("Annual Report.PDF")
	b := NewDocumentKey("Annual Report.PDF")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "documents/"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.Len(t, strings.TrimPrefix(a, "documents/"), 36+4)
}

func TestRemoveAllIgnoresMissing(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "documents/a.pdf", strings.NewReader("a"), 1, "application/pdf"))

	RemoveAll(ctx, store, []string{"documents/a.pdf", "documents/gone.pdf"})

	ok, err := store.Exists(ctx, "documents/a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}
