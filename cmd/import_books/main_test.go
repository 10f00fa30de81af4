package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-console/library"
	"library-console/storage"
)

func TestImportIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIBRARY_STORAGE_DRIVER", "json")
	t.Setenv("LIBRARY_STORAGE_DIR", dir)

	require.NoError(t, run("", false))
	require.NoError(t, run("", false))

	store, err := storage.NewJSONStore(dir, zap.NewNop())
	require.NoError(t, err)
	c, err := library.NewCatalog(store)
	require.NoError(t, err)
	require.Len(t, c.Books(), len(classics))

	books, err := c.SearchBookByAuthor("J.R.R. Tolkien")
	require.NoError(t, err)
	require.Len(t, books, 3)

	require.NoError(t, run("", true))
	require.NoError(t, c.UpdateData())
	require.Len(t, c.Books(), len(classics))
}
