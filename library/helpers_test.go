package library

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"library-console/storage"
)

// testToday is the pinned "now" of every catalog built by newCatalog.
var testToday = time.Date(2024, 3, 16, 10, 30, 0, 0, time.UTC)

func newCatalog(t *testing.T, opts ...Option) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewJSONStore(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]Option{
		WithClock(func() time.Time { return testToday }),
		WithLogger(zap.NewNop()),
	}, opts...)
	c, err := NewCatalog(store, opts...)
	require.NoError(t, err)
	return c, dir
}

func addBook(t *testing.T, c *Catalog, id int64, title, author string, year int, genre string) *Book {
	t.Helper()
	b, err := NewBook(id, title, author, year, genre)
	require.NoError(t, err)
	_, err = c.AddNewBook(b)
	require.NoError(t, err)
	return b
}

func addUser(t *testing.T, c *Catalog, id int64, name string) *User {
	t.Helper()
	u, err := NewUser(id, name, "haslo123")
	require.NoError(t, err)
	_, err = c.AddNewUser(u)
	require.NoError(t, err)
	return u
}

// storedBook reads book id straight from the store, bypassing the catalog's
// in-memory view.
func storedBook(t *testing.T, c *Catalog, id int64) *Book {
	t.Helper()
	b, err := c.repo.book(id)
	require.NoError(t, err)
	return b
}

func storedUser(t *testing.T, c *Catalog, id int64) *User {
	t.Helper()
	u, err := c.repo.user(id)
	require.NoError(t, err)
	return u
}

func readDocument(t *testing.T, dir string, c storage.Collection) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, string(c)+".json"))
	require.NoError(t, err)
	return string(data)
}

func date(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}
