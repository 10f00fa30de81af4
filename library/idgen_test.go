package library

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// sequence replays draws in order and fails the test when they run out.
func sequence(t *testing.T, draws ...int64) func(int64) int64 {
	return func(n int64) int64 {
		require.NotEmpty(t, draws, "unexpected draw")
		d := draws[0]
		draws = draws[1:]
		require.Less(t, d, n)
		return d
	}
}

func TestGenerateIDSkipsTaken(t *testing.T) {
	g := NewIDGenerator(sequence(t, 0, 0, 5))
	id := g.GenerateID(1000, 9999, []int64{1000})
	require.Equal(t, int64(1005), id)
}

func TestGenerateIDRanges(t *testing.T) {
	g := NewIDGenerator(sequence(t, 0, 8999, 0, 7999, 0, 999))

	require.Equal(t, BookIDMin, g.BookID(nil))
	require.Equal(t, BookIDMax, g.BookID(nil))
	require.Equal(t, ReaderIDMin, g.ReaderID(nil))
	require.Equal(t, ReaderIDMax, g.ReaderID(nil))
	require.Equal(t, LibrarianIDMin, g.LibrarianID(nil))
	require.Equal(t, LibrarianIDMax, g.LibrarianID(nil))
}

func TestGenerateIDRandomSource(t *testing.T) {
	g := NewIDGenerator(nil)
	existing := []int64{1000, 1001, 1002}
	for i := 0; i < 500; i++ {
		id := g.LibrarianID(existing)
		require.GreaterOrEqual(t, id, LibrarianIDMin)
		require.LessOrEqual(t, id, LibrarianIDMax)
		require.NotContains(t, existing, id)
	}
}

func TestGenerateIDLastFreeSlot(t *testing.T) {
	var existing []int64
	for id := int64(1000); id < 1010; id++ {
		if id != 1007 {
			existing = append(existing, id)
		}
	}
	g := NewIDGenerator(nil)
	require.Equal(t, int64(1007), g.GenerateID(1000, 1009, existing))
}
