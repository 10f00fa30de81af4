package library

import "math/rand"

// Id ranges per role. Readers and librarians never overlap; book ids share
// numbers with both.
const (
	BookIDMin      int64 = 1000
	BookIDMax      int64 = 9999
	ReaderIDMin    int64 = 2000
	ReaderIDMax    int64 = 9999
	LibrarianIDMin int64 = 1000
	LibrarianIDMax int64 = 1999
)

// IDGenerator draws random ids until it finds one that is not taken. It never
// gives up, so a full range loops forever.
type IDGenerator struct {
	intn func(n int64) int64
}

// NewIDGenerator uses intn to draw a value in [0, n). A nil intn uses the
// global math/rand source.
func NewIDGenerator(intn func(n int64) int64) *IDGenerator {
	if intn == nil {
		intn = rand.Int63n
	}
	return &IDGenerator{intn: intn}
}

// GenerateID returns a value in [lo, hi] that is not in existing.
func (g *IDGenerator) GenerateID(lo, hi int64, existing []int64) int64 {
	taken := make(map[int64]struct{}, len(existing))
	for _, id := range existing {
		taken[id] = struct{}{}
	}
	for {
		id := lo + g.intn(hi-lo+1)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

func (g *IDGenerator) BookID(existing []int64) int64 {
	return g.GenerateID(BookIDMin, BookIDMax, existing)
}

func (g *IDGenerator) ReaderID(existing []int64) int64 {
	return g.GenerateID(ReaderIDMin, ReaderIDMax, existing)
}

func (g *IDGenerator) LibrarianID(existing []int64) int64 {
	return g.GenerateID(LibrarianIDMin, LibrarianIDMax, existing)
}
