package library

import (
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"library-console/storage"
	"library-console/storage/mocks"
)

func TestAddNewBook(t *testing.T) {
	c, dir := newCatalog(t)

	b, err := NewBook(1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	require.NoError(t, err)
	msg, err := c.AddNewBook(b)
	require.NoError(t, err)
	require.Equal(t, "The book 1111 has been successfully added.", msg)

	require.JSONEq(t, `[{"id": 1111, "title": "1984", "author": "George Orwell",
		"release_year": 1949, "genre": "Dystopian fiction", "loan_history": [],
		"current_owner": null, "extensions": 0, "reservations": [], "return_date": null}]`,
		readDocument(t, dir, storage.Books))

	got, err := c.Book(1111)
	require.NoError(t, err)
	require.Equal(t, "1984", got.Title)

	dup, err := NewBook(1111, "Animal Farm", "George Orwell", 1945, "Satire")
	require.NoError(t, err)
	_, err = c.AddNewBook(dup)
	require.ErrorIs(t, err, ErrDuplicateID)
	require.Len(t, c.Books(), 1)
}

func TestBookLookupErrors(t *testing.T) {
	c, _ := newCatalog(t)

	_, err := c.Book(4242)
	require.ErrorIs(t, err, ErrNoBookID)
	var noBook *NoBookIDError
	require.True(t, errors.As(err, &noBook))
	require.Equal(t, int64(4242), noBook.ID)

	_, err = c.User(4242)
	require.ErrorIs(t, err, ErrNoUserID)
	_, err = c.Librarian(1500)
	require.ErrorIs(t, err, ErrNoLibrarianID)
}

func TestRemoveBook(t *testing.T) {
	c, _ := newCatalog(t)
	addBook(t, c, 1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	u := addUser(t, c, 2222, "Jan Kowalski")

	_, err := u.BorrowBook(1111)
	require.NoError(t, err)
	require.NoError(t, c.UpdateData())

	_, err = c.RemoveBook(1111)
	require.ErrorIs(t, err, ErrBorrowedBook)

	_, err = u.ReturnBook(1111)
	require.NoError(t, err)
	require.NoError(t, c.UpdateData())

	msg, err := c.RemoveBook(1111)
	require.NoError(t, err)
	require.Equal(t, "The book 1111 has been successfully removed.", msg)
	_, err = c.Book(1111)
	require.ErrorIs(t, err, ErrNoBookID)

	_, err = c.RemoveBook(1111)
	require.ErrorIs(t, err, ErrNoBookID)
}

func TestAddCopyOfBook(t *testing.T) {
	c, _ := newCatalog(t)
	addBook(t, c, 1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	u := addUser(t, c, 2222, "Jan Kowalski")
	_, err := u.BorrowBook(1111)
	require.NoError(t, err)
	require.NoError(t, c.UpdateData())

	_, err = c.AddCopyOfBook(1111, 1112)
	require.NoError(t, err)

	cp, err := c.Book(1112)
	require.NoError(t, err)
	require.Equal(t, "1984", cp.Title)
	require.Equal(t, Year(1949), cp.ReleaseYear)
	require.True(t, cp.Available())
	require.Empty(t, cp.LoanHistory)
	require.Zero(t, cp.Extensions)

	_, err = c.AddCopyOfBook(9999, 1113)
	require.ErrorIs(t, err, ErrNoBookID)
	_, err = c.AddCopyOfBook(1111, 1112)
	require.ErrorIs(t, err, ErrDuplicateID)
}

func TestNewBookIDAvoidsStoredIDs(t *testing.T) {
	c, _ := newCatalog(t, WithIDGenerator(NewIDGenerator(sequence(t, 111, 111, 222))))

	id, err := c.NewBookID()
	require.NoError(t, err)
	require.Equal(t, int64(1111), id)
	addBook(t, c, id, "1984", "George Orwell", 1949, "Dystopian fiction")

	// 1111 is taken now, so the second draw wins.
	id, err = c.NewBookID()
	require.NoError(t, err)
	require.Equal(t, int64(1222), id)
}

func seedCatalog(t *testing.T, c *Catalog) {
	t.Helper()
	addBook(t, c, 1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	addBook(t, c, 1112, "Animal Farm", "George Orwell", 1945, "Satire")
	addBook(t, c, 1113, "Brave New World", "Aldous Huxley", 1932, "Dystopian fiction")
	addBook(t, c, 1114, "Lalka", "Bolesław Prus", 1890, "Novel")
}

func TestSearchBookByKeyword(t *testing.T) {
	c, _ := newCatalog(t)
	seedCatalog(t, c)

	found, err := c.SearchBookByKeyword("orwell")
	require.NoError(t, err)
	require.Len(t, found, 2)

	found, err = c.SearchBookByKeyword("1932")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, int64(1113), found[0].ID)

	found, err = c.SearchBookByKeyword("DYSTOPIAN")
	require.NoError(t, err)
	require.Len(t, found, 2)

	_, err = c.SearchBookByKeyword("")
	require.ErrorIs(t, err, ErrNoKeyword)
	_, err = c.SearchBookByKeyword("Tolkien")
	require.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestSearchByOwnerKeyword(t *testing.T) {
	c, _ := newCatalog(t)
	seedCatalog(t, c)
	u := addUser(t, c, 2222, "Jan Kowalski")
	_, err := u.BorrowBook(1114)
	require.NoError(t, err)
	require.NoError(t, c.UpdateData())

	found, err := c.SearchBookByKeyword("2222")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, int64(1114), found[0].ID)

	// unset owner and return date read as "None"
	found, err = c.SearchBookByKeyword("none")
	require.NoError(t, err)
	ids := make([]int64, len(found))
	for i, b := range found {
		ids[i] = b.ID
	}
	require.Equal(t, []int64{1111, 1112, 1113}, ids)
}

func TestAvailableProjections(t *testing.T) {
	c, _ := newCatalog(t)

	_, err := c.AvailableGenres()
	require.ErrorIs(t, err, ErrGenresNotFound)
	_, err = c.AvailableAuthors()
	require.ErrorIs(t, err, ErrAuthorsNotFound)
	_, err = c.AvailableYears()
	require.ErrorIs(t, err, ErrYearsNotFound)

	seedCatalog(t, c)

	genres, err := c.AvailableGenres()
	require.NoError(t, err)
	require.Equal(t, []string{"Dystopian fiction", "Satire", "Novel"}, genres)

	authors, err := c.AvailableAuthors()
	require.NoError(t, err)
	require.Equal(t, []string{"George Orwell", "Aldous Huxley", "Bolesław Prus"}, authors)

	years, err := c.AvailableYears()
	require.NoError(t, err)
	require.Equal(t, []int{1949, 1945, 1932, 1890}, years)
}

func TestSearchByExactField(t *testing.T) {
	c, _ := newCatalog(t)
	seedCatalog(t, c)

	byGenre, err := c.SearchBookByGenre("Dystopian fiction")
	require.NoError(t, err)
	require.Len(t, byGenre, 2)
	_, err = c.SearchBookByGenre("dystopian fiction")
	require.ErrorIs(t, err, ErrUnavailableGenre)

	byAuthor, err := c.SearchBookByAuthor("George Orwell")
	require.NoError(t, err)
	require.Len(t, byAuthor, 2)
	_, err = c.SearchBookByAuthor("Orwell")
	require.ErrorIs(t, err, ErrUnavailableAuthor)

	byYear, err := c.SearchBookByYear(1890)
	require.NoError(t, err)
	require.Len(t, byYear, 1)
	require.Equal(t, "Lalka", byYear[0].Title)
	_, err = c.SearchBookByYear(2000)
	require.ErrorIs(t, err, ErrUnavailableYear)
}

func TestUsers(t *testing.T) {
	c, dir := newCatalog(t)

	u, err := NewUser(2222, "Jan Kowalski", "haslo123")
	require.NoError(t, err)
	msg, err := c.AddNewUser(u)
	require.NoError(t, err)
	require.Equal(t, "New user Jan Kowalski has been added with ID 2222.", msg)
	require.JSONEq(t, `[{"id": 2222, "name": "Jan Kowalski", "password": "haslo123",
		"borrowed_books": [], "reservations": [], "borrowing_history": []}]`,
		readDocument(t, dir, storage.Users))

	_, err = c.AddNewUser(u)
	require.ErrorIs(t, err, ErrDuplicateID)

	msg, err = c.RemoveUser(2222)
	require.NoError(t, err)
	require.Equal(t, "User Jan Kowalski has been removed.", msg)
	_, err = c.RemoveUser(2222)
	require.ErrorIs(t, err, ErrNoUserID)
}

func TestRemoveUserWithBooks(t *testing.T) {
	c, _ := newCatalog(t)
	addBook(t, c, 1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	owner := addUser(t, c, 2222, "Jan Kowalski")
	waiting := addUser(t, c, 3333, "Anna Nowak")

	_, err := owner.BorrowBook(1111)
	require.NoError(t, err)
	_, err = waiting.ReserveBook(1111)
	require.NoError(t, err)

	_, err = c.RemoveUser(2222)
	require.ErrorIs(t, err, ErrUserWithBooks)
	_, err = c.RemoveUser(3333)
	require.ErrorIs(t, err, ErrUserWithBooks)

	_, err = waiting.CancelReservation(1111)
	require.NoError(t, err)
	_, err = c.RemoveUser(3333)
	require.NoError(t, err)
}

func TestLibrarians(t *testing.T) {
	c, _ := newCatalog(t)
	boss, err := NewLibrarian(1001, "Maria Wiśniewska", "tajne123")
	require.NoError(t, err)
	helper, err := NewLibrarian(1002, "Piotr Zieliński", "tajne456")
	require.NoError(t, err)

	_, err = c.AddNewLibrarian(boss)
	require.NoError(t, err)
	msg, err := c.AddNewLibrarian(helper)
	require.NoError(t, err)
	require.Equal(t, "New librarian Piotr Zieliński has been added with ID 1002.", msg)
	_, err = c.AddNewLibrarian(helper)
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = c.RemoveLibrarian(1001, 1001)
	require.ErrorIs(t, err, ErrRemoveYourself)
	_, err = c.RemoveLibrarian(1500, 1001)
	require.ErrorIs(t, err, ErrNoLibrarianID)

	msg, err = c.RemoveLibrarian(1002, 1001)
	require.NoError(t, err)
	require.Equal(t, "Librarian Piotr Zieliński has been removed.", msg)
	require.Len(t, c.Librarians(), 1)
}

func TestSearchUser(t *testing.T) {
	c, _ := newCatalog(t)
	addUser(t, c, 2222, "Jan Kowalski")
	addUser(t, c, 3333, "Anna Nowak")
	l, err := NewLibrarian(1222, "Jan Librarian", "tajne123")
	require.NoError(t, err)
	_, err = c.AddNewLibrarian(l)
	require.NoError(t, err)

	users, librarians, err := c.SearchUser("jan")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Len(t, librarians, 1)

	users, librarians, err = c.SearchUser("333")
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Empty(t, librarians)

	_, _, err = c.SearchUser("")
	require.ErrorIs(t, err, ErrNoKeyword)
	_, _, err = c.SearchUser("Zofia")
	require.ErrorIs(t, err, ErrKeywordNotFound)
}

func TestStats(t *testing.T) {
	c, _ := newCatalog(t)
	_, err := c.GetBooksStats()
	require.ErrorIs(t, err, ErrNoBooks)
	_, err = c.GetUsersStats()
	require.ErrorIs(t, err, ErrNoUsers)

	seedCatalog(t, c)
	u := addUser(t, c, 2222, "Jan Kowalski")
	addUser(t, c, 3333, "Anna Nowak")
	for i := 0; i < 2; i++ {
		_, err = u.BorrowBook(1111)
		require.NoError(t, err)
		_, err = u.ReturnBook(1111)
		require.NoError(t, err)
	}
	require.NoError(t, c.UpdateData())

	books, err := c.GetBooksStats()
	require.NoError(t, err)
	require.Len(t, books, 4)
	require.Equal(t, LoanStat{ID: 1111, Label: "1984", Loans: 2}, books[0])
	require.Equal(t, LoanStat{ID: 1112, Label: "Animal Farm", Loans: 0}, books[1])

	users, err := c.GetUsersStats()
	require.NoError(t, err)
	require.Equal(t, []LoanStat{
		{ID: 2222, Label: "Jan Kowalski", Loans: 2},
		{ID: 3333, Label: "Anna Nowak", Loans: 0},
	}, users)
}

func TestReturnDateCheck(t *testing.T) {
	c, _ := newCatalog(t)
	seedCatalog(t, c)
	u := addUser(t, c, 2222, "Jan Kowalski")
	for _, id := range []int64{1111, 1112, 1113, 1114} {
		_, err := u.BorrowBook(id)
		require.NoError(t, err)
	}

	// testToday is 2024-03-16.
	dueDates := map[int64]string{
		1111: "2024-03-14", // overdue
		1112: "2024-03-20", // approaching
		1113: "2024-03-16", // due today
		1114: "2024-04-15", // fine
	}
	for id, due := range dueDates {
		b := storedBook(t, c, id)
		require.NoError(t, b.SetReturnDate(date(t, due)))
	}
	require.NoError(t, c.UpdateData())

	r, err := c.ReturnDateCheck(2222)
	require.NoError(t, err)
	require.Equal(t, []int64{1112}, r.Approaching)
	require.Equal(t, []int64{1111}, r.Overdue)
	require.Equal(t, "The due date for the following books is approaching: 1112. "+
		"The due date for the following books has passed: 1111. Please return them as soon as possible.", r.String())

	_, err = c.ReturnDateCheck(9999)
	require.ErrorIs(t, err, ErrNoUserID)
}

func TestReturnDateCheckNothingDue(t *testing.T) {
	c, _ := newCatalog(t)
	seedCatalog(t, c)
	u := addUser(t, c, 2222, "Jan Kowalski")
	_, err := u.BorrowBook(1111)
	require.NoError(t, err)
	require.NoError(t, c.UpdateData())

	r, err := c.ReturnDateCheck(2222)
	require.NoError(t, err)
	require.True(t, r.Empty())
	require.Equal(t, "All your borrowed books are within the due date.", r.String())
}

func TestCatalogStoreFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	broken := errors.New("disk on fire")

	store.EXPECT().Load(storage.Books).Return([]byte(`[]`), nil).AnyTimes()
	store.EXPECT().Load(storage.Users).Return([]byte(`[]`), nil).AnyTimes()
	store.EXPECT().Load(storage.Librarians).Return([]byte(`[]`), nil).AnyTimes()
	store.EXPECT().Save(storage.Books, gomock.Any()).Return(broken)

	c, err := NewCatalog(store)
	require.NoError(t, err)

	b, err := NewBook(1111, "1984", "George Orwell", 1949, "Dystopian fiction")
	require.NoError(t, err)
	_, err = c.AddNewBook(b)
	require.ErrorIs(t, err, broken)
	require.Empty(t, c.Books())
}

func TestCatalogCorruptDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Load(storage.Books).Return([]byte(`{not json`), nil)

	_, err := NewCatalog(store)
	var docErr *DocumentError
	require.True(t, errors.As(err, &docErr))
	require.Equal(t, storage.Books, docErr.Collection)
}

func TestLegacyStringYearDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Load(storage.Books).Return([]byte(`[{"id": 1111, "title": "1984",
		"author": "George Orwell", "release_year": "1949", "genre": "Dystopian fiction"}]`), nil)
	store.EXPECT().Load(storage.Users).Return([]byte(`[]`), nil)
	store.EXPECT().Load(storage.Librarians).Return([]byte(`[]`), nil)

	c, err := NewCatalog(store)
	require.NoError(t, err)
	years, err := c.AvailableYears()
	require.NoError(t, err)
	require.Equal(t, []int{1949}, years)

	b, err := c.Book(1111)
	require.NoError(t, err)
	require.NotNil(t, b.LoanHistory)
	require.NotNil(t, b.Reservations)
}
