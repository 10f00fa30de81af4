package library

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"library-console/storage"
)

// Catalog owns the in-memory books, users and librarians and every operation
// that spans them. The store stays the source of truth: each catalog
// mutation re-reads the affected collection before changing it, and
// UpdateData refreshes the in-memory view after entities wrote on their own.
type Catalog struct {
	repo *repository
	log  *zap.Logger
	ids  *IDGenerator

	books      []*Book
	users      []*User
	librarians []*Librarian
}

type Option func(*Catalog)

func WithLogger(log *zap.Logger) Option {
	return func(c *Catalog) { c.log = log }
}

// WithClock replaces time.Now for due dates and reminders.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.repo.now = now }
}

func WithPolicy(p LendingPolicy) Option {
	return func(c *Catalog) { c.repo.policy = p }
}

func WithIDGenerator(g *IDGenerator) Option {
	return func(c *Catalog) { c.ids = g }
}

// NewCatalog loads all three collections from store.
func NewCatalog(store storage.Store, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		repo: &repository{store: store, now: time.Now, policy: DefaultLendingPolicy},
		log:  zap.NewNop(),
		ids:  NewIDGenerator(nil),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.repo.log = c.log.Named("repository")
	if err := c.UpdateData(); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateData reloads every collection from the store.
func (c *Catalog) UpdateData() error {
	books, err := c.repo.loadBooks()
	if err != nil {
		return err
	}
	users, err := c.repo.loadUsers()
	if err != nil {
		return err
	}
	librarians, err := c.repo.loadLibrarians()
	if err != nil {
		return err
	}
	c.books, c.users, c.librarians = books, users, librarians
	return nil
}

func (c *Catalog) Policy() LendingPolicy { return c.repo.policy }

func (c *Catalog) Books() []*Book           { return slices.Clone(c.books) }
func (c *Catalog) Users() []*User           { return slices.Clone(c.users) }
func (c *Catalog) Librarians() []*Librarian { return slices.Clone(c.librarians) }

// ------------------ Book helpers ------------------

// NewBookID draws an id not used by any stored book.
func (c *Catalog) NewBookID() (int64, error) {
	books, err := c.repo.loadBooks()
	if err != nil {
		return 0, err
	}
	return c.ids.BookID(bookIDs(books)), nil
}

// Book returns the catalog's snapshot of book id as of the last load. Its
// mutators patch the stored record, so they are safe on a stale snapshot;
// read fields again after UpdateData.
func (c *Catalog) Book(id int64) (*Book, error) {
	if i := indexByID(c.books, id, func(b *Book) int64 { return b.ID }); i >= 0 {
		return c.books[i], nil
	}
	return nil, &NoBookIDError{ID: id}
}

func (c *Catalog) AddNewBook(b *Book) (string, error) {
	books, err := c.repo.loadBooks()
	if err != nil {
		return "", err
	}
	if indexByID(books, b.ID, func(b *Book) int64 { return b.ID }) >= 0 {
		return "", fmt.Errorf("book %d: %w", b.ID, ErrDuplicateID)
	}
	b.normalize()
	b.repo = c.repo
	books = append(books, b)
	if err := c.repo.saveBooks(books); err != nil {
		return "", err
	}
	c.books = books
	c.log.Info("book added", zap.Int64("book_id", b.ID), zap.String("title", b.Title))
	return fmt.Sprintf("The book %d has been successfully added.", b.ID), nil
}

// RemoveBook deletes a book that is on the shelf.
func (c *Catalog) RemoveBook(id int64) (string, error) {
	books, err := c.repo.loadBooks()
	if err != nil {
		return "", err
	}
	i := indexByID(books, id, func(b *Book) int64 { return b.ID })
	if i < 0 {
		return "", &NoBookIDError{ID: id}
	}
	if !books[i].Available() {
		return "", ErrBorrowedBook
	}
	books = slices.Delete(books, i, i+1)
	if err := c.repo.saveBooks(books); err != nil {
		return "", err
	}
	c.books = books
	c.log.Info("book removed", zap.Int64("book_id", id))
	return fmt.Sprintf("The book %d has been successfully removed.", id), nil
}

// AddCopyOfBook adds a new shelf copy of book id under newID.
func (c *Catalog) AddCopyOfBook(id, newID int64) (string, error) {
	books, err := c.repo.loadBooks()
	if err != nil {
		return "", err
	}
	i := indexByID(books, id, func(b *Book) int64 { return b.ID })
	if i < 0 {
		return "", &NoBookIDError{ID: id}
	}
	src := books[i]
	cp, err := NewBook(newID, src.Title, src.Author, int(src.ReleaseYear), src.Genre)
	if err != nil {
		return "", err
	}
	if _, err := c.AddNewBook(cp); err != nil {
		return "", err
	}
	return fmt.Sprintf("The copy of book %d has been successfully added with ID %d.", id, newID), nil
}

// SearchBookByKeyword matches kw case-insensitively against every field of
// every book.
func (c *Catalog) SearchBookByKeyword(kw string) ([]*Book, error) {
	if kw == "" {
		return nil, ErrNoKeyword
	}
	needle := strings.ToLower(kw)
	var found []*Book
	for _, b := range c.books {
		for _, v := range b.fieldValues() {
			if strings.Contains(strings.ToLower(v), needle) {
				found = append(found, b)
				break
			}
		}
	}
	if len(found) == 0 {
		return nil, ErrKeywordNotFound
	}
	return found, nil
}

func (c *Catalog) AvailableGenres() ([]string, error) {
	genres := distinct(c.books, func(b *Book) string { return b.Genre })
	if len(genres) == 0 {
		return nil, ErrGenresNotFound
	}
	return genres, nil
}

func (c *Catalog) AvailableAuthors() ([]string, error) {
	authors := distinct(c.books, func(b *Book) string { return b.Author })
	if len(authors) == 0 {
		return nil, ErrAuthorsNotFound
	}
	return authors, nil
}

func (c *Catalog) AvailableYears() ([]int, error) {
	years := distinct(c.books, func(b *Book) int { return int(b.ReleaseYear) })
	if len(years) == 0 {
		return nil, ErrYearsNotFound
	}
	return years, nil
}

func (c *Catalog) SearchBookByGenre(genre string) ([]*Book, error) {
	genres, err := c.AvailableGenres()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(genres, genre) {
		return nil, ErrUnavailableGenre
	}
	return c.filterBooks(func(b *Book) bool { return b.Genre == genre }), nil
}

func (c *Catalog) SearchBookByAuthor(author string) ([]*Book, error) {
	authors, err := c.AvailableAuthors()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(authors, author) {
		return nil, ErrUnavailableAuthor
	}
	return c.filterBooks(func(b *Book) bool { return b.Author == author }), nil
}

func (c *Catalog) SearchBookByYear(year int) ([]*Book, error) {
	years, err := c.AvailableYears()
	if err != nil {
		return nil, err
	}
	if !slices.Contains(years, year) {
		return nil, ErrUnavailableYear
	}
	return c.filterBooks(func(b *Book) bool { return int(b.ReleaseYear) == year }), nil
}

func (c *Catalog) filterBooks(keep func(*Book) bool) []*Book {
	var out []*Book
	for _, b := range c.books {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}

// ------------------ User helpers ------------------

func (c *Catalog) NewUserID() (int64, error) {
	users, err := c.repo.loadUsers()
	if err != nil {
		return 0, err
	}
	return c.ids.ReaderID(userIDs(users)), nil
}

func (c *Catalog) User(id int64) (*User, error) {
	if i := indexByID(c.users, id, func(u *User) int64 { return u.ID }); i >= 0 {
		return c.users[i], nil
	}
	return nil, &NoUserIDError{ID: id}
}

func (c *Catalog) AddNewUser(u *User) (string, error) {
	users, err := c.repo.loadUsers()
	if err != nil {
		return "", err
	}
	if indexByID(users, u.ID, func(u *User) int64 { return u.ID }) >= 0 {
		return "", fmt.Errorf("user %d: %w", u.ID, ErrDuplicateID)
	}
	u.normalize()
	u.repo = c.repo
	users = append(users, u)
	if err := c.repo.saveUsers(users); err != nil {
		return "", err
	}
	c.users = users
	c.log.Info("user added", zap.Int64("user_id", u.ID))
	return fmt.Sprintf("New user %s has been added with ID %d.", u.Name, u.ID), nil
}

// RemoveUser deletes a reader without loans or reservations.
func (c *Catalog) RemoveUser(id int64) (string, error) {
	users, err := c.repo.loadUsers()
	if err != nil {
		return "", err
	}
	i := indexByID(users, id, func(u *User) int64 { return u.ID })
	if i < 0 {
		return "", &NoUserIDError{ID: id}
	}
	u := users[i]
	if len(u.BorrowedBooks) > 0 || len(u.Reservations) > 0 {
		return "", ErrUserWithBooks
	}
	users = slices.Delete(users, i, i+1)
	if err := c.repo.saveUsers(users); err != nil {
		return "", err
	}
	c.users = users
	c.log.Info("user removed", zap.Int64("user_id", id))
	return fmt.Sprintf("User %s has been removed.", u.Name), nil
}

// SearchUser matches keyword against the id and name of readers and
// librarians.
func (c *Catalog) SearchUser(keyword string) ([]*User, []*Librarian, error) {
	if keyword == "" {
		return nil, nil, ErrNoKeyword
	}
	match := func(id int64, name string) bool {
		needle := strings.ToLower(keyword)
		return strings.Contains(strconv.FormatInt(id, 10), needle) ||
			strings.Contains(strings.ToLower(name), needle)
	}
	var users []*User
	for _, u := range c.users {
		if match(u.ID, u.Name) {
			users = append(users, u)
		}
	}
	var librarians []*Librarian
	for _, l := range c.librarians {
		if match(l.ID, l.Name) {
			librarians = append(librarians, l)
		}
	}
	if len(users) == 0 && len(librarians) == 0 {
		return nil, nil, ErrKeywordNotFound
	}
	return users, librarians, nil
}

// ------------------ Librarian helpers ------------------

func (c *Catalog) NewLibrarianID() (int64, error) {
	librarians, err := c.repo.loadLibrarians()
	if err != nil {
		return 0, err
	}
	ids := make([]int64, len(librarians))
	for i, l := range librarians {
		ids[i] = l.ID
	}
	return c.ids.LibrarianID(ids), nil
}

func (c *Catalog) Librarian(id int64) (*Librarian, error) {
	if i := indexByID(c.librarians, id, func(l *Librarian) int64 { return l.ID }); i >= 0 {
		return c.librarians[i], nil
	}
	return nil, &NoLibrarianIDError{ID: id}
}

func (c *Catalog) AddNewLibrarian(l *Librarian) (string, error) {
	librarians, err := c.repo.loadLibrarians()
	if err != nil {
		return "", err
	}
	if indexByID(librarians, l.ID, func(l *Librarian) int64 { return l.ID }) >= 0 {
		return "", fmt.Errorf("librarian %d: %w", l.ID, ErrDuplicateID)
	}
	librarians = append(librarians, l)
	if err := c.repo.saveLibrarians(librarians); err != nil {
		return "", err
	}
	c.librarians = librarians
	c.log.Info("librarian added", zap.Int64("librarian_id", l.ID))
	return fmt.Sprintf("New librarian %s has been added with ID %d.", l.Name, l.ID), nil
}

// RemoveLibrarian deletes removeID on behalf of actingID, who may not remove
// themselves.
func (c *Catalog) RemoveLibrarian(removeID, actingID int64) (string, error) {
	if removeID == actingID {
		return "", ErrRemoveYourself
	}
	librarians, err := c.repo.loadLibrarians()
	if err != nil {
		return "", err
	}
	i := indexByID(librarians, removeID, func(l *Librarian) int64 { return l.ID })
	if i < 0 {
		return "", &NoLibrarianIDError{ID: removeID}
	}
	name := librarians[i].Name
	librarians = slices.Delete(librarians, i, i+1)
	if err := c.repo.saveLibrarians(librarians); err != nil {
		return "", err
	}
	c.librarians = librarians
	c.log.Info("librarian removed", zap.Int64("librarian_id", removeID), zap.Int64("by", actingID))
	return fmt.Sprintf("Librarian %s has been removed.", name), nil
}

// ------------------ Stats ------------------

// LoanStat counts loans for one book (by title) or one reader (by name).
type LoanStat struct {
	ID    int64
	Label string
	Loans int
}

func (c *Catalog) GetBooksStats() ([]LoanStat, error) {
	if len(c.books) == 0 {
		return nil, ErrNoBooks
	}
	stats := make([]LoanStat, len(c.books))
	for i, b := range c.books {
		stats[i] = LoanStat{ID: b.ID, Label: b.Title, Loans: len(b.LoanHistory)}
	}
	return stats, nil
}

func (c *Catalog) GetUsersStats() ([]LoanStat, error) {
	if len(c.users) == 0 {
		return nil, ErrNoUsers
	}
	stats := make([]LoanStat, len(c.users))
	for i, u := range c.users {
		stats[i] = LoanStat{ID: u.ID, Label: u.Name, Loans: len(u.BorrowingHistory)}
	}
	return stats, nil
}

// ------------------ Reminders ------------------

// Reminder lists a reader's books that are due soon or overdue.
type Reminder struct {
	Approaching []int64
	Overdue     []int64
}

func (r Reminder) Empty() bool { return len(r.Approaching) == 0 && len(r.Overdue) == 0 }

func (r Reminder) String() string {
	if r.Empty() {
		return "All your borrowed books are within the due date."
	}
	var parts []string
	if len(r.Approaching) > 0 {
		parts = append(parts, "The due date for the following books is approaching: "+joinIDs(r.Approaching)+".")
	}
	if len(r.Overdue) > 0 {
		parts = append(parts, "The due date for the following books has passed: "+joinIDs(r.Overdue)+
			". Please return them as soon as possible.")
	}
	return strings.Join(parts, " ")
}

// ReturnDateCheck sorts the reader's loans into due within the reminder
// window (but not today) and overdue.
func (c *Catalog) ReturnDateCheck(userID int64) (Reminder, error) {
	u, err := c.User(userID)
	if err != nil {
		return Reminder{}, err
	}
	today := c.repo.today()
	window := c.repo.policy.ReminderDays
	var r Reminder
	for _, id := range u.BorrowedBooks {
		b, err := c.Book(id)
		if err != nil || b.ReturnDate == nil {
			continue
		}
		switch days := today.DaysUntil(*b.ReturnDate); {
		case days < 0:
			r.Overdue = append(r.Overdue, id)
		case days > 0 && days < window:
			r.Approaching = append(r.Approaching, id)
		}
	}
	return r, nil
}

func bookIDs(books []*Book) []int64 {
	ids := make([]int64, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	return ids
}

func userIDs(users []*User) []int64 {
	ids := make([]int64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

// distinct projects items through key, keeping first-seen order.
func distinct[T any, K comparable](items []T, key func(T) K) []K {
	seen := make(map[K]struct{})
	var out []K
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
