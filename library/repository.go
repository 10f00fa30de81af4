package library

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"library-console/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// documentIndent matches the 4-space layout of the documents on disk.
const documentIndent = "    "

// LendingPolicy holds the loan rules applied by the lending workflow.
type LendingPolicy struct {
	LoanDays     int // length of a loan and of every extension
	Extensions   int // extensions granted with each new loan
	ReminderDays int // due dates closer than this are reported as approaching
}

var DefaultLendingPolicy = LendingPolicy{LoanDays: 30, Extensions: 3, ReminderDays: 7}

// repository is the write-through layer shared by the catalog and every
// entity it hands out. Each put re-reads the whole document, replaces the
// record with the same id and writes the document back.
type repository struct {
	store  storage.Store
	log    *zap.Logger
	now    func() time.Time
	policy LendingPolicy
}

func (r *repository) today() Date { return NewDate(r.now()) }

// ------------------ Books ------------------

func (r *repository) loadBooks() ([]*Book, error) {
	var books []*Book
	if err := r.load(storage.Books, &books); err != nil {
		return nil, err
	}
	for _, b := range books {
		b.normalize()
		b.repo = r
	}
	return books, nil
}

func (r *repository) saveBooks(books []*Book) error {
	if books == nil {
		books = []*Book{}
	}
	return r.save(storage.Books, books)
}

func (r *repository) book(id int64) (*Book, error) {
	books, err := r.loadBooks()
	if err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, &NoBookIDError{ID: id}
}

func (r *repository) putBook(b *Book) error {
	books, err := r.loadBooks()
	if err != nil {
		return err
	}
	i := indexByID(books, b.ID, func(b *Book) int64 { return b.ID })
	if i < 0 {
		return &NoBookIDError{ID: b.ID}
	}
	books[i] = b
	return r.saveBooks(books)
}

// ------------------ Users ------------------

func (r *repository) loadUsers() ([]*User, error) {
	var users []*User
	if err := r.load(storage.Users, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		u.normalize()
		u.repo = r
	}
	return users, nil
}

func (r *repository) saveUsers(users []*User) error {
	if users == nil {
		users = []*User{}
	}
	return r.save(storage.Users, users)
}

func (r *repository) user(id int64) (*User, error) {
	users, err := r.loadUsers()
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, &NoUserIDError{ID: id}
}

func (r *repository) putUser(u *User) error {
	users, err := r.loadUsers()
	if err != nil {
		return err
	}
	i := indexByID(users, u.ID, func(u *User) int64 { return u.ID })
	if i < 0 {
		return &NoUserIDError{ID: u.ID}
	}
	users[i] = u
	return r.saveUsers(users)
}

// ------------------ Librarians ------------------

func (r *repository) loadLibrarians() ([]*Librarian, error) {
	var librarians []*Librarian
	if err := r.load(storage.Librarians, &librarians); err != nil {
		return nil, err
	}
	return librarians, nil
}

func (r *repository) saveLibrarians(librarians []*Librarian) error {
	if librarians == nil {
		librarians = []*Librarian{}
	}
	return r.save(storage.Librarians, librarians)
}

// ------------------ Codec ------------------

func (r *repository) load(c storage.Collection, v any) error {
	data, err := r.store.Load(c)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DocumentError{Collection: c, Err: err}
	}
	return nil
}

func (r *repository) save(c storage.Collection, v any) error {
	data, err := json.MarshalIndent(v, "", documentIndent)
	if err != nil {
		return &DocumentError{Collection: c, Err: err}
	}
	if err := r.store.Save(c, data); err != nil {
		return err
	}
	r.log.Debug("collection written", zap.String("collection", string(c)))
	return nil
}

func indexByID[T any](items []T, id int64, key func(T) int64) int {
	for i, item := range items {
		if key(item) == id {
			return i
		}
	}
	return -1
}
