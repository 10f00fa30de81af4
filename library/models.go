package library

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// MinPasswordLength is the shortest password accepted for any account.
const MinPasswordLength = 6

// Book is one physical copy in the catalog. A book on the shelf has no
// CurrentOwner, no ReturnDate and zero Extensions.
type Book struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title" validate:"required"`
	Author       string  `json:"author" validate:"required"`
	ReleaseYear  Year    `json:"release_year" validate:"required"`
	Genre        string  `json:"genre" validate:"required"`
	LoanHistory  []int64 `json:"loan_history"`
	CurrentOwner *int64  `json:"current_owner"`
	Extensions   int     `json:"extensions"`
	Reservations []int64 `json:"reservations"`
	ReturnDate   *Date   `json:"return_date"`

	repo *repository
}

// User is a reader account.
type User struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name" validate:"required"`
	Password         string  `json:"password" validate:"required,min=6"`
	BorrowedBooks    []int64 `json:"borrowed_books"`
	Reservations     []int64 `json:"reservations"`
	BorrowingHistory []int64 `json:"borrowing_history"`

	repo *repository
}

// Librarian is a staff account. Librarians manage the catalog but never
// borrow.
type Librarian struct {
	ID       int64  `json:"id"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

// NewBook validates the descriptive fields and returns a book on the shelf.
func NewBook(id int64, title, author string, releaseYear int, genre string) (*Book, error) {
	b := &Book{
		ID:          id,
		Title:       title,
		Author:      author,
		ReleaseYear: Year(releaseYear),
		Genre:       genre,
	}
	if err := validateEntity(b); err != nil {
		return nil, err
	}
	b.normalize()
	return b, nil
}

// NewUser validates name and password and returns a reader with no loans.
func NewUser(id int64, name, password string) (*User, error) {
	u := &User{ID: id, Name: name, Password: password}
	if err := validateEntity(u); err != nil {
		return nil, err
	}
	u.normalize()
	return u, nil
}

func NewLibrarian(id int64, name, password string) (*Librarian, error) {
	l := &Librarian{ID: id, Name: name, Password: password}
	if err := validateEntity(l); err != nil {
		return nil, err
	}
	return l, nil
}

// normalize replaces nil sequences so documents always carry [] instead of
// null.
func (b *Book) normalize() {
	if b.LoanHistory == nil {
		b.LoanHistory = []int64{}
	}
	if b.Reservations == nil {
		b.Reservations = []int64{}
	}
}

func (u *User) normalize() {
	if u.BorrowedBooks == nil {
		u.BorrowedBooks = []int64{}
	}
	if u.Reservations == nil {
		u.Reservations = []int64{}
	}
	if u.BorrowingHistory == nil {
		u.BorrowingHistory = []int64{}
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

var validate = validator.New()

// fieldErrors maps a failing struct field and tag to its domain error. An
// empty tag matches any tag on that field.
var fieldErrors = map[string]map[string]error{
	"Title":       {"": ErrEmptyTitle},
	"Author":      {"": ErrNoAuthor},
	"ReleaseYear": {"": ErrNoReleaseYear},
	"Genre":       {"": ErrNoGenre},
	"Name":        {"": ErrEmptyName},
	"Password":    {"required": ErrEmptyPassword, "min": ErrShortPassword},
}

func validateEntity(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		byTag, ok := fieldErrors[fe.StructField()]
		if !ok {
			continue
		}
		if mapped, ok := byTag[fe.Tag()]; ok {
			return mapped
		}
		if mapped, ok := byTag[""]; ok {
			return mapped
		}
	}
	return err
}

// ---------------------------------------------------------------------------
// Year and Date
// ---------------------------------------------------------------------------

// Year is a release year. It decodes from a JSON number or a numeric string
// and always encodes as a number.
type Year int

func (y *Year) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"`))
	if s == "" || s == "null" {
		*y = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("release year %s: %w", b, err)
	}
	*y = Year(n)
	return nil
}

func (y Year) String() string { return strconv.Itoa(int(y)) }

// Date is a calendar day, encoded as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) AddDays(n int) Date { return Date{d.Time.AddDate(0, 0, n)} }

// DaysUntil counts whole days from d to other; negative when other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time.Sub(d.Time).Hours() / 24)
}

func (d Date) String() string { return d.Format(time.DateOnly) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	date, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = date
	return nil
}
