package library

import (
	"errors"
	"fmt"

	"library-console/storage"
)

// Validation errors returned by the entity constructors.
var (
	ErrEmptyTitle    = errors.New("the title cannot be empty")
	ErrNoAuthor      = errors.New("author name is required")
	ErrNoReleaseYear = errors.New("release year is required")
	ErrNoGenre       = errors.New("genre information is required")
	ErrEmptyName     = errors.New("your name cannot be empty")
	ErrEmptyPassword = errors.New("your password cannot be empty")
	ErrShortPassword = fmt.Errorf("minimum password length is %d characters", MinPasswordLength)
)

// Lookup errors. The typed variants below carry the id and match these with
// errors.Is.
var (
	ErrNoBookID      = errors.New("book id not found")
	ErrNoUserID      = errors.New("user id not found")
	ErrNoLibrarianID = errors.New("librarian id not found")
)

// State conflicts.
var (
	ErrBorrowedBook        = errors.New("this book is currently borrowed")
	ErrUserWithBooks       = errors.New("cannot remove user with books")
	ErrUsersBook           = errors.New("you are the current owner")
	ErrNotUsersBook        = errors.New("you are not the current owner")
	ErrReservedBook        = errors.New("you cannot use the extension, the book has been reserved")
	ErrNotEnoughExtensions = errors.New("you have run out of extensions")
	ErrNoBookOwner         = errors.New("you do not need to reserve this book, it has no owner")
	ErrNotReserved         = errors.New("you did not reserve that book")
	ErrDoubleReservation   = errors.New("you have already reserved this book")
	ErrRemoveYourself      = errors.New("you cannot remove yourself")
	ErrNegativeExtensions  = errors.New("used extensions cannot be negative")
	ErrDuplicateID         = errors.New("this id is already taken")
	ErrDetached            = errors.New("account is not attached to a catalog")
)

// Query errors.
var (
	ErrNoKeyword         = errors.New("keyword is required")
	ErrKeywordNotFound   = errors.New("nothing found matching the provided keyword")
	ErrGenresNotFound    = errors.New("no genres found in the list of books")
	ErrUnavailableGenre  = errors.New("chosen genre is not available in our library")
	ErrAuthorsNotFound   = errors.New("no authors found in the list of books")
	ErrUnavailableAuthor = errors.New("chosen author is not available in our library")
	ErrYearsNotFound     = errors.New("no release years found in the list of books")
	ErrUnavailableYear   = errors.New("chosen release year is not available in our library")
	ErrNoBooks           = errors.New("there are no books in the library")
	ErrNoUsers           = errors.New("there are no users in the library")
)

// Auth errors.
var (
	ErrWrongPassword = errors.New("incorrect password")
	ErrWrongID       = errors.New("the given id not found")
	ErrLibrarianOnly = errors.New("this action requires a librarian account")
	ErrReaderOnly    = errors.New("this action requires a reader account")
)

type NoBookIDError struct{ ID int64 }

func (e *NoBookIDError) Error() string {
	return fmt.Sprintf("book id %d not found in the list of books", e.ID)
}

func (e *NoBookIDError) Is(target error) bool { return target == ErrNoBookID }

type NoUserIDError struct{ ID int64 }

func (e *NoUserIDError) Error() string {
	return fmt.Sprintf("user id %d not found in the list of users", e.ID)
}

func (e *NoUserIDError) Is(target error) bool { return target == ErrNoUserID }

type NoLibrarianIDError struct{ ID int64 }

func (e *NoLibrarianIDError) Error() string {
	return fmt.Sprintf("librarian id %d not found in the list of librarians", e.ID)
}

func (e *NoLibrarianIDError) Is(target error) bool { return target == ErrNoLibrarianID }

// DocumentError reports a collection document that could not be decoded or
// encoded.
type DocumentError struct {
	Collection storage.Collection
	Err        error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s document: %v", e.Collection, e.Err)
}

func (e *DocumentError) Unwrap() error { return e.Err }
