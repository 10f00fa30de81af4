package library

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// attached reloads u from the store and returns its repository. A hand-over
// written by another reader's return is picked up here.
func (u *User) attached() (*repository, error) {
	if u.repo == nil {
		return nil, ErrDetached
	}
	fresh, err := u.repo.user(u.ID)
	if err != nil {
		return nil, err
	}
	*u = *fresh
	return u.repo, nil
}

// lend starts a loan of b for u in memory on both sides.
func lend(r *repository, b *Book, u *User) {
	b.lendTo(u.ID, r.today(), r.policy)
	u.BorrowingHistory = append(u.BorrowingHistory, b.ID)
	u.BorrowedBooks = append(u.BorrowedBooks, b.ID)
}

// BorrowBook lends an available book to the reader for one loan period with
// the default number of extensions.
func (u *User) BorrowBook(bookID int64) (string, error) {
	r, err := u.attached()
	if err != nil {
		return "", err
	}
	book, err := r.book(bookID)
	if err != nil {
		return "", err
	}
	if u.Holds(bookID) || book.OwnedBy(u.ID) {
		return "", fmt.Errorf("%w: %w", ErrBorrowedBook, ErrUsersBook)
	}
	if !book.Available() {
		return "", ErrBorrowedBook
	}

	lend(r, book, u)
	if err := r.putBook(book); err != nil {
		return "", err
	}
	if err := r.putUser(u); err != nil {
		return "", err
	}
	r.log.Info("book borrowed", zap.Int64("book_id", bookID), zap.Int64("user_id", u.ID),
		zap.Stringer("return_date", book.ReturnDate))
	return fmt.Sprintf("You have borrowed %q (%d). Please return it by %s.", book.Title, book.ID, book.ReturnDate), nil
}

// UseExtension spends one extension on a held book and moves its due date
// forward by one loan period. Books with a waiting queue cannot be extended.
func (u *User) UseExtension(bookID int64) (string, error) {
	r, err := u.attached()
	if err != nil {
		return "", err
	}
	if !u.Holds(bookID) {
		return "", ErrNotUsersBook
	}
	book, err := r.book(bookID)
	if err != nil {
		return "", err
	}
	if len(book.Reservations) > 0 {
		return "", ErrReservedBook
	}
	if book.Extensions <= 0 {
		return "", ErrNotEnoughExtensions
	}
	if book.ReturnDate == nil {
		return "", ErrNotUsersBook
	}

	book.Extensions--
	due := book.ReturnDate.AddDays(r.policy.LoanDays)
	book.ReturnDate = &due
	if err := r.putBook(book); err != nil {
		return "", err
	}
	r.log.Info("loan extended", zap.Int64("book_id", bookID), zap.Int64("user_id", u.ID),
		zap.Int("extensions_left", book.Extensions))
	return fmt.Sprintf("The return date of %q (%d) is now %s. Extensions left: %d.",
		book.Title, book.ID, due, book.Extensions), nil
}

// ReserveBook queues the reader for a book somebody else has borrowed.
//
// The checks run in this order:
//   - the book must exist
//   - the reader must not be the current owner
//   - the book must be borrowed (an available book is simply borrowed instead)
//   - the reader must not already be in the queue
func (u *User) ReserveBook(bookID int64) (string, error) {
	r, err := u.attached()
	if err != nil {
		return "", err
	}
	book, err := r.book(bookID)
	if err != nil {
		return "", err
	}
	if book.OwnedBy(u.ID) {
		return "", ErrUsersBook
	}
	if book.Available() {
		return "", ErrNoBookOwner
	}
	if slices.Contains(book.Reservations, u.ID) {
		return "", ErrDoubleReservation
	}

	book.Reservations = append(book.Reservations, u.ID)
	if !slices.Contains(u.Reservations, bookID) {
		u.Reservations = append(u.Reservations, bookID)
	}
	if err := r.putBook(book); err != nil {
		return "", err
	}
	if err := r.putUser(u); err != nil {
		return "", err
	}
	r.log.Info("book reserved", zap.Int64("book_id", bookID), zap.Int64("user_id", u.ID),
		zap.Int("position", len(book.Reservations)))
	return fmt.Sprintf("You have reserved %q (%d). Your position in the queue: %d.",
		book.Title, book.ID, len(book.Reservations)), nil
}

// CancelReservation takes the reader out of the book's queue. The queue on
// the book decides whether the reader has a reservation; the reader's own
// list is cleaned up along the way.
func (u *User) CancelReservation(bookID int64) (string, error) {
	r, err := u.attached()
	if err != nil {
		return "", err
	}
	book, err := r.book(bookID)
	if err != nil {
		return "", err
	}
	if !removeID(&book.Reservations, u.ID) {
		return "", ErrNotReserved
	}
	removeID(&u.Reservations, bookID)

	if err := r.putBook(book); err != nil {
		return "", err
	}
	if err := r.putUser(u); err != nil {
		return "", err
	}
	r.log.Info("reservation cancelled", zap.Int64("book_id", bookID), zap.Int64("user_id", u.ID))
	return fmt.Sprintf("Your reservation of %q (%d) has been cancelled.", book.Title, book.ID), nil
}

// ReturnBook ends the reader's loan and passes the book down the reservation
// queue.
//
// The function performs the following steps:
//  1. Validates that the reader holds the book
//  2. Clears the owner, the due date and the remaining extensions
//  3. Removes the book from the reader's borrowed list (history is kept)
//  4. If the queue is not empty:
//     - dequeues the first reader (FIFO) and lends the book to them exactly
//     as BorrowBook would, with a fresh loan period and extensions
//     - drops the book from that reader's reservations
//     - readers no longer present in the users document are skipped
//  5. Writes the book document, then the users document
func (u *User) ReturnBook(bookID int64) (string, error) {
	r, err := u.attached()
	if err != nil {
		return "", err
	}
	if !u.Holds(bookID) {
		return "", ErrNotUsersBook
	}
	book, err := r.book(bookID)
	if err != nil {
		return "", err
	}

	book.shelve()
	removeID(&u.BorrowedBooks, bookID)

	var next *User
	for next == nil {
		head, ok := book.popReservation()
		if !ok {
			break
		}
		candidate, err := r.user(head)
		if errors.Is(err, ErrNoUserID) {
			r.log.Warn("skipping unknown reader in reservation queue",
				zap.Int64("book_id", bookID), zap.Int64("user_id", head))
			continue
		}
		if err != nil {
			return "", err
		}
		lend(r, book, candidate)
		removeID(&candidate.Reservations, bookID)
		next = candidate
	}

	if err := r.putBook(book); err != nil {
		return "", err
	}
	if err := r.putUser(u); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("You have returned %q (%d).", book.Title, book.ID)
	if next != nil {
		if err := r.putUser(next); err != nil {
			return "", err
		}
		msg += fmt.Sprintf(" It has been handed over to %s (%d), who reserved it.", next.Name, next.ID)
	}
	r.log.Info("book returned", zap.Int64("book_id", bookID), zap.Int64("user_id", u.ID),
		zap.Bool("handed_over", next != nil))
	return msg, nil
}
