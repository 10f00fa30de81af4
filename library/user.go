package library

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Every exported mutator below applies its change to the stored record and
// then refreshes u from it, so fields changed elsewhere since u was loaded
// are kept. Users that were never added to a catalog only change in memory.

func (u *User) HistoryAppend(bookID int64) error {
	return u.update(func(s *User) error {
		s.BorrowingHistory = append(s.BorrowingHistory, bookID)
		return nil
	})
}

func (u *User) BorrowedAppend(bookID int64) error {
	return u.update(func(s *User) error {
		s.BorrowedBooks = append(s.BorrowedBooks, bookID)
		return nil
	})
}

func (u *User) BorrowedRemove(bookID int64) error {
	return u.update(func(s *User) error {
		if !removeID(&s.BorrowedBooks, bookID) {
			return ErrNotUsersBook
		}
		return nil
	})
}

func (u *User) ReservationsAppend(bookID int64) error {
	return u.update(func(s *User) error {
		if slices.Contains(s.Reservations, bookID) {
			return ErrDoubleReservation
		}
		s.Reservations = append(s.Reservations, bookID)
		return nil
	})
}

func (u *User) ReservationsRemove(bookID int64) error {
	return u.update(func(s *User) error {
		if !removeID(&s.Reservations, bookID) {
			return ErrNotReserved
		}
		return nil
	})
}

// ChangePassword applies the same rules as account creation.
func (u *User) ChangePassword(password string) error {
	candidate := User{Name: u.Name, Password: password}
	if err := validateEntity(&candidate); err != nil {
		return err
	}
	return u.update(func(s *User) error {
		s.Password = password
		return nil
	})
}

// Holds reports whether the reader currently has bookID.
func (u *User) Holds(bookID int64) bool { return slices.Contains(u.BorrowedBooks, bookID) }

// update runs change against the stored record, writes it back and copies
// the result into u.
func (u *User) update(change func(*User) error) error {
	if u.repo == nil {
		return change(u)
	}
	stored, err := u.repo.user(u.ID)
	if err != nil {
		return err
	}
	if err := change(stored); err != nil {
		return err
	}
	if err := u.repo.putUser(stored); err != nil {
		return err
	}
	*u = *stored
	return nil
}

func (u *User) GetBorrowedBooks() string {
	if len(u.BorrowedBooks) == 0 {
		return "You do not have any books at the moment."
	}
	return "You have borrowed: " + joinIDs(u.BorrowedBooks)
}

func (u *User) GetHistory() string {
	if len(u.BorrowingHistory) == 0 {
		return "You have not borrowed any books yet."
	}
	return "Your history: " + joinIDs(u.BorrowingHistory)
}

func (u *User) GetReservations() string {
	if len(u.Reservations) == 0 {
		return "You have not reserved any books."
	}
	return "Your reservations: " + joinIDs(u.Reservations)
}

func (u *User) String() string {
	return fmt.Sprintf("Welcome to our library, %s! Your ID is %d", u.Name, u.ID)
}

func (l *Librarian) String() string {
	return fmt.Sprintf("Welcome to our library, %s! Your librarian ID is %d", l.Name, l.ID)
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}

// removeID deletes the first occurrence of id and reports whether it was
// present.
func removeID(ids *[]int64, id int64) bool {
	i := slices.Index(*ids, id)
	if i < 0 {
		return false
	}
	*ids = slices.Delete(*ids, i, i+1)
	return true
}
