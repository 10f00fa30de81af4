package library

import (
	"fmt"
	"slices"
	"strconv"
)

// Every exported mutator below applies its change to the stored record and
// then refreshes b from it, so a stale copy never undoes a loan or a
// reservation written since it was loaded. Books that were never added to a
// catalog only change in memory.

func (b *Book) SetOwner(readerID int64) error {
	return b.update(func(s *Book) error {
		s.CurrentOwner = &readerID
		return nil
	})
}

func (b *Book) ClearOwner() error {
	return b.update(func(s *Book) error {
		s.CurrentOwner = nil
		return nil
	})
}

// OwnedBy reports whether readerID currently holds the book.
func (b *Book) OwnedBy(readerID int64) bool {
	return b.CurrentOwner != nil && *b.CurrentOwner == readerID
}

func (b *Book) Available() bool { return b.CurrentOwner == nil }

// AddReservation enqueues readerID at the tail of the reservation queue.
func (b *Book) AddReservation(readerID int64) error {
	return b.update(func(s *Book) error {
		if slices.Contains(s.Reservations, readerID) {
			return ErrDoubleReservation
		}
		s.Reservations = append(s.Reservations, readerID)
		return nil
	})
}

func (b *Book) RemoveReservation(readerID int64) error {
	return b.update(func(s *Book) error {
		if !removeID(&s.Reservations, readerID) {
			return ErrNotReserved
		}
		return nil
	})
}

// RemoveFirstReservation dequeues and returns the head of the queue.
func (b *Book) RemoveFirstReservation() (int64, error) {
	var head int64
	err := b.update(func(s *Book) error {
		var ok bool
		if head, ok = s.popReservation(); !ok {
			return ErrNotReserved
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return head, nil
}

func (b *Book) popReservation() (int64, bool) {
	if len(b.Reservations) == 0 {
		return 0, false
	}
	head := b.Reservations[0]
	b.Reservations = slices.Delete(b.Reservations, 0, 1)
	return head, true
}

func (b *Book) HistoryAppend(readerID int64) error {
	return b.update(func(s *Book) error {
		s.LoanHistory = append(s.LoanHistory, readerID)
		return nil
	})
}

func (b *Book) SetExtensions(n int) error {
	if n < 0 {
		return ErrNegativeExtensions
	}
	return b.update(func(s *Book) error {
		s.Extensions = n
		return nil
	})
}

func (b *Book) RemoveExtension() error {
	return b.update(func(s *Book) error {
		if s.Extensions-1 < 0 {
			return ErrNegativeExtensions
		}
		s.Extensions--
		return nil
	})
}

func (b *Book) SetReturnDate(d Date) error {
	return b.update(func(s *Book) error {
		s.ReturnDate = &d
		return nil
	})
}

func (b *Book) ClearReturnDate() error {
	return b.update(func(s *Book) error {
		s.ReturnDate = nil
		return nil
	})
}

// ExtendReturnDate pushes the due date forward by one loan period.
func (b *Book) ExtendReturnDate() error {
	days := b.policy().LoanDays
	return b.update(func(s *Book) error {
		if s.ReturnDate == nil {
			return ErrNoBookOwner
		}
		next := s.ReturnDate.AddDays(days)
		s.ReturnDate = &next
		return nil
	})
}

// lendTo starts a loan for readerID. It does not check preconditions.
func (b *Book) lendTo(readerID int64, today Date, p LendingPolicy) {
	due := today.AddDays(p.LoanDays)
	b.CurrentOwner = &readerID
	b.Extensions = p.Extensions
	b.ReturnDate = &due
	b.LoanHistory = append(b.LoanHistory, readerID)
}

// shelve ends the current loan.
func (b *Book) shelve() {
	b.CurrentOwner = nil
	b.Extensions = 0
	b.ReturnDate = nil
}

// update runs change against the stored record, writes it back and copies
// the result into b.
func (b *Book) update(change func(*Book) error) error {
	if b.repo == nil {
		return change(b)
	}
	stored, err := b.repo.book(b.ID)
	if err != nil {
		return err
	}
	if err := change(stored); err != nil {
		return err
	}
	if err := b.repo.putBook(stored); err != nil {
		return err
	}
	*b = *stored
	return nil
}

func (b *Book) policy() LendingPolicy {
	if b.repo == nil {
		return DefaultLendingPolicy
	}
	return b.repo.policy
}

func (b *Book) String() string {
	owner, due := "None", "None"
	if b.CurrentOwner != nil {
		owner = strconv.FormatInt(*b.CurrentOwner, 10)
	}
	if b.ReturnDate != nil {
		due = b.ReturnDate.String()
	}
	return fmt.Sprintf("ID: %d, Title: %s, Author: %s, Release year: %s, Genre: %s, Owner: %s, Return date: %s",
		b.ID, b.Title, b.Author, b.ReleaseYear, b.Genre, owner, due)
}

// fieldValues renders every stored field for keyword search. An unset owner
// or return date reads as "None", the same as in String.
func (b *Book) fieldValues() []string {
	values := []string{
		strconv.FormatInt(b.ID, 10),
		b.Title,
		b.Author,
		b.ReleaseYear.String(),
		b.Genre,
		strconv.Itoa(b.Extensions),
	}
	for _, id := range b.LoanHistory {
		values = append(values, strconv.FormatInt(id, 10))
	}
	for _, id := range b.Reservations {
		values = append(values, strconv.FormatInt(id, 10))
	}
	owner, due := "None", "None"
	if b.CurrentOwner != nil {
		owner = strconv.FormatInt(*b.CurrentOwner, 10)
	}
	if b.ReturnDate != nil {
		due = b.ReturnDate.String()
	}
	return append(values, owner, due)
}
