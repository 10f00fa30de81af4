package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"library-console/library"
)

// newLoanCommands builds the reader's lending actions, which all take a
// single book ID.
func newLoanCommands(a *app) []*cobra.Command {
	actions := []struct {
		use, short string
		run        func(u *library.User, bookID int64) (string, error)
	}{
		{"borrow", "Borrow a book from the shelf", (*library.User).BorrowBook},
		{"return", "Return a book you have borrowed", (*library.User).ReturnBook},
		{"reserve", "Join the reservation queue of a borrowed book", (*library.User).ReserveBook},
		{"cancel", "Leave the reservation queue of a book", (*library.User).CancelReservation},
		{"extend", "Use an extension on a book you have borrowed", (*library.User).UseExtension},
	}

	cmds := make([]*cobra.Command, 0, len(actions))
	for _, act := range actions {
		act := act
		cmds = append(cmds, &cobra.Command{
			Use:   act.use + " <book-id>",
			Short: act.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				bookID, err := parseID(args[0])
				if err != nil {
					return err
				}
				u, err := a.reader(cmd)
				if err != nil {
					return err
				}
				msg, err := act.run(u, bookID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			},
		})
	}
	return cmds
}

func newMeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "me",
		Short: "Your loans, history, reservations and reminders",
	}

	info := func(use, short string, get func(*library.User) string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := a.reader(cmd)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), get(u))
				return nil
			},
		}
	}

	reminders := &cobra.Command{
		Use:   "reminders",
		Short: "Books due soon or overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.reader(cmd)
			if err != nil {
				return err
			}
			r, err := a.catalog.ReturnDateCheck(u.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), r)
			return nil
		},
	}

	var password string
	changePassword := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.reader(cmd)
			if err != nil {
				return err
			}
			pw, err := newPassword(cmd, password, u.Name)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if err := u.ChangePassword(pw); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your password has been changed.")
			return nil
		},
	}
	changePassword.Flags().StringVar(&password, "new-password", "", "the new password (prompted when empty)")

	cmd.AddCommand(
		info("books", "Books you are holding", (*library.User).GetBorrowedBooks),
		info("history", "Every book you have borrowed", (*library.User).GetHistory),
		info("reservations", "Books you are waiting for", (*library.User).GetReservations),
		reminders,
		changePassword,
	)
	return cmd
}

func newStatsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Loan counts per book or per reader (librarians only)",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "books",
			Short: "Loans per book",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.librarian(cmd); err != nil {
					return err
				}
				stats, err := a.catalog.GetBooksStats()
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), "Title", stats)
				return nil
			},
		},
		&cobra.Command{
			Use:   "users",
			Short: "Loans per reader",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.librarian(cmd); err != nil {
					return err
				}
				stats, err := a.catalog.GetUsersStats()
				if err != nil {
					return err
				}
				printStats(cmd.OutOrStdout(), "Name", stats)
				return nil
			},
		},
	)
	return cmd
}

func printStats(w io.Writer, label string, stats []library.LoanStat) {
	fmt.Fprintf(w, "%-5s %-40s %s\n", "ID", label, "Loans")
	fmt.Fprintln(w, strings.Repeat("-", 55))
	for _, s := range stats {
		fmt.Fprintf(w, "%-5d %-40s %d\n", s.ID, truncateString(s.Label, 40), s.Loans)
	}
}
