package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"library-console/library"
)

// addReader creates a reader account with a fresh ID. Shared by self
// registration and librarian-driven account creation.
func addReader(cmd *cobra.Command, a *app, name, passwordFlag string) error {
	password, err := newPassword(cmd, passwordFlag, name)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	id, err := a.catalog.NewUserID()
	if err != nil {
		return err
	}
	u, err := library.NewUser(id, name, password)
	if err != nil {
		return err
	}
	msg, err := a.catalog.AddNewUser(u)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	fmt.Fprintln(cmd.OutOrStdout(), u)
	return nil
}

func newRegisterCommand(a *app) *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a reader account for yourself",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return addReader(cmd, a, name, password)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your full name")
	cmd.Flags().StringVar(&password, "new-password", "", "password for the new account (prompted when empty)")
	return cmd
}

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage reader accounts (librarians only)",
	}

	var name, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a reader account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			return addReader(cmd, a, name, password)
		},
	}
	add.Flags().StringVar(&name, "name", "", "reader's full name")
	add.Flags().StringVar(&password, "new-password", "", "password for the new account (prompted when empty)")

	remove := &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Remove a reader with no books or reservations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			msg, err := a.catalog.RemoveUser(userID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List readers and librarians",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			users, librarians := a.catalog.Users(), a.catalog.Librarians()
			if len(users) == 0 && len(librarians) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts registered.")
				return nil
			}
			printAccounts(cmd.OutOrStdout(), users, librarians)
			return nil
		},
	}

	search := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Find readers and librarians by ID or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			users, librarians, err := a.catalog.SearchUser(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			printAccounts(cmd.OutOrStdout(), users, librarians)
			return nil
		},
	}

	cmd.AddCommand(add, remove, list, search)
	return cmd
}

func newLibrarianCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "librarian",
		Short: "Manage librarian accounts (librarians only)",
	}

	var name, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a librarian account",
		Long: "Create a librarian account. While the library has no librarians at all,\n" +
			"the first one can be created without logging in.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(a.catalog.Librarians()) > 0 {
				if _, err := a.librarian(cmd); err != nil {
					return err
				}
			}
			pw, err := newPassword(cmd, password, name)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			id, err := a.catalog.NewLibrarianID()
			if err != nil {
				return err
			}
			l, err := library.NewLibrarian(id, name, pw)
			if err != nil {
				return err
			}
			msg, err := a.catalog.AddNewLibrarian(l)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			fmt.Fprintln(cmd.OutOrStdout(), l)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "librarian's full name")
	add.Flags().StringVar(&password, "new-password", "", "password for the new account (prompted when empty)")

	remove := &cobra.Command{
		Use:   "remove <librarian-id>",
		Short: "Remove another librarian",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removeID, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.librarian(cmd)
			if err != nil {
				return err
			}
			msg, err := a.catalog.RemoveLibrarian(removeID, s.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func printAccounts(w io.Writer, users []*library.User, librarians []*library.Librarian) {
	fmt.Fprintf(w, "%-5s %-30s %-10s %-8s %s\n", "ID", "Name", "Role", "Books", "Reservations")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, l := range librarians {
		fmt.Fprintf(w, "%-5d %-30s %-10s %-8s %s\n", l.ID, truncateString(l.Name, 30), library.RoleLibrarian, "-", "-")
	}
	for _, u := range users {
		fmt.Fprintf(w, "%-5d %-30s %-10s %-8d %d\n",
			u.ID, truncateString(u.Name, 30), library.RoleReader, len(u.BorrowedBooks), len(u.Reservations))
	}
}
