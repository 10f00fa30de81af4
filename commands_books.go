package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"library-console/library"
)

func newBookCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newBookAddCommand(a),
		newBookRemoveCommand(a),
		newBookCopyCommand(a),
		newBookListCommand(a),
		newBookSearchCommand(a),
		&cobra.Command{
			Use:   "genres",
			Short: "List the genres in the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				genres, err := a.catalog.AvailableGenres()
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), genres)
				return nil
			},
		},
		&cobra.Command{
			Use:   "authors",
			Short: "List the authors in the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				authors, err := a.catalog.AvailableAuthors()
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), authors)
				return nil
			},
		},
		&cobra.Command{
			Use:   "years",
			Short: "List the release years in the catalog",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				years, err := a.catalog.AvailableYears()
				if err != nil {
					return err
				}
				lines := make([]string, len(years))
				for i, y := range years {
					lines[i] = strconv.Itoa(y)
				}
				printLines(cmd.OutOrStdout(), lines)
				return nil
			},
		},
	)
	return cmd
}

func newBookAddCommand(a *app) *cobra.Command {
	var (
		title, author, genre string
		year                 int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new book (librarians only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			id, err := a.catalog.NewBookID()
			if err != nil {
				return err
			}
			book, err := library.NewBook(id, title, author, year, genre)
			if err != nil {
				return err
			}
			msg, err := a.catalog.AddNewBook(book)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "book title")
	cmd.Flags().StringVar(&author, "author", "", "book author")
	cmd.Flags().IntVar(&year, "year", 0, "release year")
	cmd.Flags().StringVar(&genre, "genre", "", "genre")
	return cmd
}

func newBookRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <book-id>",
		Short: "Remove a book that is on the shelf (librarians only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			msg, err := a.catalog.RemoveBook(bookID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newBookCopyCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <book-id>",
		Short: "Add another copy of a book under a new ID (librarians only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bookID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.librarian(cmd); err != nil {
				return err
			}
			newID, err := a.catalog.NewBookID()
			if err != nil {
				return err
			}
			msg, err := a.catalog.AddCopyOfBook(bookID, newID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func newBookListCommand(a *app) *cobra.Command {
	var availableOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every book in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books := a.catalog.Books()
			if availableOnly {
				shelf := books[:0]
				for _, b := range books {
					if b.Available() {
						shelf = append(shelf, b)
					}
				}
				books = shelf
			}
			if len(books) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No books in library.")
				return nil
			}
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}
	cmd.Flags().BoolVar(&availableOnly, "available", false, "only books on the shelf")
	return cmd
}

func newBookSearchCommand(a *app) *cobra.Command {
	var (
		genre, author string
		year          int
	)
	cmd := &cobra.Command{
		Use:   "search [keyword]",
		Short: "Search by keyword, or by exact genre, author or year",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				books []*library.Book
				err   error
			)
			switch {
			case genre != "":
				books, err = a.catalog.SearchBookByGenre(genre)
			case author != "":
				books, err = a.catalog.SearchBookByAuthor(author)
			case year != 0:
				books, err = a.catalog.SearchBookByYear(year)
			default:
				keyword := ""
				if len(args) == 1 {
					keyword = strings.TrimSpace(args[0])
				}
				books, err = a.catalog.SearchBookByKeyword(keyword)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Found %d book(s):\n", len(books))
			printBooks(cmd.OutOrStdout(), books)
			return nil
		},
	}
	cmd.Flags().StringVar(&genre, "genre", "", "exact genre")
	cmd.Flags().StringVar(&author, "author", "", "exact author")
	cmd.Flags().IntVar(&year, "year", 0, "exact release year")
	return cmd
}

func printBooks(w io.Writer, books []*library.Book) {
	fmt.Fprintf(w, "%-5s %-30s %-25s %-5s %-20s %-6s %-11s %s\n",
		"ID", "Title", "Author", "Year", "Genre", "Owner", "Return date", "Reservation Queue")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for _, b := range books {
		owner, due, queue := "None", "None", "None"
		if b.CurrentOwner != nil {
			owner = strconv.FormatInt(*b.CurrentOwner, 10)
		}
		if b.ReturnDate != nil {
			due = b.ReturnDate.String()
		}
		if len(b.Reservations) > 0 {
			ids := make([]string, len(b.Reservations))
			for i, id := range b.Reservations {
				ids[i] = fmt.Sprintf("%d.%d", i+1, id)
			}
			queue = strings.Join(ids, ", ")
		}
		fmt.Fprintf(w, "%-5d %-30s %-25s %-5s %-20s %-6s %-11s %s\n",
			b.ID,
			truncateString(b.Title, 30),
			truncateString(b.Author, 25),
			b.ReleaseYear,
			truncateString(b.Genre, 20),
			owner,
			due,
			queue)
	}
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}
