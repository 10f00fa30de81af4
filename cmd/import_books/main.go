package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"library-console/config"
	"library-console/library"
	"library-console/logger"
	"library-console/storage"
)

type bookMetadata struct {
	title, author string
	year          int
	genre         string
}

// classics seeds an empty library.
var classics = []bookMetadata{
	{"1984", "George Orwell", 1949, "Dystopian fiction"},
	{"Animal Farm", "George Orwell", 1945, "Satire"},
	{"The Diary of a Young Girl", "Anne Frank", 1947, "Memoir"},
	{"The Art of War", "Sun Tzu", 500, "Military strategy"},
	{"The Fellowship of the Ring", "J.R.R. Tolkien", 1954, "Fantasy"},
	{"The Two Towers", "J.R.R. Tolkien", 1954, "Fantasy"},
	{"The Return of the King", "J.R.R. Tolkien", 1955, "Fantasy"},
	{"Harry Potter and the Philosopher's Stone", "J.K. Rowling", 1997, "Fantasy"},
	{"Harry Potter and the Chamber of Secrets", "J.K. Rowling", 1998, "Fantasy"},
	{"Harry Potter and the Prisoner of Azkaban", "J.K. Rowling", 1999, "Fantasy"},
	{"Harry Potter and the Order of the Phoenix", "J.K. Rowling", 2003, "Fantasy"},
	{"Harry Potter and the Half-Blood Prince", "J.K. Rowling", 2005, "Fantasy"},
	{"Harry Potter and the Deathly Hallows", "J.K. Rowling", 2007, "Fantasy"},
	{"Romeo and Juliet", "William Shakespeare", 1597, "Tragedy"},
	{"The Three Musketeers", "Alexandre Dumas", 1844, "Adventure"},
	{"Lalka", "Bolesław Prus", 1890, "Novel"},
}

func main() {
	var (
		configFile string
		reset      bool
	)
	cmd := &cobra.Command{
		Use:          "import_books",
		Short:        "Add a built-in list of classics to the catalog",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, reset)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "config file")
	cmd.Flags().BoolVar(&reset, "reset", false, "empty every collection before importing")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configFile string, reset bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log, "import_books")
	defer log.Sync()

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Dir, cfg.Storage.SQLitePath, log)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	if reset {
		fmt.Println("Cleaning up existing collections...")
		for _, c := range storage.Collections {
			if err := store.Save(c, []byte("[]")); err != nil {
				return err
			}
		}
		fmt.Println("Cleanup complete.")
	}

	catalog, err := library.NewCatalog(store, library.WithLogger(log))
	if err != nil {
		return err
	}

	present := make(map[string]bool)
	for _, b := range catalog.Books() {
		present[b.Title+"\x00"+b.Author] = true
	}

	fmt.Printf("Importing %d books...\n", len(classics))
	successCount, skipCount, errorCount := 0, 0, 0
	for _, m := range classics {
		if present[m.title+"\x00"+m.author] {
			skipCount++
			continue
		}
		fmt.Printf("Importing: %s by %s... ", m.title, m.author)

		id, err := catalog.NewBookID()
		if err != nil {
			return err
		}
		book, err := library.NewBook(id, m.title, m.author, m.year, m.genre)
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		if _, err := catalog.AddNewBook(book); err != nil {
			log.Error("import failed", zap.String("title", m.title), zap.Error(err))
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %d)\n", id)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Already present: %d\n", skipCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nBooks in the catalog:")
		fmt.Printf("%-5s %-50s %-30s\n", "ID", "Title", "Author")
		fmt.Println(strings.Repeat("-", 87))
		for _, book := range catalog.Books() {
			fmt.Printf("%-5d %-50s %-30s\n", book.ID, truncateString(book.Title, 50), truncateString(book.Author, 30))
		}
	}
	return nil
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
