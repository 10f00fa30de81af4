package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"library-console/config"
	"library-console/library"
	"library-console/logger"
	"library-console/storage"
)

// app holds what every command needs once the root command has opened the
// store. Nothing here outlives a single invocation.
type app struct {
	configFile string
	id         int64
	password   string

	log     *zap.Logger
	store   storage.Store
	catalog *library.Catalog
}

func main() {
	root, a := newRootCommand()
	err := root.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{log: zap.NewNop()}
	root := &cobra.Command{
		Use:          "library-console",
		Short:        "Library catalog, accounts, loans and reservations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./config/config.yaml or ./config.yaml)")
	root.PersistentFlags().Int64Var(&a.id, "id", 0, "your reader or librarian ID")
	root.PersistentFlags().StringVar(&a.password, "password", "", "your password (prompted when empty)")

	root.AddCommand(
		newRegisterCommand(a),
		newBookCommand(a),
		newUserCommand(a),
		newLibrarianCommand(a),
		newStatsCommand(a),
		newMeCommand(a),
	)
	root.AddCommand(newLoanCommands(a)...)
	return root, a
}

func (a *app) open() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.log = logger.NewLogger(cfg.Log, "library")

	a.store, err = storage.Open(cfg.Storage.Driver, cfg.Storage.Dir, cfg.Storage.SQLitePath, a.log)
	if err != nil {
		return err
	}
	a.catalog, err = library.NewCatalog(a.store,
		library.WithLogger(a.log),
		library.WithPolicy(library.LendingPolicy{
			LoanDays:     cfg.Lending.LoanDays,
			Extensions:   cfg.Lending.Extensions,
			ReminderDays: cfg.Lending.ReminderDays,
		}),
	)
	return err
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn("closing store", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// session authenticates the --id flag, prompting for the password when the
// flag was not given.
func (a *app) session(cmd *cobra.Command) (*library.Session, error) {
	if a.id == 0 {
		return nil, errors.New("this command needs --id")
	}
	password := a.password
	if password == "" {
		var err error
		if password, err = readPassword(cmd.ErrOrStderr(), "Enter your password: "); err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
	}
	return a.catalog.Login(a.id, password)
}

func (a *app) reader(cmd *cobra.Command) (*library.User, error) {
	s, err := a.session(cmd)
	if err != nil {
		return nil, err
	}
	return s.RequireReader()
}

func (a *app) librarian(cmd *cobra.Command) (*library.Session, error) {
	s, err := a.session(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := s.RequireLibrarian(); err != nil {
		return nil, err
	}
	return s, nil
}

// readPassword reads a password with masking
func readPassword(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Fprintln(w)
	return strings.TrimSpace(string(bytePassword)), nil
}

// newPassword returns flagValue or prompts for a password for name.
func newPassword(cmd *cobra.Command, flagValue, name string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return readPassword(cmd.ErrOrStderr(), fmt.Sprintf("Enter password for %s: ", name))
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid ID: %s", s)
	}
	return id, nil
}

func truncateString(s string, maxLength int) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	return string(r[:maxLength-3]) + "..."
}
