package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SQLiteStore keeps every collection document as one row of the documents
// table.
type SQLiteStore struct {
	db  *sql.DB
	log *zap.Logger

	loadStmt *sql.Stmt
	saveStmt *sql.Stmt
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath, applies
// schema migrations, and prepares the document statements.
func NewSQLiteStore(dbPath string, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "create db dir")
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	store := &SQLiteStore{db: db, log: log.Named("sqlite-store")}
	if err := store.prepareStatements(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases prepared statements and closes the DB.
func (s *SQLiteStore) Close() error {
	if s.loadStmt != nil {
		s.loadStmt.Close()
	}
	if s.saveStmt != nil {
		s.saveStmt.Close()
	}
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return errors.Wrap(err, "enable WAL")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return errors.Wrap(err, "create meta")
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS documents (
            name TEXT PRIMARY KEY,
            body TEXT NOT NULL,
            updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`); err != nil {
		return errors.Wrap(err, "apply migration")
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return errors.Wrap(err, "apply migration")
	}

	return tx.Commit()
}

func (s *SQLiteStore) prepareStatements() error {
	var err error
	if s.loadStmt, err = s.db.Prepare(`SELECT body FROM documents WHERE name=?`); err != nil {
		return errors.Wrap(err, "prepare load")
	}
	if s.saveStmt, err = s.db.Prepare(`INSERT INTO documents(name,body,updated_at) VALUES(?,?,CURRENT_TIMESTAMP)
        ON CONFLICT(name) DO UPDATE SET body=excluded.body, updated_at=excluded.updated_at`); err != nil {
		return errors.Wrap(err, "prepare save")
	}
	return nil
}

func (s *SQLiteStore) Load(c Collection) ([]byte, error) {
	var body string
	err := s.loadStmt.QueryRow(string(c)).Scan(&body)
	if err == sql.ErrNoRows {
		return emptyDocument, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load document %s", c)
	}
	return []byte(body), nil
}

func (s *SQLiteStore) Save(c Collection, data []byte) error {
	if _, err := s.saveStmt.Exec(string(c), string(data)); err != nil {
		return errors.Wrapf(err, "save document %s", c)
	}
	s.log.Debug("document saved", zap.String("collection", string(c)), zap.Int("bytes", len(data)))
	return nil
}
