package storage

import (
	"fmt"

	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

// Collection names one whole-collection document.
type Collection string

const (
	Books      Collection = "books"
	Users      Collection = "users"
	Librarians Collection = "librarians"
)

// Collections lists every document the library keeps.
var Collections = []Collection{Books, Users, Librarians}

// Store reads and writes whole-collection documents. Every Save replaces the
// full document. A document that was never saved loads as an empty array.
type Store interface {
	Load(c Collection) ([]byte, error)
	Save(c Collection, data []byte) error
	Close() error
}

const (
	DriverJSON   = "json"
	DriverSQLite = "sqlite"
)

var emptyDocument = []byte("[]")

// Open builds the store selected by driver. dir is used by the JSON driver,
// sqlitePath by the SQLite driver.
func Open(driver, dir, sqlitePath string, log *zap.Logger) (Store, error) {
	switch driver {
	case DriverJSON, "":
		return NewJSONStore(dir, log)
	case DriverSQLite:
		return NewSQLiteStore(sqlitePath, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
