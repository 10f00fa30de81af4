package storage

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// JSONStore keeps each collection in <dir>/<collection>.json.
type JSONStore struct {
	dir string
	log *zap.Logger
}

// NewJSONStore creates dir when it is missing so the first run succeeds.
func NewJSONStore(dir string, log *zap.Logger) (*JSONStore, error) {
	if dir == "" {
		dir = "."
	}
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", dir)
	}
	return &JSONStore{dir: dir, log: log.Named("json-store")}, nil
}

// Path returns the file backing c.
func (s *JSONStore) Path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *JSONStore) Load(c Collection) ([]byte, error) {
	path := s.Path(c)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return emptyDocument, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	if len(data) == 0 {
		return emptyDocument, nil
	}
	return data, nil
}

// Save writes through a temporary file and renames it over the old document.
func (s *JSONStore) Save(c Collection, data []byte) error {
	path := s.Path(c)
	tmp, err := os.CreateTemp(s.dir, string(c)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "write %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	s.log.Debug("document saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

func (s *JSONStore) Close() error { return nil }
