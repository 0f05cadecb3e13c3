package transcript

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/conversation"
)

// FileStore keeps the whole mapping in one structured file. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so a failed save leaves the previous snapshot in place.
type FileStore struct {
	path   string
	format Format
}

// NewFileStore creates a FileStore at path. The encoding follows the file
// extension (see FormatFor).
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, format: FormatFor(path)}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) LoadAll(_ context.Context) (map[string]conversation.Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]conversation.Record{}, nil
		}
		return map[string]conversation.Record{}, errors.WithMessagef(ErrLoadFailed, "%s: %v", s.path, err)
	}

	records, err := decodeSnapshot(s.format, data)
	if err != nil {
		return map[string]conversation.Record{}, errors.WithMessage(err, s.path)
	}
	return records, nil
}

func (s *FileStore) SaveAll(_ context.Context, records map[string]conversation.Record) error {
	data, err := encodeSnapshot(s.format, records)
	if err != nil {
		if errors.Is(err, ErrSaveFailed) {
			return errors.WithMessage(err, s.path)
		}
		return errors.WithMessagef(ErrSaveFailed, "encode %s: %v", s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}

	return nil
}
