package transcript

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/tailored-agentic-units/threads/conversation"
)

var conversationsBucket = []byte("conversations")

// BoltStore keeps one JSON-encoded record per key in a bbolt bucket. SaveAll
// recreates the bucket inside a single update transaction, so readers see
// either the previous snapshot or the new one.
type BoltStore struct {
	path    string
	timeout time.Duration
}

// NewBoltStore creates a BoltStore backed by the database file at path. The
// file is opened per call and closed afterwards.
func NewBoltStore(path string) *BoltStore {
	return &BoltStore{path: path, timeout: time.Second}
}

func (s *BoltStore) LoadAll(_ context.Context) (map[string]conversation.Record, error) {
	empty := map[string]conversation.Record{}

	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return empty, nil
		}
		return empty, errors.WithMessagef(ErrLoadFailed, "%s: %v", s.path, err)
	}
	if info.Size() == 0 {
		return empty, nil
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: s.timeout, ReadOnly: true})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return empty, errors.WithMessagef(ErrLoadFailed, "%s: %v", s.path, err)
		}
		return empty, errors.WithMessagef(ErrCorrupt, "%s: %v", s.path, err)
	}
	defer func() { _ = db.Close() }()

	records := map[string]conversation.Record{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(conversationsBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(string(k), v)
			if err != nil {
				return err
			}
			records[string(k)] = rec
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			return empty, errors.WithMessage(err, s.path)
		}
		return empty, errors.WithMessagef(ErrLoadFailed, "%s: %v", s.path, err)
	}

	if err := validateRecords(records); err != nil {
		return empty, errors.WithMessage(err, s.path)
	}
	return records, nil
}

func (s *BoltStore) SaveAll(_ context.Context, records map[string]conversation.Record) error {
	if err := checkUTF8(records); err != nil {
		return errors.WithMessage(err, s.path)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}

	db, err := bolt.Open(s.path, 0o600, &bolt.Options{Timeout: 2 * s.timeout})
	if err != nil {
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}
	defer func() { _ = db.Close() }()

	err = db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(conversationsBucket) != nil {
			if err := tx.DeleteBucket(conversationsBucket); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(conversationsBucket)
		if err != nil {
			return err
		}
		for id, rec := range records {
			enc, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(id), enc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(ErrSaveFailed, "%s: %v", s.path, err)
	}
	return nil
}
