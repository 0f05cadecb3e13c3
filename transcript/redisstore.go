package transcript

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/tailored-agentic-units/threads/conversation"
)

// DefaultRedisKey is the hash key holding the snapshot.
const DefaultRedisKey = "threads:conversations"

// RedisStore keeps the snapshot in a single Redis hash, one JSON-encoded
// record per field. SaveAll replaces the hash inside a MULTI/EXEC block.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a RedisStore using client. An empty key selects
// DefaultRedisKey.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) LoadAll(ctx context.Context) (map[string]conversation.Record, error) {
	empty := map[string]conversation.Record{}

	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return empty, errors.WithMessagef(ErrLoadFailed, "redis %s: %v", s.key, err)
	}

	records := make(map[string]conversation.Record, len(fields))
	for id, raw := range fields {
		rec, err := decodeRecord(id, []byte(raw))
		if err != nil {
			return empty, errors.WithMessagef(err, "redis %s", s.key)
		}
		records[id] = rec
	}

	if err := validateRecords(records); err != nil {
		return empty, errors.WithMessagef(err, "redis %s", s.key)
	}
	return records, nil
}

func (s *RedisStore) SaveAll(ctx context.Context, records map[string]conversation.Record) error {
	if err := checkUTF8(records); err != nil {
		return errors.WithMessagef(err, "redis %s", s.key)
	}
	values := make(map[string]interface{}, len(records))
	for id, rec := range records {
		enc, err := json.Marshal(rec)
		if err != nil {
			return errors.WithMessagef(ErrSaveFailed, "encode %s: %v", id, err)
		}
		values[id] = string(enc)
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values)
		}
		return nil
	})
	if err != nil {
		return errors.WithMessagef(ErrSaveFailed, "redis %s: %v", s.key, err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
