package transcript_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/threads/transcript"
)

func TestDefaultConfig(t *testing.T) {
	cfg := transcript.DefaultConfig()

	assert.Equal(t, transcript.BackendFile, cfg.Backend)
	assert.Empty(t, cfg.Path)
	assert.Equal(t, transcript.DefaultPath, cfg.ResolvePath())
	assert.Equal(t, transcript.DefaultRedisKey, cfg.Key)
}

func TestConfig_ResolvePath(t *testing.T) {
	tests := []struct {
		name string
		cfg  transcript.Config
		want string
	}{
		{"file default", transcript.Config{Backend: transcript.BackendFile}, transcript.DefaultPath},
		{"empty backend", transcript.Config{}, transcript.DefaultPath},
		{"bolt default", transcript.Config{Backend: transcript.BackendBolt}, transcript.DefaultBoltPath},
		{"explicit path", transcript.Config{Backend: transcript.BackendBolt, Path: "data/t.bolt"}, "data/t.bolt"},
		{"redis ignores path", transcript.Config{Backend: transcript.BackendRedis}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.ResolvePath())
		})
	}
}

func TestConfig_Merge_BoltWithoutPath(t *testing.T) {
	cfg := transcript.DefaultConfig()
	cfg.Merge(&transcript.Config{Backend: transcript.BackendBolt})

	assert.Equal(t, transcript.DefaultBoltPath, cfg.ResolvePath(), "bolt must not inherit the JSON snapshot path")
}

func TestConfig_Merge(t *testing.T) {
	cfg := transcript.DefaultConfig()
	cfg.Merge(&transcript.Config{Backend: transcript.BackendBolt, Path: "/data/threads.bolt"})

	assert.Equal(t, transcript.BackendBolt, cfg.Backend)
	assert.Equal(t, "/data/threads.bolt", cfg.Path)
	assert.Equal(t, transcript.DefaultRedisKey, cfg.Key, "unset fields keep defaults")
}

func TestConfig_Merge_EmptyPreservesDefault(t *testing.T) {
	cfg := transcript.DefaultConfig()
	cfg.Merge(&transcript.Config{})

	assert.Equal(t, transcript.DefaultConfig(), cfg)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     transcript.Config
		want    any
		wantErr bool
	}{
		{name: "file", cfg: transcript.Config{Backend: "file", Path: filepath.Join(dir, "t.json")}, want: &transcript.FileStore{}},
		{name: "default backend", cfg: transcript.Config{}, want: &transcript.FileStore{}},
		{name: "bolt", cfg: transcript.Config{Backend: "bolt", Path: filepath.Join(dir, "t.bolt")}, want: &transcript.BoltStore{}},
		{name: "bolt without path", cfg: transcript.Config{Backend: "bolt"}, want: &transcript.BoltStore{}},
		{name: "redis", cfg: transcript.Config{Backend: "redis", Addr: "localhost:6379"}, want: &transcript.RedisStore{}},
		{name: "redis without addr", cfg: transcript.Config{Backend: "redis"}, wantErr: true},
		{name: "sql sqlite", cfg: transcript.Config{Backend: "sql", Dialect: "sqlite", DSN: filepath.Join(dir, "t.db")}, want: &transcript.SQLStore{}},
		{name: "sql without dsn", cfg: transcript.Config{Backend: "sql"}, wantErr: true},
		{name: "memory", cfg: transcript.Config{Backend: "memory"}, want: &transcript.MemoryStore{}},
		{name: "unknown", cfg: transcript.Config{Backend: "tape"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := transcript.NewStore(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, store)
		})
	}
}

func TestNewStore_UnknownBackendSentinel(t *testing.T) {
	_, err := transcript.NewStore(&transcript.Config{Backend: "tape"})
	assert.ErrorIs(t, err, transcript.ErrUnknownBackend)
}
