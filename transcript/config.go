package transcript

import (
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Store backends selectable from configuration.
const (
	BackendFile   = "file"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendSQL    = "sql"
	BackendMemory = "memory"
)

// Default paths used when no path is configured for the file and bolt
// backends.
const (
	DefaultPath     = "threads.json"
	DefaultBoltPath = "threads.bolt"
)

// Config holds store initialization parameters.
type Config struct {
	Backend  string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Path     string `json:"path,omitempty" yaml:"path,omitempty"`         // file and bolt backends
	Addr     string `json:"addr,omitempty" yaml:"addr,omitempty"`         // redis
	Password string `json:"password,omitempty" yaml:"password,omitempty"` // redis
	DB       int    `json:"db,omitempty" yaml:"db,omitempty"`             // redis logical database
	Key      string `json:"key,omitempty" yaml:"key,omitempty"`           // redis hash key
	Dialect  string `json:"dialect,omitempty" yaml:"dialect,omitempty"`   // sql: sqlite or postgres
	DSN      string `json:"dsn,omitempty" yaml:"dsn,omitempty"`           // sql
}

// DefaultConfig returns a file-backed JSON store configuration. Path is left
// empty so that each backend falls back to its own default.
func DefaultConfig() Config {
	return Config{
		Backend: BackendFile,
		Key:     DefaultRedisKey,
		Dialect: "sqlite",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Addr != "" {
		c.Addr = source.Addr
	}
	if source.Password != "" {
		c.Password = source.Password
	}
	if source.DB != 0 {
		c.DB = source.DB
	}
	if source.Key != "" {
		c.Key = source.Key
	}
	if source.Dialect != "" {
		c.Dialect = source.Dialect
	}
	if source.DSN != "" {
		c.DSN = source.DSN
	}
}

// ResolvePath returns the configured path, or the default for the file and
// bolt backends when none is set. Other backends return Path unchanged.
func (c *Config) ResolvePath() string {
	if c.Path != "" {
		return c.Path
	}
	switch c.Backend {
	case "", BackendFile:
		return DefaultPath
	case BackendBolt:
		return DefaultBoltPath
	default:
		return ""
	}
}

// NewStore creates a Store from configuration.
func NewStore(cfg *Config) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.ResolvePath()), nil
	case BackendBolt:
		return NewBoltStore(cfg.ResolvePath()), nil
	case BackendRedis:
		if cfg.Addr == "" {
			return nil, errors.New("redis backend requires an addr")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return NewRedisStore(client, cfg.Key), nil
	case BackendSQL:
		if cfg.DSN == "" {
			return nil, errors.New("sql backend requires a dsn")
		}
		db, err := OpenSQL(cfg.Dialect, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewSQLStore(db)
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, errors.WithMessagef(ErrUnknownBackend, "%q", cfg.Backend)
	}
}
