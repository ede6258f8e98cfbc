package operators

import (
	"context"
	"database/sql"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store persists the operator list. Save replaces the whole list and must
// keep its order. Load reports saved=false only when Save never ran, so an
// emptied list is told apart from a fresh store.
type Store interface {
	Load(ctx context.Context) (ids []int64, saved bool, err error)
	Save(ctx context.Context, ids []int64) error
	Close() error
}

// StoreType names a Store driver.
type StoreType string

const (
	StoreTypeFile     StoreType = "file"
	StoreTypePostgres StoreType = "postgres"
	StoreTypeSQLite   StoreType = "sqlite"
	StoreTypeRedis    StoreType = "redis"
)

var (
	ErrInvalidStoreType = errors.New("invalid operator store type")
	ErrInvalidConfig    = errors.New("invalid operator store configuration")
)

type StoreOption func(*storeConfig)

type storeConfig struct {
	path     string
	db       *sql.DB
	redis    *redis.Client
	redisKey string
}

// WithFilePath sets the YAML config file for the file driver.
func WithFilePath(path string) StoreOption {
	return func(c *storeConfig) { c.path = path }
}

// WithDB sets the database handle for the postgres and sqlite drivers.
func WithDB(db *sql.DB) StoreOption {
	return func(c *storeConfig) { c.db = db }
}

func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redis = client }
}

func WithRedisKey(key string) StoreOption {
	return func(c *storeConfig) { c.redisKey = key }
}

// NewStore builds a Store for storeType. SQL drivers create their table.
func NewStore(ctx context.Context, storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := &storeConfig{redisKey: defaultRedisKey}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case StoreTypeFile:
		if cfg.path == "" {
			return nil, ErrInvalidConfig
		}
		return NewFileStore(cfg.path), nil

	case StoreTypePostgres, StoreTypeSQLite:
		if cfg.db == nil {
			return nil, ErrInvalidConfig
		}
		d := dialectPostgres
		if storeType == StoreTypeSQLite {
			d = dialectSQLite
		}
		repo := newOperatorRepo(cfg.db, d)
		if err := repo.Migrate(ctx); err != nil {
			return nil, err
		}
		return repo, nil

	case StoreTypeRedis:
		if cfg.redis == nil {
			return nil, ErrInvalidConfig
		}
		return &redisStore{client: cfg.redis, key: cfg.redisKey}, nil

	default:
		return nil, ErrInvalidStoreType
	}
}
