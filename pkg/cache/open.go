package cache

import (
	"context"
	"fmt"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendNull  = "null"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string // file (default), null, redis or mongo

	Dir string // file backend directory

	RedisAddr string // host:port or redis:// URL

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Open returns the configured backend. Remote backends are pinged, with
// retries, before Open returns.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: no directory")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNull:
		return NewNullCache(), nil
	case BackendRedis:
		c, err := NewRedisCache(opts.RedisAddr)
		if err != nil {
			return nil, err
		}
		return connected(ctx, c)
	case BackendMongo:
		c, err := NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection)
		if err != nil {
			return nil, err
		}
		if _, err := connected(ctx, c); err != nil {
			return nil, err
		}
		if err := c.EnsureIndexes(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("mongodb ttl index: %w", err)
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
}

func connected[C interface {
	Cache
	pinger
}](ctx context.Context, c C) (Cache, error) {
	err := RetryWithBackoff(ctx, func() error {
		return Retryable(c.Ping(ctx))
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
