package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"loanlens/internal"
	apperrors "loanlens/internal/errors"
	"loanlens/ports"
)

// DefaultPrefix namespaces every key this cache writes
const DefaultPrefix = "loanlens:"

const scanCount = 100

// ClientConstructor allows tests to substitute the client
type ClientConstructor func(opt *redis.Options) *redis.Client

// Connect parses a redis:// URL, builds a client and pings it
func Connect(ctx context.Context, url string, newClient ClientConstructor, logger *internal.Logger) (*redis.Client, error) {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	logger.Info("[RedisCache] connecting to %s db %d", opts.Addr, opts.DB)
	if newClient == nil {
		newClient = redis.NewClient
	}
	client := newClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.ExternalServiceError("redis", err)
	}
	return client, nil
}

// Cache stores encoded views in Redis with a fixed TTL
type Cache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ ports.ViewCache = (*Cache)(nil)

// New wraps a redis client; a zero ttl keeps entries until purged
func New(client redis.Cmdable, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Cache{client: client, prefix: prefix, ttl: ttl}
}

// Get returns ports.ErrCacheMiss for absent keys
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores value under key
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Purge deletes every key under the prefix
func (c *Cache) Purge(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, c.prefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("redis scan: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
