package urlcache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Resolver resolves an object key to a retrieval URL.
type Resolver func(ctx context.Context, key string) (string, error)

// Cache memoizes resolved (presigned) URLs in Redis with a TTL shorter than
// the URL's own validity window.
type Cache struct {
	cli *redis.Client
	ttl time.Duration
}

func New(addr, password string, db int, ttl time.Duration) *Cache {
	return &Cache{
		cli: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db}),
		ttl: ttl,
	}
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.cli.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.cli.Close()
}

// ResolveURL returns the cached URL for the key, resolving and caching on a
// miss. Cache failures degrade to direct resolution.
func (c *Cache) ResolveURL(ctx context.Context, key string, resolve Resolver) (string, error) {
	cacheKey := "signedurl:" + key
	if url, err := c.cli.Get(ctx, cacheKey).Result(); err == nil {
		return url, nil
	}
	// redis.Nil is a plain miss; other cache errors also degrade to resolving
	url, err := resolve(ctx, key)
	if err != nil {
		return "", err
	}
	_ = c.cli.Set(ctx, cacheKey, url, c.ttl).Err()
	return url, nil
}

// Invalidate drops a cached URL, used when the underlying object is deleted.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	_ = c.cli.Del(ctx, "signedurl:"+key).Err()
}
