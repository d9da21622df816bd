package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Blog_Community/internal/cache"

	"github.com/redis/go-redis/v9"
)

const (
	pageCachePrefix = "feed:page"
	pageCacheGenKey = "feed:page:gen"
)

// PageCache 用 Redis 实现的页面缓存。清空时只把代数加一，旧代数的键靠 TTL 自然过期
type PageCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewPageCache(rdb *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = cache.DefaultTTL
	}
	return &PageCache{RDB: rdb, TTL: ttl}
}

func (c *PageCache) generation(ctx context.Context) (uint64, error) {
	gen, err := c.RDB.Get(ctx, pageCacheGenKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func pageKey(gen uint64, k cache.Key) string {
	return fmt.Sprintf("%s:%d:%s", pageCachePrefix, gen, k.String())
}

func (c *PageCache) Get(ctx context.Context, k cache.Key) (cache.Lookup, error) {
	gen, err := c.generation(ctx)
	if err != nil {
		return cache.Lookup{}, err
	}
	res := cache.Lookup{Gen: gen}
	val, err := c.RDB.Get(ctx, pageKey(gen, k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return res, nil
	}
	if err != nil {
		return res, err
	}
	res.Value, res.Hit = val, true
	return res, nil
}

// Set 写在查询时的代数下；期间失效过的话这个键不会再被读到
func (c *PageCache) Set(ctx context.Context, k cache.Key, gen uint64, value []byte) error {
	return c.RDB.Set(ctx, pageKey(gen, k), value, c.TTL).Err()
}

func (c *PageCache) Invalidate(ctx context.Context) error {
	return c.RDB.Incr(ctx, pageCacheGenKey).Err()
}

var _ cache.PageCache = (*PageCache)(nil)
