package clients

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/credisur/credisur/internal/catalog"
)

// CacheKey is where the client list is cached.
const CacheKey = "credisur:clients"

// Cache is a string key/value store with expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on a Redis server.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{client: rdb}
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// CachedProvider serves List from a cache and refills it from the wrapped
// provider on a miss. Cache failures are logged and otherwise ignored.
type CachedProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedProvider(next Provider, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (p *CachedProvider) List(ctx context.Context) ([]catalog.Client, error) {
	if raw, ok := p.cache.Get(ctx, CacheKey); ok {
		var cached []catalog.Client
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			p.logger.Debug("client list served from cache", zap.Int("count", len(cached)))
			return cached, nil
		}
		p.logger.Warn("discarding unreadable cached client list")
	}

	list, err := p.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(list); err == nil {
		if err := p.cache.Set(ctx, CacheKey, string(data), p.ttl); err != nil {
			p.logger.Warn("caching client list failed", zap.Error(err))
		}
	}
	return list, nil
}

// Create delegates and invalidates the cached list.
func (p *CachedProvider) Create(ctx context.Context, nc NewClient) (catalog.Client, error) {
	c, err := p.next.Create(ctx, nc)
	if err != nil {
		return c, err
	}
	if err := p.cache.Delete(ctx, CacheKey); err != nil {
		p.logger.Warn("invalidating cached client list failed", zap.Error(err))
	}
	return c, nil
}
