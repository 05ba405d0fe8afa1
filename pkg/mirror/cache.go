package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"hedera-agent-kit/pkg/logger"
)

// Cache stores serialised lookups for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get implements Cache. Expired entries are evicted on read.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{value: append([]byte(nil), value...), expires: c.now().Add(ttl)}
	return nil
}

// RedisCacheConfig describes the Redis connection backing a RedisCache.
type RedisCacheConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisCache shares mirror lookups between toolkit processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg RedisCacheConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisCacheFromClient(client, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "agentkit:mirror:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Set implements Cache.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedService caches account and token metadata lookups. Balances and
// topic messages always go to the wrapped service.
type CachedService struct {
	Service
	cache Cache
	ttl   time.Duration
}

// NewCachedService decorates inner with cache. A non-positive ttl defaults to
// thirty seconds.
func NewCachedService(inner Service, cache Cache, ttl time.Duration) *CachedService {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedService{Service: inner, cache: cache, ttl: ttl}
}

// GetAccount implements Service.
func (s *CachedService) GetAccount(ctx context.Context, accountID string) (Account, error) {
	return cached(ctx, s, "account:"+accountID, func() (Account, error) {
		return s.Service.GetAccount(ctx, accountID)
	})
}

// GetTokenInfo implements Service.
func (s *CachedService) GetTokenInfo(ctx context.Context, tokenID string) (TokenInfo, error) {
	return cached(ctx, s, "token:"+tokenID, func() (TokenInfo, error) {
		return s.Service.GetTokenInfo(ctx, tokenID)
	})
}

func cached[T any](ctx context.Context, s *CachedService, key string, load func() (T, error)) (T, error) {
	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		logger.Named("mirror").Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
	} else if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value, nil
		}
	}
	value, err := load()
	if err != nil {
		return value, err
	}
	if raw, err := json.Marshal(value); err == nil {
		if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
			logger.Named("mirror").Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return value, nil
}
