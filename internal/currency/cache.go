package currency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "currency_rate_cache_hits_total",
		Help: "Exchange rate lookups answered from the cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "currency_rate_cache_misses_total",
		Help: "Exchange rate lookups that fell through to the backing store.",
	})
)

// Cache is the key/value store used by CachedStore.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache is a Cache backed by Redis.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is an in-process Cache. Expired entries are dropped on read.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string]memoryEntry
	now  func() time.Time
}

type memoryEntry struct {
	value   string
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		data: make(map[string]memoryEntry),
		now:  time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.data, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, key)
	return nil
}

// CachedStore is a read-through cache for single-rate lookups. Listing always
// goes to the backing store.
type CachedStore struct {
	store RateStore
	cache Cache
	ttl   time.Duration
}

func NewCachedStore(store RateStore, cache Cache, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, cache: cache, ttl: ttl}
}

func cacheKey(code Code) string {
	return "currency:rate:" + string(code)
}

// GetRate serves from the cache when possible. Cache errors degrade to a
// store lookup rather than failing the request.
func (s *CachedStore) GetRate(ctx context.Context, code Code) (Rate, error) {
	if raw, ok, err := s.cache.Get(ctx, cacheKey(code)); err == nil && ok {
		var r Rate
		if json.Unmarshal([]byte(raw), &r) == nil {
			cacheHits.Inc()
			return r, nil
		}
	}
	cacheMisses.Inc()

	r, err := s.store.GetRate(ctx, code)
	if err != nil {
		return Rate{}, err
	}

	if raw, err := json.Marshal(r); err == nil {
		_ = s.cache.Set(ctx, cacheKey(code), string(raw), s.ttl)
	}
	return r, nil
}

func (s *CachedStore) ListRates(ctx context.Context) ([]Rate, error) {
	return s.store.ListRates(ctx)
}

func (s *CachedStore) SetRate(ctx context.Context, rate Rate) error {
	if err := s.store.SetRate(ctx, rate); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey(rate.Code)); err != nil {
		return fmt.Errorf("invalidate cached rate %s: %w", rate.Code, err)
	}
	return nil
}

func (s *CachedStore) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
