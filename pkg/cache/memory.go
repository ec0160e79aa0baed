package cache

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	data     []byte
	expireAt time.Time
}

// MemoryCache implements Service on a size-bounded LRU. Entries carry their
// own deadline; the LRU TTL is the default policy and an upper bound for
// cleanup.
type MemoryCache struct {
	lru        *expirable.LRU[string, memoryEntry]
	defaultTTL time.Duration
	now        func() time.Time
	lockMu     sync.Mutex
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxSize:    1000,
		DefaultTTL: DefaultTTL,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryCache{
		lru:        expirable.NewLRU[string, memoryEntry](cfg.MaxSize, nil, cfg.DefaultTTL),
		defaultTTL: cfg.DefaultTTL,
		now:        cfg.now,
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	mc.lru.Add(key, memoryEntry{data: data, expireAt: mc.deadline(expiration)})
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	entry, ok := mc.lru.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	if !mc.now().Before(entry.expireAt) {
		mc.lru.Remove(key)
		return ErrCacheMiss
	}
	return decode(entry.data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		mc.lru.Remove(key)
	}
	return nil
}

func (mc *MemoryCache) Clear(_ context.Context) error {
	mc.lru.Purge()
	return nil
}

func (mc *MemoryCache) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	mc.lockMu.Lock()
	defer mc.lockMu.Unlock()

	if entry, ok := mc.lru.Peek(key); ok && mc.now().Before(entry.expireAt) {
		return false, nil
	}
	mc.lru.Add(key, memoryEntry{data: []byte("locked"), expireAt: mc.deadline(ttl)})
	return true, nil
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// Len reports the number of entries, expired ones included until touched.
func (mc *MemoryCache) Len() int {
	return mc.lru.Len()
}

func (mc *MemoryCache) Close() error {
	mc.lru.Purge()
	return nil
}

func (mc *MemoryCache) deadline(expiration time.Duration) time.Time {
	if expiration <= 0 || expiration > mc.defaultTTL {
		expiration = mc.defaultTTL
	}
	return mc.now().Add(expiration)
}
