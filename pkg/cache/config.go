package cache

import "time"

// DefaultTTL applies when neither the caller nor the options set one.
const DefaultTTL = 6 * time.Hour

// RedisConfig is the L2 connection. Zero fields fall back to withDefaults.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	PoolTimeout  time.Duration
	MinIdleConns int
	Prefix       string
	DefaultTTL   time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 6379
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.PoolTimeout <= 0 {
		c.PoolTimeout = 30 * time.Second
	}
	if c.MinIdleConns < 0 {
		c.MinIdleConns = 0
	}
	if c.Prefix == "" {
		c.Prefix = "eurolens"
	}
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = DefaultTTL
	}
	return c
}

// MemoryOption configures the in-process cache.
type MemoryOption func(*MemoryConfig)

type MemoryConfig struct {
	MaxSize    int
	DefaultTTL time.Duration
	now        func() time.Time
}

func WithMemoryMaxSize(size int) MemoryOption {
	return func(c *MemoryConfig) {
		if size > 0 {
			c.MaxSize = size
		}
	}
}

// WithMemoryTTL sets the TTL used when Set is called without one. It also
// caps explicit expirations.
func WithMemoryTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryConfig) {
		if ttl > 0 {
			c.DefaultTTL = ttl
		}
	}
}

func withClock(now func() time.Time) MemoryOption {
	return func(c *MemoryConfig) { c.now = now }
}
