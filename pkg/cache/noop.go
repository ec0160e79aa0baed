package cache

import (
	"context"
	"time"
)

// NoopCache misses on every read. Used when caching is disabled.
type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (NoopCache) Get(context.Context, string, interface{}) error                { return ErrCacheMiss }
func (NoopCache) Delete(context.Context, ...string) error                       { return nil }
func (NoopCache) Clear(context.Context) error                                   { return nil }
func (NoopCache) TryLock(context.Context, string, time.Duration) (bool, error)  { return true, nil }
func (NoopCache) Unlock(context.Context, string) error                          { return nil }
func (NoopCache) Close() error                                                  { return nil }
