package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// noopCache never stores anything. It stands in when Redis is not configured.
type noopCache struct{}

func NewNoopCache() CacheService {
	return noopCache{}
}

// NewNoopCacheManager returns a manager whose caches always miss.
func NewNoopCacheManager() *CacheManager {
	return &CacheManager{Topic: noopCache{}, Core: noopCache{}, Analysis: noopCache{}}
}

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Get(context.Context, string, interface{}) error { return ErrCacheMiss }

func (noopCache) Delete(context.Context, string) error { return nil }

func (noopCache) DeletePattern(context.Context, string) error { return nil }

func (noopCache) CacheOrExecute(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader Loader) error {
	value, err := loader()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode loaded value: %w", err)
	}
	return json.Unmarshal(data, dest)
}
