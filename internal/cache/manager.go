package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type CacheConfig struct {
	Prefix string
	TTL    time.Duration
}

var (
	TopicCacheConfig    = CacheConfig{Prefix: "engine:topic:", TTL: 24 * time.Hour}
	CoreCacheConfig     = CacheConfig{Prefix: "engine:core:", TTL: 10 * time.Minute}
	AnalysisCacheConfig = CacheConfig{Prefix: "engine:analysis:", TTL: 5 * time.Minute}
)

// CacheManager groups the caches of each domain area.
type CacheManager struct {
	Topic    CacheService
	Core     CacheService
	Analysis CacheService
}

func NewCacheManager(client redis.UniversalClient, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		Topic:    NewRedisCache(client, TopicCacheConfig.Prefix, logger),
		Core:     NewRedisCache(client, CoreCacheConfig.Prefix, logger),
		Analysis: NewRedisCache(client, AnalysisCacheConfig.Prefix, logger),
	}
}

// SafeDelete removes a key, ignoring cache failures.
func SafeDelete(ctx context.Context, c CacheService, key string) {
	_ = c.Delete(ctx, key)
}

// SafeInvalidatePattern removes every key matching pattern, ignoring cache failures.
func SafeInvalidatePattern(ctx context.Context, c CacheService, pattern string) {
	_ = c.DeletePattern(ctx, pattern)
}

func SubTopicKey(id string) string {
	return fmt.Sprintf("sub:%s", id)
}

func CoreKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

func CoreRankingKey(coreID uint) string {
	return fmt.Sprintf("core:%d", coreID)
}

func WrapperRankingKey(wrapperID uint) string {
	return fmt.Sprintf("wrapper:%d", wrapperID)
}

// InvalidateCoreCache drops the cached core and every cached analysis
// derived from it.
func InvalidateCoreCache(ctx context.Context, m *CacheManager, coreID uint) {
	SafeDelete(ctx, m.Core, CoreKey(coreID))
	SafeDelete(ctx, m.Analysis, CoreRankingKey(coreID))
	SafeInvalidatePattern(ctx, m.Analysis, "wrapper:*")
}
