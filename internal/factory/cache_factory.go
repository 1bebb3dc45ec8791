package factory

import (
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/cache"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict caches based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVerdictCache creates the cache selected by cache.type. The store
// cache keeps verdicts next to the other records in store.
func (f *CacheFactory) CreateVerdictCache(store core.Store) (core.VerdictCache, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(f.logger.Named("cache"), cacheCfg.CleanupFrequency), nil
	case "store":
		return cache.NewStoreCache(store, f.logger.Named("cache")), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
