package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// keyPrefix namespaces cached verdicts inside the shared store
const keyPrefix = "verdict:"

type storedVerdict struct {
	Verdict   core.PriorityVerdict `json:"verdict"`
	ExpiresAt time.Time            `json:"expiresAt"`
}

// StoreCache keeps verdicts in the key-value store so they survive restarts
type StoreCache struct {
	store  core.Store
	logger *zap.Logger
	mu     sync.Mutex
	keys   map[string]struct{}
}

// NewStoreCache creates a cache backed by store
func NewStoreCache(store core.Store, logger *zap.Logger) *StoreCache {
	return &StoreCache{
		store:  store,
		logger: logger,
		keys:   make(map[string]struct{}),
	}
}

// Get retrieves the cached verdict for a preview
func (c *StoreCache) Get(ctx context.Context, preview string) (*core.PriorityVerdict, error) {
	var sv storedVerdict
	if err := core.LoadJSON(ctx, c.store, keyPrefix+preview, &sv); err != nil {
		return nil, err
	}
	if time.Now().After(sv.ExpiresAt) {
		return nil, core.ErrNotFound
	}
	return &sv.Verdict, nil
}

// Set stores a verdict for ttl
func (c *StoreCache) Set(ctx context.Context, preview string, verdict *core.PriorityVerdict, ttl time.Duration) error {
	c.mu.Lock()
	c.keys[keyPrefix+preview] = struct{}{}
	c.mu.Unlock()
	return core.SaveJSON(ctx, c.store, keyPrefix+preview, storedVerdict{
		Verdict:   *verdict,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Cleanup removes the expired verdicts written through this cache
func (c *StoreCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiredCount := 0
	for key := range c.keys {
		var sv storedVerdict
		err := core.LoadJSON(ctx, c.store, key, &sv)
		if errors.Is(err, core.ErrNotFound) {
			delete(c.keys, key)
			continue
		}
		if err != nil {
			return err
		}
		if time.Now().After(sv.ExpiresAt) {
			if err := c.store.Delete(ctx, key); err != nil {
				return err
			}
			delete(c.keys, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}
