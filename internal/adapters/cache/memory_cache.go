package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

type entry struct {
	verdict   core.PriorityVerdict
	expiresAt time.Time
}

// MemoryCache is an in-memory implementation of the VerdictCache interface
type MemoryCache struct {
	entries     map[string]entry
	mu          sync.RWMutex
	logger      *zap.Logger
	cleanupFreq time.Duration
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(logger *zap.Logger, cleanupFreq time.Duration) *MemoryCache {
	cache := &MemoryCache{
		entries:     make(map[string]entry),
		logger:      logger,
		cleanupFreq: cleanupFreq,
		stopCh:      make(chan struct{}),
	}

	// Start background cleanup
	if cleanupFreq > 0 {
		go cache.startCleanupTask()
	}

	return cache
}

// Get retrieves the cached verdict for a preview
func (c *MemoryCache) Get(ctx context.Context, preview string) (*core.PriorityVerdict, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[preview]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, core.ErrNotFound
	}

	verdict := e.verdict
	return &verdict, nil
}

// Set stores a verdict for ttl
func (c *MemoryCache) Set(ctx context.Context, preview string, verdict *core.PriorityVerdict, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[preview] = entry{
		verdict:   *verdict,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Cleanup removes expired entries
func (c *MemoryCache) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expiredCount := 0

	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			expiredCount++
		}
	}

	c.logger.Debug("Cleaned up expired cache entries", zap.Int("expired_count", expiredCount))
	return nil
}

// startCleanupTask starts a background task to clean up expired entries
func (c *MemoryCache) startCleanupTask() {
	ticker := time.NewTicker(c.cleanupFreq)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.Cleanup(context.Background()); err != nil {
				c.logger.Error("Failed to clean up cache", zap.Error(err))
			}
		case <-c.stopCh:
			return
		}
	}
}

// Stop stops the background cleanup task
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
}
