package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/storage"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap/zaptest"
)

func TestCaches(t *testing.T) {
	logger := zaptest.NewLogger(t)
	mem := NewMemoryCache(logger, 0)
	defer mem.Stop()

	caches := map[string]core.VerdictCache{
		"memory": mem,
		"store":  NewStoreCache(storage.NewMemoryStore(), logger),
	}

	for name, c := range caches {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := c.Get(ctx, "job offer"); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			v := &core.PriorityVerdict{IsHighPriority: true, Keywords: []string{"job"}}
			if err := c.Set(ctx, "job offer", v, time.Hour); err != nil {
				t.Fatalf("Set: %v", err)
			}
			got, err := c.Get(ctx, "job offer")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !got.IsHighPriority || got.Keywords[0] != "job" {
				t.Fatalf("unexpected verdict %+v", got)
			}

			if err := c.Set(ctx, "stale", v, -time.Second); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if _, err := c.Get(ctx, "stale"); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expired verdict served: %v", err)
			}
			if err := c.Cleanup(ctx); err != nil {
				t.Fatalf("Cleanup: %v", err)
			}
			if _, err := c.Get(ctx, "job offer"); err != nil {
				t.Fatalf("cleanup removed a live entry: %v", err)
			}
		})
	}
}

func TestStoreCacheCleanupDeletesKeys(t *testing.T) {
	store := storage.NewMemoryStore()
	c := NewStoreCache(store, zaptest.NewLogger(t))
	ctx := context.Background()

	_ = c.Set(ctx, "old", &core.PriorityVerdict{}, -time.Minute)
	if err := c.Cleanup(ctx); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := store.Get(ctx, keyPrefix+"old"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expired key still in store: %v", err)
	}
}
