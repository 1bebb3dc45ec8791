package view

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// ErrContainerMissing is returned while the list has not been rendered yet
var ErrContainerMissing = errors.New("conversation list not rendered")

// StaticSource serves a fixed set of items
type StaticSource struct {
	Messages []core.Message
}

// Scan returns a copy of the configured items
func (s *StaticSource) Scan(context.Context) ([]core.Message, error) {
	out := make([]core.Message, len(s.Messages))
	copy(out, s.Messages)
	return out, nil
}

// StoreSource renders the last scanned message list from the store
type StoreSource struct {
	Store core.Store
}

// Scan loads the persisted messages. A missing key means the list was
// never rendered.
func (s *StoreSource) Scan(ctx context.Context) ([]core.Message, error) {
	var messages []core.Message
	if err := core.LoadJSON(ctx, s.Store, core.KeyMessages, &messages); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrContainerMissing
		}
		return nil, err
	}
	return messages, nil
}

// WaitForList polls source until the list is rendered, then builds and loads
// the list. Only ErrContainerMissing is retried.
func WaitForList(ctx context.Context, source Source, interval time.Duration, logger *zap.Logger) (*List, error) {
	list := NewList(source, logger)
	for attempt := 1; ; attempt++ {
		err := list.Reload(ctx)
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, ErrContainerMissing) {
			return nil, err
		}

		logger.Debug("Conversation list not rendered yet, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("interval", interval))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for conversation list: %w", ctx.Err())
		case <-time.After(interval):
		}
	}
}
