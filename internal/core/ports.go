package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores and caches when a key is absent
var ErrNotFound = errors.New("not found")

// Store is a flat key-value store holding JSON documents
type Store interface {
	// Get returns the raw document stored under key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the document stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the document stored under key
	Delete(ctx context.Context, key string) error
}

// PriorityClient asks a remote service whether a preview is high priority
type PriorityClient interface {
	CheckHighPriority(ctx context.Context, keywords []string, preview string) (*PriorityVerdict, error)
}

// VerdictCache caches remote verdicts by preview text
type VerdictCache interface {
	// Get retrieves a cached verdict or ErrNotFound
	Get(ctx context.Context, preview string) (*PriorityVerdict, error)

	// Set stores a verdict for ttl
	Set(ctx context.Context, preview string, verdict *PriorityVerdict, ttl time.Duration) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// Responder delivers an automated response for the conversation at link
type Responder interface {
	SendResponse(ctx context.Context, link, text string) error
}
