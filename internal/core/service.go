package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrAnalysisInProgress is returned when a pass is requested while another runs
var ErrAnalysisInProgress = errors.New("classification pass already in progress")

// DefaultAIKeywords is the keyword list sent with every remote check
var DefaultAIKeywords = []string{"offer", "job", "urgent", "important"}

// ServiceOptions tunes the remote classification mode
type ServiceOptions struct {
	AIKeywords   []string
	AIDelay      time.Duration
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ClassificationService runs classification passes and persists the results
type ClassificationService struct {
	store   Store
	remote  PriorityClient
	cache   VerdictCache
	logger  *zap.Logger
	opts    ServiceOptions
	running atomic.Bool
	now     func() time.Time
}

// NewClassificationService creates a new classification service
func NewClassificationService(
	store Store,
	remote PriorityClient,
	cache VerdictCache,
	logger *zap.Logger,
	opts ServiceOptions,
) *ClassificationService {
	if len(opts.AIKeywords) == 0 {
		opts.AIKeywords = DefaultAIKeywords
	}
	return &ClassificationService{
		store:  store,
		remote: remote,
		cache:  cache,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// AnalyzeMessages labels messages and persists the labeled list and groups
func (s *ClassificationService) AnalyzeMessages(
	ctx context.Context,
	messages []Message,
	method Method,
	prefs UserPreferences,
) (ClassifiedGroups, error) {
	if !s.running.CompareAndSwap(false, true) {
		return ClassifiedGroups{}, ErrAnalysisInProgress
	}
	defer s.running.Store(false)

	s.logger.Info("Analyzing messages",
		zap.Int("count", len(messages)),
		zap.String("method", string(method)))

	var labeled []Message
	switch method {
	case MethodAI:
		if s.remote == nil {
			return ClassifiedGroups{}, fmt.Errorf("remote classification is not configured")
		}
		labeled = s.classifyRemote(ctx, messages)
	case MethodRule, "":
		labeled = NewClassifier(prefs, s.logger).Classify(messages)
	default:
		return ClassifiedGroups{}, fmt.Errorf("unsupported classification method: %s", method)
	}

	analyzedAt := s.now()
	for i := range labeled {
		labeled[i].AnalyzedAt = analyzedAt
	}

	groups := Group(labeled)
	if err := SaveJSON(ctx, s.store, KeyMessages, labeled); err != nil {
		return ClassifiedGroups{}, err
	}
	if err := SaveJSON(ctx, s.store, KeyClassifiedGroups, groups); err != nil {
		return ClassifiedGroups{}, err
	}

	s.logger.Info("Classification saved",
		zap.Int("high", len(groups.High)),
		zap.Int("spam", len(groups.Spam)))

	return groups, nil
}

// classifyRemote issues one remote check per message, pausing between calls.
// Failed checks leave the message unlabeled.
func (s *ClassificationService) classifyRemote(ctx context.Context, messages []Message) []Message {
	labeled := make([]Message, 0, len(messages))
	for i, m := range messages {
		verdict, called, err := s.verdictFor(ctx, m.Preview)
		if err != nil {
			s.logger.Error("Remote classification failed",
				zap.String("identity", m.Identity),
				zap.Error(err))
			m.HighPriority = false
			m.Keywords = nil
		} else {
			m.HighPriority = verdict.IsHighPriority
			m.Keywords = verdict.Keywords
		}
		labeled = append(labeled, ApplyLabel(m))

		if called && i < len(messages)-1 && s.opts.AIDelay > 0 {
			select {
			case <-ctx.Done():
				s.logger.Warn("Remote classification interrupted", zap.Error(ctx.Err()))
				return append(labeled, unlabeled(messages[i+1:])...)
			case <-time.After(s.opts.AIDelay):
			}
		}
	}
	return labeled
}

// verdictFor consults the cache before calling the remote service.
// called reports whether a remote call was issued.
func (s *ClassificationService) verdictFor(ctx context.Context, preview string) (*PriorityVerdict, bool, error) {
	if s.opts.CacheEnabled && s.cache != nil {
		if verdict, err := s.cache.Get(ctx, preview); err == nil {
			s.logger.Debug("Cache hit for preview", zap.String("preview", preview))
			return verdict, false, nil
		}
	}

	verdict, err := s.remote.CheckHighPriority(ctx, s.opts.AIKeywords, preview)
	if err != nil {
		return nil, true, err
	}
	verdict.CheckedAt = s.now()

	if s.opts.CacheEnabled && s.cache != nil {
		if err := s.cache.Set(ctx, preview, verdict, s.opts.CacheTTL); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}
	return verdict, true, nil
}

func unlabeled(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		m.HighPriority = false
		out[i] = ApplyLabel(m)
	}
	return out
}

// LoadGroups reads the persisted classification groups; absent means empty
func LoadGroups(ctx context.Context, store Store) (ClassifiedGroups, error) {
	var groups ClassifiedGroups
	if err := LoadJSON(ctx, store, KeyClassifiedGroups, &groups); err != nil && !errors.Is(err, ErrNotFound) {
		return ClassifiedGroups{}, err
	}
	return groups, nil
}

// LoadMessages reads the persisted labeled message list; absent means empty
func LoadMessages(ctx context.Context, store Store) ([]Message, error) {
	var messages []Message
	if err := LoadJSON(ctx, store, KeyMessages, &messages); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return messages, nil
}

// SaveJSON encodes v and stores it under key
func SaveJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// LoadJSON decodes the document stored under key into v
func LoadJSON(ctx context.Context, store Store, key string, v any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}
