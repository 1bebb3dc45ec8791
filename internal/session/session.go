// Package session holds the per-page state: sort and spam-filter toggles,
// the original-order snapshot and the live list they act on.
package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/ordering"
	"github.com/mikey/llm-inbox-prioritizer/internal/view"
	"go.uber.org/zap"
)

// State is the observable state of a session
type State struct {
	IsSorted       bool
	IsSpamFiltered bool
	MessageCount   int
}

// Session is created per page view and passed explicitly to handlers
type Session struct {
	id           string
	list         *view.List
	store        core.Store
	tracker      *ordering.Tracker
	logger       *zap.Logger
	mu           sync.Mutex
	sorted       bool
	spamFiltered bool
	onChange     func(State)
	observed     atomic.Int64
	applying     atomic.Bool
}

// New creates a session over list. Classification groups are read from store.
func New(list *view.List, store core.Store, logger *zap.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		id:      id,
		list:    list,
		store:   store,
		tracker: ordering.NewTracker(),
		logger:  logger.With(zap.String("session", id)),
	}
	list.Observe(s.handleMutation)
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// List returns the live list of the session
func (s *Session) List() *view.List {
	return s.list
}

// OnChange registers a callback invoked with the new state after each toggle
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	return State{
		IsSorted:       s.sorted,
		IsSpamFiltered: s.spamFiltered,
		MessageCount:   s.list.Len(),
	}
}

// ToggleSort sorts high-priority items first and suspends observation, or
// restores the original order and resumes observation.
func (s *Session) ToggleSort(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.apply()()

	if s.sorted {
		if err := s.restoreLocked(); err != nil {
			return s.stateLocked(), err
		}
		s.list.Resume()
	} else {
		s.tracker.Record(s.list.Items())
		s.list.Suspend()
		if err := s.sortLocked(ctx); err != nil {
			s.list.Resume()
			return s.stateLocked(), err
		}
		s.sorted = true
	}

	s.logger.Info("Sort toggled", zap.Bool("sorted", s.sorted))
	return s.notifyLocked(), nil
}

// ToggleSpam hides spam items, or restores the original order and reloads
// the list from its source.
func (s *Session) ToggleSpam(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.apply()()

	if s.spamFiltered {
		if err := s.restoreLocked(); err != nil {
			return s.stateLocked(), err
		}
		if err := s.list.Reload(ctx); err != nil {
			return s.stateLocked(), err
		}
		s.tracker.Clear()
		s.list.Resume()
		s.spamFiltered = false
	} else {
		groups, err := core.LoadGroups(ctx, s.store)
		if err != nil {
			return s.stateLocked(), err
		}
		spam := groups.SpamPreviews()
		hidden := s.list.SetVisibility(func(m core.Message) bool { return spam[m.Preview] })
		s.logger.Info("Spam filter applied", zap.Int("hidden", hidden))
		s.spamFiltered = true
	}

	s.logger.Info("Spam filter toggled", zap.Bool("spam_filtered", s.spamFiltered))
	return s.notifyLocked(), nil
}

// ApplyIncrementalSort re-sorts the list after new items arrived. It keeps
// the snapshot taken by the initial sort and does nothing when unsorted.
func (s *Session) ApplyIncrementalSort(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sorted {
		return nil
	}
	defer s.apply()()
	return s.sortLocked(ctx)
}

// Refresh rescans the source into the list and re-applies the active sort
func (s *Session) Refresh(ctx context.Context) (State, error) {
	added, err := s.list.Sync(ctx)
	if err != nil {
		return s.State(), err
	}
	s.logger.Debug("List refreshed", zap.Int("added", added))

	if err := s.ApplyIncrementalSort(ctx); err != nil {
		return s.State(), err
	}
	if err := s.Highlight(ctx); err != nil {
		return s.State(), err
	}
	return s.State(), nil
}

// Highlight marks high-priority items from the persisted groups
func (s *Session) Highlight(ctx context.Context) error {
	groups, err := core.LoadGroups(ctx, s.store)
	if err != nil {
		return err
	}
	s.list.Highlight(groups.HighPreviews())
	return nil
}

func (s *Session) sortLocked(ctx context.Context) error {
	groups, err := core.LoadGroups(ctx, s.store)
	if err != nil {
		return err
	}
	items := s.list.Items()
	moves, err := s.list.Arrange(ordering.PriorityIndices(items, groups.HighPreviews()))
	if err != nil {
		return fmt.Errorf("failed to apply priority order: %w", err)
	}
	s.logger.Debug("Priority order applied", zap.Int("moves", moves))
	return nil
}

func (s *Session) restoreLocked() error {
	items := s.list.Items()
	moves, err := s.list.Arrange(ordering.RestoreIndices(items, s.tracker))
	if err != nil {
		return fmt.Errorf("failed to restore original order: %w", err)
	}
	s.list.ClearOverrides()
	s.sorted = false
	s.logger.Debug("Original order restored", zap.Int("moves", moves))
	return nil
}

func (s *Session) notifyLocked() State {
	state := s.stateLocked()
	if s.onChange != nil {
		s.onChange(state)
	}
	return state
}

// apply marks the list changes made by the session itself until the
// returned func is called. Callers hold s.mu.
func (s *Session) apply() func() {
	s.applying.Store(true)
	return func() { s.applying.Store(false) }
}

// ObservedMutations returns how many host-page list changes the session handled
func (s *Session) ObservedMutations() int64 {
	return s.observed.Load()
}

// handleMutation reacts to items added, removed or reloaded by the host
// page: highlights are re-applied and the new state is published.
// Changes the session makes itself are ignored.
func (s *Session) handleMutation(m view.Mutation) {
	if s.applying.Load() {
		return
	}
	switch m.Kind {
	case view.MutationInsert, view.MutationRemove, view.MutationReload:
	default:
		return
	}
	s.observed.Add(1)
	s.logger.Debug("List mutation observed",
		zap.Int("kind", int(m.Kind)),
		zap.String("identity", m.Identity))

	if err := s.Highlight(context.Background()); err != nil {
		s.logger.Warn("Failed to re-apply highlights", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifyLocked()
}
