// Package preferences keeps the in-memory mirror of the user preferences
// record. The store stays the durable source of truth; every mutation
// rewrites the whole record.
package preferences

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// Manager owns the preferences mirror
type Manager struct {
	store  core.Store
	logger *zap.Logger
	mu     sync.RWMutex
	prefs  core.UserPreferences
}

// Load reads the preferences once from store. A missing record yields defaults.
func Load(ctx context.Context, store core.Store, logger *zap.Logger) (*Manager, error) {
	m := &Manager{store: store, logger: logger}

	var prefs core.UserPreferences
	err := core.LoadJSON(ctx, store, core.KeyUserPreferences, &prefs)
	switch {
	case errors.Is(err, core.ErrNotFound):
		logger.Debug("No stored preferences, using defaults")
	case err != nil:
		return nil, err
	default:
		logger.Debug("Loaded user preferences",
			zap.Int("contacts", len(prefs.ImportantContacts)),
			zap.Int("tags", len(prefs.PriorityTags)))
	}
	m.prefs = normalize(prefs)
	return m, nil
}

// Snapshot returns a deep copy of the current preferences
func (m *Manager) Snapshot() core.UserPreferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.prefs)
}

// AddImportantContact adds contact; it reports false if already present
func (m *Manager) AddImportantContact(ctx context.Context, contact string) (bool, error) {
	return m.update(ctx, func(p *core.UserPreferences) bool {
		contact = strings.TrimSpace(contact)
		if contact == "" || slices.Contains(p.ImportantContacts, contact) {
			return false
		}
		p.ImportantContacts = append(p.ImportantContacts, contact)
		return true
	})
}

// RemoveImportantContact removes contact; it reports false if absent
func (m *Manager) RemoveImportantContact(ctx context.Context, contact string) (bool, error) {
	return m.update(ctx, func(p *core.UserPreferences) bool {
		i := slices.Index(p.ImportantContacts, strings.TrimSpace(contact))
		if i < 0 {
			return false
		}
		p.ImportantContacts = slices.Delete(p.ImportantContacts, i, i+1)
		return true
	})
}

// AddPriorityTag appends tag; it reports false if already present
func (m *Manager) AddPriorityTag(ctx context.Context, tag string) (bool, error) {
	return m.update(ctx, func(p *core.UserPreferences) bool {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(p.PriorityTags, tag) {
			return false
		}
		p.PriorityTags = append(p.PriorityTags, tag)
		return true
	})
}

// RemovePriorityTag removes tag; it reports false if absent
func (m *Manager) RemovePriorityTag(ctx context.Context, tag string) (bool, error) {
	return m.update(ctx, func(p *core.UserPreferences) bool {
		i := slices.Index(p.PriorityTags, strings.TrimSpace(tag))
		if i < 0 {
			return false
		}
		p.PriorityTags = slices.Delete(p.PriorityTags, i, i+1)
		return true
	})
}

// SetAutomation replaces the automation settings
func (m *Manager) SetAutomation(ctx context.Context, settings core.AutomationSettings) error {
	_, err := m.update(ctx, func(p *core.UserPreferences) bool {
		if p.Automation == settings {
			return false
		}
		p.Automation = settings
		return true
	})
	return err
}

// update applies fn to a copy and persists it when fn reports a change.
// The mirror only changes once the store accepted the record.
func (m *Manager) update(ctx context.Context, fn func(*core.UserPreferences) bool) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := clone(m.prefs)
	if !fn(&next) {
		return false, nil
	}
	if err := core.SaveJSON(ctx, m.store, core.KeyUserPreferences, next); err != nil {
		return false, err
	}
	m.prefs = next
	m.logger.Info("User preferences saved",
		zap.Int("contacts", len(next.ImportantContacts)),
		zap.Int("tags", len(next.PriorityTags)),
		zap.Bool("automation", next.Automation.Enabled))
	return true, nil
}

func normalize(p core.UserPreferences) core.UserPreferences {
	if p.ImportantContacts == nil {
		p.ImportantContacts = []string{}
	}
	if p.PriorityTags == nil {
		p.PriorityTags = []string{}
	}
	return p
}

func clone(p core.UserPreferences) core.UserPreferences {
	p.ImportantContacts = slices.Clone(p.ImportantContacts)
	p.PriorityTags = slices.Clone(p.PriorityTags)
	return normalize(p)
}
