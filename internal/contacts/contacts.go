package contacts

import (
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Checker matches message senders against the important-contact list
type Checker struct {
	contacts []string
	fold     cases.Caser
	logger   *zap.Logger
}

// NewChecker creates a new important-contact checker
func NewChecker(contacts []string, logger *zap.Logger) *Checker {
	fold := cases.Fold()

	// Normalize contacts (case folded, blanks dropped)
	normalized := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		contact = strings.TrimSpace(contact)
		if contact == "" {
			continue
		}
		normalized = append(normalized, fold.String(contact))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Debug("Initialized contact checker", zap.Int("contacts", len(normalized)))
	}

	return &Checker{
		contacts: normalized,
		fold:     fold,
		logger:   logger,
	}
}

// IsImportant reports whether sender contains any important contact
func (c *Checker) IsImportant(sender string) bool {
	if len(c.contacts) == 0 {
		return false
	}

	folded := c.fold.String(sender)
	for _, contact := range c.contacts {
		if strings.Contains(folded, contact) {
			if c.logger != nil {
				c.logger.Debug("Sender is an important contact",
					zap.String("sender", sender),
					zap.String("contact", contact))
			}
			return true
		}
	}

	return false
}

// Len returns the number of contacts checked
func (c *Checker) Len() int {
	return len(c.contacts)
}
