package core

import (
	"regexp"

	"github.com/mikey/llm-inbox-prioritizer/internal/contacts"
	"go.uber.org/zap"
)

var defaultHighPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)urgent`),
	regexp.MustCompile(`(?i)asap`),
	regexp.MustCompile(`(?i)immediate`),
	regexp.MustCompile(`(?i)opportunity`),
	regexp.MustCompile(`(?i)job offer`),
	regexp.MustCompile(`(?i)interview`),
	regexp.MustCompile(`(?i)deadline`),
	regexp.MustCompile(`(?i)important`),
	regexp.MustCompile(`(?i)crucial`),
	regexp.MustCompile(`(?i)CEO|CTO|CFO|COO`),
}

var defaultSpamPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)free\s+offer`),
	regexp.MustCompile(`(?i)click\s+here`),
	regexp.MustCompile(`(?i)buy\s+now`),
	regexp.MustCompile(`(?i)limited\s+time`),
	regexp.MustCompile(`(?i)sponsored`),
	regexp.MustCompile(`(?i)promo(?:tion)?`),
	regexp.MustCompile(`(?i)discount`),
	regexp.MustCompile(`(?i)winner`),
	regexp.MustCompile(`(?i)congratulations`),
	regexp.MustCompile(`(?i)subscribe`),
}

var recentTimestamp = regexp.MustCompile(`(?i)just now|minute|hour|today`)

// Classifier applies keyword and regex rules to message previews.
// It is built from a preferences snapshot and never mutated afterwards.
type Classifier struct {
	contacts     *contacts.Checker
	highPatterns []*regexp.Regexp
	logger       *zap.Logger
}

// NewClassifier creates a rule classifier for the given preferences
func NewClassifier(prefs UserPreferences, logger *zap.Logger) *Classifier {
	patterns := make([]*regexp.Regexp, 0, len(defaultHighPatterns)+len(prefs.PriorityTags))
	patterns = append(patterns, defaultHighPatterns...)
	for _, tag := range prefs.PriorityTags {
		if tag == "" {
			continue
		}
		patterns = append(patterns, regexp.MustCompile("(?i)"+regexp.QuoteMeta(tag)))
	}

	return &Classifier{
		contacts:     contacts.NewChecker(prefs.ImportantContacts, logger),
		highPatterns: patterns,
		logger:       logger,
	}
}

// IsHighPriority checks contacts, preview patterns and timestamp recency
func (c *Classifier) IsHighPriority(m Message) bool {
	if c.contacts.IsImportant(m.Sender) {
		return true
	}

	for _, pattern := range c.highPatterns {
		if pattern.MatchString(m.Preview) {
			return true
		}
	}

	return isRecent(m.Timestamp)
}

// IsSpam checks the preview against the built-in spam patterns
func IsSpam(preview string) bool {
	for _, pattern := range defaultSpamPatterns {
		if pattern.MatchString(preview) {
			return true
		}
	}
	return false
}

func isRecent(timestamp string) bool {
	return timestamp != "" && recentTimestamp.MatchString(timestamp)
}

// Classify labels a copy of messages with the rule set
func (c *Classifier) Classify(messages []Message) []Message {
	labeled := make([]Message, len(messages))
	for i, m := range messages {
		m.HighPriority = c.IsHighPriority(m)
		labeled[i] = ApplyLabel(m)
	}

	c.logger.Debug("Rule classification finished", zap.Int("messages", len(labeled)))
	return labeled
}

// ApplyLabel derives the label from the high-priority flag and the spam rules.
// Spam takes the label; HighPriority is left as metadata.
func ApplyLabel(m Message) Message {
	switch {
	case IsSpam(m.Preview):
		m.Label = LabelSpam
	case m.HighPriority:
		m.Label = LabelHigh
	default:
		m.Label = LabelDefault
	}
	return m
}

// Group splits labeled messages into the high and spam groups
func Group(messages []Message) ClassifiedGroups {
	groups := ClassifiedGroups{
		High: []Message{},
		Spam: []Message{},
	}
	for _, m := range messages {
		switch m.Label {
		case LabelHigh:
			groups.High = append(groups.High, m)
		case LabelSpam:
			groups.Spam = append(groups.Spam, m)
		}
	}
	return groups
}
