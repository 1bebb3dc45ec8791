package core

import (
	"time"
)

// Label is the priority label attached to a message preview
type Label string

const (
	// LabelDefault marks a message that matched no rule
	LabelDefault Label = ""
	// LabelHigh marks a message that warrants elevated ordering
	LabelHigh Label = "high"
	// LabelSpam marks a message that should be hidden from the default view
	LabelSpam Label = "spam"
)

// Method selects how a classification pass labels messages
type Method string

const (
	MethodRule Method = "rule"
	MethodAI   Method = "ai"
)

// Storage keys shared between the classifier, the session and the CLI
const (
	KeyMessages         = "messages"
	KeyClassifiedGroups = "classifiedGroups"
	KeyUserPreferences  = "userPreferences"
)

// identityPreviewRunes is how much of the preview goes into an identity
const identityPreviewRunes = 20

// Message is one conversation preview scanned from the live list
type Message struct {
	Identity     string    `json:"identity"`
	Sender       string    `json:"sender"`
	Preview      string    `json:"preview"`
	Timestamp    string    `json:"timestamp"`
	Link         string    `json:"link"`
	Label        Label     `json:"priority,omitempty"`
	HighPriority bool      `json:"highPriority,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
	Responded    bool      `json:"responded,omitempty"`
	AnalyzedAt   time.Time `json:"analyzedAt,omitzero"`
}

// NewMessage builds a message and derives its identity
func NewMessage(sender, preview, timestamp, link string) Message {
	return Message{
		Identity:  Identity(sender, preview),
		Sender:    sender,
		Preview:   preview,
		Timestamp: timestamp,
		Link:      link,
	}
}

// Identity derives the key used to correlate an item across scans
func Identity(sender, preview string) string {
	runes := []rune(preview)
	if len(runes) > identityPreviewRunes {
		runes = runes[:identityPreviewRunes]
	}
	return sender + "-" + string(runes)
}

// ClassifiedGroups groups the labeled messages of one classification pass
type ClassifiedGroups struct {
	High []Message `json:"high"`
	Spam []Message `json:"spam"`
}

// HighPreviews returns the set of high-priority preview texts
func (g ClassifiedGroups) HighPreviews() map[string]bool {
	return previewSet(g.High)
}

// SpamPreviews returns the set of spam preview texts
func (g ClassifiedGroups) SpamPreviews() map[string]bool {
	return previewSet(g.Spam)
}

func previewSet(messages []Message) map[string]bool {
	set := make(map[string]bool, len(messages))
	for _, m := range messages {
		set[m.Preview] = true
	}
	return set
}

// AutomationSettings holds the automated response configuration
type AutomationSettings struct {
	Enabled  bool   `json:"enabled"`
	Template string `json:"template"`
}

// UserPreferences is persisted as one aggregate record
type UserPreferences struct {
	ImportantContacts []string           `json:"importantContacts"`
	PriorityTags      []string           `json:"priorityTags"`
	Automation        AutomationSettings `json:"automation"`
}

// PriorityVerdict is the answer of a remote high-priority check
type PriorityVerdict struct {
	IsHighPriority bool      `json:"isHighPriority"`
	Keywords       []string  `json:"keywords"`
	CheckedAt      time.Time `json:"checkedAt,omitempty"`
}
