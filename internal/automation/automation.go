// Package automation sends templated replies to high-priority conversations
package automation

import (
	"context"
	"strings"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"
)

// Settings provides the current user preferences
type Settings interface {
	Snapshot() core.UserPreferences
}

// Summary reports the outcome of a batch run
type Summary struct {
	Processed int
	Succeeded int
}

// Processor delivers automated responses through a responder
type Processor struct {
	store     core.Store
	settings  Settings
	responder core.Responder
	logger    *zap.Logger
	now       func() time.Time
}

// NewProcessor creates a new automation processor
func NewProcessor(store core.Store, settings Settings, responder core.Responder, logger *zap.Logger) *Processor {
	return &Processor{
		store:     store,
		settings:  settings,
		responder: responder,
		logger:    logger,
		now:       time.Now,
	}
}

// Personalize fills the template placeholders for msg
func Personalize(template string, msg core.Message, now time.Time) string {
	first := msg.Sender
	if i := strings.Index(first, " "); i >= 0 {
		first = first[:i]
	}
	r := strings.NewReplacer(
		"{sender}", first,
		"{fullname}", msg.Sender,
		"{date}", now.Format(dateLayout),
		"{time}", now.Format(timeLayout),
	)
	return r.Replace(template)
}

// Send delivers text to the conversation at link and marks it responded
func (p *Processor) Send(ctx context.Context, link, text string) error {
	if err := p.responder.SendResponse(ctx, link, text); err != nil {
		return err
	}

	messages, err := core.LoadMessages(ctx, p.store)
	if err != nil {
		return err
	}
	changed := false
	for i := range messages {
		if messages[i].Link == link && !messages[i].Responded {
			messages[i].Responded = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return core.SaveJSON(ctx, p.store, core.KeyMessages, messages)
}

// ProcessUnresponded replies to every high-priority message not yet
// responded to. Successful deliveries are persisted as responded.
func (p *Processor) ProcessUnresponded(ctx context.Context) (Summary, error) {
	auto := p.settings.Snapshot().Automation
	if !auto.Enabled || auto.Template == "" {
		p.logger.Debug("Automation disabled, nothing to process")
		return Summary{}, nil
	}

	messages, err := core.LoadMessages(ctx, p.store)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	now := p.now()
	for i := range messages {
		m := &messages[i]
		if m.Label != core.LabelHigh || m.Responded {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}
		summary.Processed++

		text := Personalize(auto.Template, *m, now)
		if err := p.responder.SendResponse(ctx, m.Link, text); err != nil {
			p.logger.Warn("Failed to send automated response",
				zap.String("identity", m.Identity),
				zap.Error(err))
			continue
		}
		m.Responded = true
		summary.Succeeded++
	}

	if summary.Succeeded > 0 {
		if err := core.SaveJSON(ctx, p.store, core.KeyMessages, messages); err != nil {
			return summary, err
		}
	}

	p.logger.Info("Processed unresponded messages",
		zap.Int("processed", summary.Processed),
		zap.Int("succeeded", summary.Succeeded))
	return summary, nil
}
