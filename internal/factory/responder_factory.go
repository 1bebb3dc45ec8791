package factory

import (
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/notify"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/view"
	"go.uber.org/zap"
)

// ResponderFactory creates the delivery path of automated responses
type ResponderFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewResponderFactory creates a new responder factory
func NewResponderFactory(cfg *config.Config, logger *zap.Logger) *ResponderFactory {
	return &ResponderFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateResponder creates the responder selected by automation.responder
func (f *ResponderFactory) CreateResponder(list *view.List) (core.Responder, error) {
	automationCfg := f.cfg.GetAutomation()

	switch automationCfg.Responder {
	case "view":
		return view.NewResponder(list, f.logger.Named("responder")), nil
	case "smtp":
		return notify.NewSMTPResponder(notify.SMTPOptions{
			Address:  automationCfg.SMTP.Address,
			Username: automationCfg.SMTP.Username,
			Password: automationCfg.SMTP.Password,
			From:     automationCfg.SMTP.From,
			To:       automationCfg.SMTP.To,
		}, f.logger.Named("smtp")), nil
	default:
		return nil, fmt.Errorf("unsupported responder: %s", automationCfg.Responder)
	}
}
