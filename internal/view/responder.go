package view

import (
	"context"

	"go.uber.org/zap"
)

// Responder types automated responses into conversations of the live list
type Responder struct {
	list   *List
	logger *zap.Logger
}

// NewResponder creates a responder bound to list
func NewResponder(list *List, logger *zap.Logger) *Responder {
	return &Responder{list: list, logger: logger}
}

// SendResponse implements core.Responder
func (r *Responder) SendResponse(_ context.Context, link, text string) error {
	if err := r.list.Reply(link, text); err != nil {
		return err
	}
	r.logger.Info("Automated response sent", zap.String("link", link))
	return nil
}
