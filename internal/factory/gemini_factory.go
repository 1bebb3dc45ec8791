package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/gemini"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"go.uber.org/zap"
)

// GeminiFactory creates Gemini chat models
type GeminiFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewGeminiFactory creates a new Gemini factory
func NewGeminiFactory(cfg *config.Config, logger *zap.Logger) *GeminiFactory {
	return &GeminiFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateChatModel creates a Gemini chat model
func (f *GeminiFactory) CreateChatModel(ctx context.Context) (ports.ChatModel, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := gemini.NewGeminiClient(
		ctx,
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		f.logger.Named("gemini"),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}
