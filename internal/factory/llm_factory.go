package factory

import (
	"context"
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"go.uber.org/zap"
)

// LLMFactory creates the upstream chat model of the relay
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateChatModel creates a chat model based on relay.provider
func (f *LLMFactory) CreateChatModel(ctx context.Context) (ports.ChatModel, error) {
	provider := f.cfg.GetString("relay.provider")
	f.logger.Debug("Creating chat model", zap.String("provider", provider))

	switch provider {
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger).CreateChatModel(ctx)
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger).CreateChatModel()
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger).CreateChatModel(ctx)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
