package factory

import (
	"fmt"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/openai"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIFactory creates OpenAI chat models
type OpenAIFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewOpenAIFactory creates a new OpenAI factory
func NewOpenAIFactory(cfg *config.Config, logger *zap.Logger) *OpenAIFactory {
	return &OpenAIFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateChatModel creates an OpenAI chat model
func (f *OpenAIFactory) CreateChatModel() (ports.ChatModel, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg := goopenai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}

	return openai.NewOpenAIClient(
		goopenai.NewClientWithConfig(clientCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		f.logger.Named("openai"),
	), nil
}
