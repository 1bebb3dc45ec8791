package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/factory"
	"github.com/mikey/llm-inbox-prioritizer/internal/logging"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"github.com/mikey/llm-inbox-prioritizer/internal/relay"
	"github.com/mikey/llm-inbox-prioritizer/internal/utils"
)

// BuildContainer creates and configures the dependency injection container
// of the relay server
func BuildContainer(configPath string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.New(configPath)
	}); err != nil {
		return nil, err
	}

	// Register logger and its adjustable level
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}

	// Register upstream chat model
	if err := container.Provide(func(f *factory.LLMFactory) (ports.ChatModel, error) {
		return f.CreateChatModel(context.Background())
	}); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(logger *zap.Logger) *utils.TextProcessor {
		return utils.NewTextProcessor(logger.Named("text"))
	}); err != nil {
		return nil, err
	}

	// Register relay server
	if err := container.Provide(func(
		cfg *config.Config,
		model ports.ChatModel,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
	) (ports.Server, error) {
		relayCfg, err := cfg.GetRelay()
		if err != nil {
			return nil, err
		}
		return relay.NewServer(model, textProcessor, logger.Named("relay"), relay.Options{
			ListenAddress:   relayCfg.ListenAddress,
			ReadTimeout:     relayCfg.ReadTimeout,
			WriteTimeout:    relayCfg.WriteTimeout,
			UpstreamTimeout: relayCfg.UpstreamTimeout,
			MaxPreviewSize:  relayCfg.MaxPreviewSize,
		}), nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}
