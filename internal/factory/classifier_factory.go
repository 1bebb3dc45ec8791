package factory

import (
	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/relayclient"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// ClassifierFactory wires the classification service
type ClassifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateService creates a classification service talking to the relay
func (f *ClassifierFactory) CreateService(store core.Store, verdicts core.VerdictCache) (*core.ClassificationService, error) {
	classifierCfg, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, err
	}
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	remote := relayclient.NewClient(classifierCfg.RelayURL, classifierCfg.HTTPTimeout, f.logger.Named("relay"))
	return core.NewClassificationService(store, remote, verdicts, f.logger.Named("classifier"), core.ServiceOptions{
		AIKeywords:   classifierCfg.AIKeywords,
		AIDelay:      classifierCfg.AIDelay,
		CacheEnabled: cacheCfg.Enabled,
		CacheTTL:     cacheCfg.TTL,
	}), nil
}
