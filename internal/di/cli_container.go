package di

import (
	"context"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/llm-inbox-prioritizer/internal/automation"
	"github.com/mikey/llm-inbox-prioritizer/internal/bus"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"github.com/mikey/llm-inbox-prioritizer/internal/factory"
	"github.com/mikey/llm-inbox-prioritizer/internal/logging"
	"github.com/mikey/llm-inbox-prioritizer/internal/preferences"
	"github.com/mikey/llm-inbox-prioritizer/internal/session"
	"github.com/mikey/llm-inbox-prioritizer/internal/view"
)

// CLIOptions contains the global command line options of the CLI
type CLIOptions struct {
	ConfigFile  string
	Verbose     bool
	JSONLog     bool
	WaitTimeout time.Duration
	// Overrides are applied on top of the loaded configuration
	Overrides map[string]any
}

// BuildCLIContainer creates and configures a dependency injection container
// for the CLI. Components are built on first use, so commands that only
// touch the store never wait for the conversation list.
func BuildCLIContainer(opts CLIOptions) (*dig.Container, error) {
	container := dig.New()

	// Register logger
	if err := container.Provide(func() (*zap.Logger, error) {
		return logging.InitConsoleLogger(opts.Verbose, opts.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.New(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		for key, value := range opts.Overrides {
			cfg.Set(key, value)
		}
		if file := cfg.ConfigFile(); file != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", file))
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	for _, ctor := range []interface{}{
		factory.NewStoreFactory,
		factory.NewCacheFactory,
		factory.NewClassifierFactory,
		factory.NewResponderFactory,
	} {
		if err := container.Provide(ctor); err != nil {
			return nil, err
		}
	}

	// Register store and verdict cache
	if err := container.Provide(func(f *factory.StoreFactory) (core.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory, store core.Store) (core.VerdictCache, error) {
		return f.CreateVerdictCache(store)
	}); err != nil {
		return nil, err
	}

	// Register classification service
	if err := container.Provide(func(
		f *factory.ClassifierFactory,
		store core.Store,
		verdicts core.VerdictCache,
	) (*core.ClassificationService, error) {
		return f.CreateService(store, verdicts)
	}); err != nil {
		return nil, err
	}

	// Register preferences mirror
	if err := container.Provide(func(store core.Store, logger *zap.Logger) (*preferences.Manager, error) {
		return preferences.Load(context.Background(), store, logger.Named("preferences"))
	}); err != nil {
		return nil, err
	}

	// Register the conversation list, waiting for it to be rendered
	if err := container.Provide(func(cfg *config.Config, store core.Store, logger *zap.Logger) (*view.List, error) {
		interval, err := cfg.GetDuration("view.container_poll_interval")
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), opts.WaitTimeout)
		defer cancel()
		return view.WaitForList(ctx, &view.StoreSource{Store: store}, interval, logger.Named("view"))
	}); err != nil {
		return nil, err
	}

	// Register session
	if err := container.Provide(func(list *view.List, store core.Store, logger *zap.Logger) *session.Session {
		sess := session.New(list, store, logger.Named("session"))
		sess.OnChange(func(st session.State) {
			logger.Debug("Session state changed",
				zap.Bool("sorted", st.IsSorted),
				zap.Bool("spam_filtered", st.IsSpamFiltered),
				zap.Int("messages", st.MessageCount))
		})
		return sess
	}); err != nil {
		return nil, err
	}

	// Register responder and automation
	if err := container.Provide(func(f *factory.ResponderFactory, list *view.List) (core.Responder, error) {
		return f.CreateResponder(list)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		store core.Store,
		prefs *preferences.Manager,
		responder core.Responder,
		logger *zap.Logger,
	) *automation.Processor {
		return automation.NewProcessor(store, prefs, responder, logger.Named("automation"))
	}); err != nil {
		return nil, err
	}

	// Register bus
	if err := container.Provide(func(
		sess *session.Session,
		service *core.ClassificationService,
		prefs *preferences.Manager,
		processor *automation.Processor,
		logger *zap.Logger,
	) *bus.Bus {
		dispatcher := bus.NewDispatcher(sess, service, prefs, processor, logger.Named("dispatcher"))
		return bus.New(dispatcher, logger.Named("bus"))
	}); err != nil {
		return nil, err
	}

	return container, nil
}
