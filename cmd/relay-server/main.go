package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/di"
	"github.com/mikey/llm-inbox-prioritizer/internal/logging"
	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"go.uber.org/zap"
)

var configFile = flag.String("config", "", "Path to config file (searched in the default locations if not specified)")

func main() {
	flag.Parse()

	// Build the dependency injection container
	container, err := di.BuildContainer(*configFile)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	level zap.AtomicLevel,
	cfg *config.Config,
	server ports.Server,
	model ports.ChatModel,
) error {
	defer logger.Sync()

	logging.WatchLevel(cfg, level, logger)

	logger.Info("Using upstream model", zap.String("model", model.Name()))

	// Start the relay
	if err := server.Start(); err != nil {
		logger.Error("Failed to start relay", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop relay", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := model.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close chat model", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
