package logging

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ParseLevel maps a configured level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch name {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes a logger based on configuration. The returned level
// can be changed at runtime.
func InitLogger(cfg *config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.GetString("logging.level")))
	logger, err := build(cfg.GetString("logging.format") == "json", level)
	return logger, level, err
}

// InitConsoleLogger initializes a console-friendly logger
func InitConsoleLogger(verbose bool, jsonFormat bool) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	return build(jsonFormat, level)
}

// WatchLevel follows logging.level in the config file
func WatchLevel(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) {
	cfg.Watch(func(e fsnotify.Event) {
		next := ParseLevel(cfg.GetString("logging.level"))
		if next != level.Level() {
			level.SetLevel(next)
			logger.Info("Log level changed",
				zap.String("file", e.Name),
				zap.Stringer("level", next))
		}
	})
}

func build(jsonFormat bool, level zap.AtomicLevel) (*zap.Logger, error) {
	var logConfig zap.Config
	if jsonFormat {
		logConfig = zap.NewProductionConfig()
	} else {
		logConfig = zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	logConfig.Level = level

	logger, err := logConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
