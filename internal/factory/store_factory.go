package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/llm-inbox-prioritizer/internal/adapters/storage"
	"github.com/mikey/llm-inbox-prioritizer/internal/config"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates the key-value store based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates the store selected by storage.type
func (f *StoreFactory) CreateStore() (core.Store, error) {
	storageCfg := f.cfg.GetStorage()
	logger := f.logger.Named("store")

	switch storageCfg.Type {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "sqlite", "sqlite_pure":
		if err := os.MkdirAll(filepath.Dir(storageCfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		driver := storage.DriverSQLite
		if storageCfg.Type == "sqlite_pure" {
			driver = storage.DriverSQLitePure
		}
		store, err := storage.NewSQLiteStore(driver, storageCfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "mysql":
		store, err := storage.NewMySQLStore(storageCfg.MySQLDSN, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageCfg.Type)
	}
}
