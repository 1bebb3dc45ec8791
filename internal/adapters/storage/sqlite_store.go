package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/llm-inbox-prioritizer/internal/core"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite is the cgo driver registered by mattn/go-sqlite3
	DriverSQLite = "sqlite3"
	// DriverSQLitePure is the pure Go driver registered by modernc.org/sqlite
	DriverSQLitePure = "sqlite"
)

// SQLiteStore is a SQLite implementation of the Store interface
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStore opens (and creates if needed) a SQLite key-value store
func NewSQLiteStore(driver, dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv_store (
			store_key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	logger.Debug("Opened SQLite store", zap.String("driver", driver), zap.String("path", dbPath))

	return &SQLiteStore{
		db:     db,
		logger: logger,
	}, nil
}

// Get retrieves the document stored under key
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE store_key = ?
	`, key).Scan(&value)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query store: %w", err)
	}

	return value, nil
}

// Set replaces the document stored under key
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv_store (store_key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, time.Now().UTC().Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to write store entry: %w", err)
	}

	return nil
}

// Delete removes the document stored under key
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_store WHERE store_key = ?
	`, key)

	if err != nil {
		return fmt.Errorf("failed to delete store entry: %w", err)
	}

	return nil
}

// Stop closes the database connection
func (s *SQLiteStore) Stop() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}
