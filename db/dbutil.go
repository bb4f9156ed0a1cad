package db

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// DBConfig holds configuration options for database initialization
type DBConfig struct {
	// Path is the database file, or MemoryPath
	Path string
	// LogLevel specifies the GORM logging level
	LogLevel logger.LogLevel
}

// InitDatabase creates and configures a SQLite database. Migrations are left
// to the caller.
func InitDatabase(config DBConfig) (*gorm.DB, error) {
	inMemory := config.Path == MemoryPath

	if !inMemory {
		dir := filepath.Dir(config.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Error("Database operation failed",
				"layer", "db",
				"operation", "create_data_dir",
				"dir", dir,
				"error", err)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(config.Path), &gorm.Config{
		Logger: logger.Default.LogMode(config.LogLevel),
	})
	if err != nil {
		slog.Error("Database operation failed",
			"layer", "db",
			"operation", "connect",
			"path", config.Path,
			"error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if inMemory {
		// every pooled connection would get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access connection pool: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := "PRAGMA foreign_keys = ON;"
	if !inMemory {
		pragmas += `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous  = NORMAL;
		PRAGMA busy_timeout = 5000;`
	}

	if err := db.Exec(pragmas).Error; err != nil {
		slog.Error("Database operation failed",
			"layer", "db",
			"operation", "configure",
			"error", err)
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	slog.Debug("Database initialized", "path", config.Path)
	return db, nil
}
