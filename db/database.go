package db

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens the history database at path and brings its schema up to date
func Open(path string) (*gorm.DB, error) {
	slog.Debug("Opening history database", "path", path)

	db, err := InitDatabase(DBConfig{
		Path:     path,
		LogLevel: getGormLogLevel(),
	})
	if err != nil {
		return nil, err
	}

	if err := AutoMigrateAll(db); err != nil {
		slog.Error("Database operation failed",
			"layer", "db",
			"operation", "migrate",
			"path", path,
			"error", err)
		return nil, err
	}

	return db, nil
}

// AllModels returns all the models that need to be migrated
func AllModels() []any {
	return []any{
		&RunModel{},
		&PhaseModel{},
	}
}

// AutoMigrateAll runs auto-migration for all history models
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// getGormLogLevel maps application log level to corresponding GORM log level
func getGormLogLevel() logger.LogLevel {
	l := slog.Default()
	ctx := context.Background()

	switch {
	case l.Enabled(ctx, slog.LevelDebug):
		return logger.Info // SQL statements only at debug
	case l.Enabled(ctx, slog.LevelWarn):
		return logger.Warn
	case l.Enabled(ctx, slog.LevelError):
		return logger.Error
	default:
		return logger.Silent
	}
}
