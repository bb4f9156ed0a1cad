// Package app holds the process-wide services of canthus-deploy.
package app

import (
	"fmt"
	"log/slog"

	"github.com/canthus/deploy/config"
	"github.com/canthus/deploy/db"
	"github.com/canthus/deploy/deploy"
	"github.com/canthus/deploy/git"
	"github.com/canthus/deploy/repository"
	"gorm.io/gorm"
)

var (
	database      *gorm.DB
	executor      deploy.Executor
	runRepository repository.RunRepository
	gitService    *git.GitService
	appConfig     *config.Config
)

// InitializeWithConfig initializes the app with a pre-configured Config. The
// history database is opened only when history is enabled.
func InitializeWithConfig(cfg *config.Config) error {
	appConfig = cfg
	gitService = git.NewGitService()

	if executor == nil {
		executor = deploy.NewExecExecutor()
	}

	if !cfg.HistoryEnabled || runRepository != nil {
		return nil
	}

	var err error
	database, err = db.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Service operation failed",
			"layer", "app",
			"operation", "open_history",
			"path", cfg.DatabasePath,
			"error", err)
		return fmt.Errorf("opening run history: %w", err)
	}

	runRepository = repository.NewRunRepository(database)
	return nil
}

// Close releases the history database
func Close() error {
	if database == nil {
		return nil
	}
	sqlDB, err := database.DB()
	if err != nil {
		return err
	}
	database = nil
	runRepository = nil
	return sqlDB.Close()
}

func GetConfig() *config.Config {
	return appConfig
}

func GetExecutor() deploy.Executor {
	return executor
}

// GetRunRepository returns nil when history is disabled
func GetRunRepository() repository.RunRepository {
	return runRepository
}

func GetGitService() *git.GitService {
	return gitService
}

// SetExecutorForTesting allows overriding the command executor for testing purposes
func SetExecutorForTesting(e deploy.Executor) {
	executor = e
}

// SetRunRepositoryForTesting allows overriding the run repository for testing purposes
func SetRunRepositoryForTesting(r repository.RunRepository) {
	runRepository = r
}

// Reset clears all services, used between command invocations in tests
func Reset() {
	_ = Close()
	database = nil
	executor = nil
	runRepository = nil
	gitService = nil
	appConfig = nil
}
