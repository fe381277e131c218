// Package cli holds the initialization steps shared by the server,
// the worker and the command-line tool.
package cli

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/deciofranchini-oss/objetivo/internal/config"
	applog "github.com/deciofranchini-oss/objetivo/internal/log"
	"github.com/deciofranchini-oss/objetivo/internal/storage"
)

// SetupLogger initializes structured logging and installs it as the
// process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored, the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration, exiting the process on
// validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite opens the repository, exiting the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
