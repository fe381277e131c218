package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Seed demo data when the store is empty
	SeedOnStartup bool

	// AMQP
	AMQPURL          string
	AMQPExchange     string
	AMQPExtractQueue string
	AMQPBackupQueue  string

	// Google Sheets backup
	SheetsBackupEnabled bool
	SpreadsheetID       string
	SheetBaseName       string

	// Worker
	BackupBatchSize int
	BackupInterval  time.Duration
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8082"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/objetivo.db"),

		SeedOnStartup: getEnvBool("SEED_ON_STARTUP", true),

		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "objetivo"),
		AMQPExtractQueue: getEnv("AMQP_EXTRACT_QUEUE", "extract_documents"),
		AMQPBackupQueue:  getEnv("AMQP_BACKUP_QUEUE", "backup_transactions"),

		SheetsBackupEnabled: getEnvBool("SHEETS_BACKUP_ENABLED", false),
		SpreadsheetID:       getEnv("GOOGLE_SPREADSHEET_ID", ""),
		SheetBaseName:       getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		BackupBatchSize: getEnvInt("BACKUP_BATCH_SIZE", 25),
		BackupInterval:  getEnvDuration("BACKUP_INTERVAL", 60*time.Second),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPExtractQueue == "" {
			errors = append(errors, "AMQP extract queue name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPBackupQueue == "" {
			errors = append(errors, "AMQP backup queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsBackupEnabled && c.SpreadsheetID == "" {
		errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when sheets backup is enabled")
	}

	if c.BackupBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid backup batch size %d: must be at least 1", c.BackupBatchSize))
	} else if c.BackupBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid backup batch size %d: must be at most 1000", c.BackupBatchSize))
	}

	if c.BackupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid backup interval %v: must be at least 1 second", c.BackupInterval))
	} else if c.BackupInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid backup interval %v: must be at most 24 hours", c.BackupInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
