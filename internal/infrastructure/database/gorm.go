package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/you/dairyshell/internal/config"
	"github.com/you/dairyshell/internal/infrastructure/repositories"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open creates a gorm connection for the sqlite or postgres driver.
// For sqlite, dsn is a file path whose directory is created on demand.
func Open(driver, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	switch driver {
	case config.DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create storage directory: %w", err)
			}
		}
		return gorm.Open(sqlite.Open(dsn), gormCfg)
	case config.DriverPostgres:
		return gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("open %q: unsupported gorm driver", driver)
	}
}

// AutoMigrate creates the key-value table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&repositories.KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries table: %w", err)
	}
	return nil
}

// target picks the sqlite path or the postgres DSN from cfg
func target(cfg *config.Config) string {
	if cfg.StorageDriver == config.DriverSQLite {
		return cfg.StoragePath
	}
	return cfg.StorageDSN
}
