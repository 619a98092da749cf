package database

import (
	"context"
	"fmt"

	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/config"
	"github.com/you/dairyshell/internal/infrastructure/repositories"
)

// OpenKeyValueStore opens the session storage selected by cfg.StorageDriver.
// Open and migration failures wrap domain.ErrStorageUnavailable.
func OpenKeyValueStore(ctx context.Context, cfg *config.Config) (domain.KeyValueStore, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite, config.DriverPostgres:
		db, err := Open(cfg.StorageDriver, target(cfg))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		if err := AutoMigrate(db); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return repositories.NewGormKeyValueStore(db), nil

	case config.DriverRedis:
		rdb := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rdb.Ping(ctx); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
		}
		return repositories.NewRedisKeyValueStore(rdb.Client, cfg.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDriver, cfg.StorageDriver)
	}
}

// UnavailableStore stands in for storage that could not be opened.
// Every call fails with domain.ErrStorageUnavailable, so the session
// hydrates to a guest and persistence failures are only logged.
type UnavailableStore struct {
	cause error
}

// NewUnavailableStore creates a store that always fails with cause attached
func NewUnavailableStore(cause error) *UnavailableStore {
	return &UnavailableStore{cause: cause}
}

func (s *UnavailableStore) fail() error {
	if s.cause == nil {
		return domain.ErrStorageUnavailable
	}
	return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, s.cause)
}

// Get implements domain.KeyValueStore
func (s *UnavailableStore) Get(ctx context.Context, key string) (string, error) {
	return "", s.fail()
}

// Set implements domain.KeyValueStore
func (s *UnavailableStore) Set(ctx context.Context, entries map[string]string) error {
	return s.fail()
}

// Delete implements domain.KeyValueStore
func (s *UnavailableStore) Delete(ctx context.Context, keys ...string) error {
	return s.fail()
}

// Close implements domain.KeyValueStore
func (s *UnavailableStore) Close() error { return nil }

// Compile-time interface compliance verification
var _ domain.KeyValueStore = (*UnavailableStore)(nil)
