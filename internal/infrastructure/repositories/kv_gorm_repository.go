package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/you/dairyshell/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the database model for one stored key
type KVEntry struct {
	Name      string `gorm:"primaryKey;size:191"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName implements gorm's tabler interface
func (KVEntry) TableName() string {
	return "kv_entries"
}

// GormKeyValueStore implements domain.KeyValueStore on a SQL database
type GormKeyValueStore struct {
	db *gorm.DB
}

// NewGormKeyValueStore creates a new key-value store on db
func NewGormKeyValueStore(db *gorm.DB) domain.KeyValueStore {
	return &GormKeyValueStore{db: db}
}

// Get implements domain.KeyValueStore
func (s *GormKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("name = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read %q: %w", key, err)
	}
	return entry.Value, nil
}

// Set implements domain.KeyValueStore; all entries are upserted in one transaction
func (s *GormKeyValueStore) Set(ctx context.Context, entries map[string]string) error {
	if len(entries) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]KVEntry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, KVEntry{Name: k, Value: v, UpdatedAt: now})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to write entries: %w", err)
	}
	return nil
}

// Delete implements domain.KeyValueStore
func (s *GormKeyValueStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Where("name IN ?", keys).Delete(&KVEntry{}).Error; err != nil {
		return fmt.Errorf("failed to delete entries: %w", err)
	}
	return nil
}

// Close implements domain.KeyValueStore
func (s *GormKeyValueStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
