package storage

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pushchain/push-wallet-connect/walletClient/store"
)

// SQLBackend keeps namespaces in the storage_entries table. It does not
// observe writes from other processes.
type SQLBackend struct {
	db *gorm.DB
}

// NewSQLBackend expects db to be migrated with store.StorageEntry.
func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Get(key string) (string, bool, error) {
	var entry store.StorageEntry
	err := b.db.Where("key = ?", key).Limit(1).Find(&entry).Error
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read storage key %s", key)
	}
	if entry.ID == 0 {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (b *SQLBackend) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	entry := store.StorageEntry{Key: key, Value: value}
	err := b.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return errors.Wrapf(err, "failed to write storage key %s", key)
	}
	return nil
}

func (b *SQLBackend) Remove(key string) error {
	err := b.db.Unscoped().Where("key = ?", key).Delete(&store.StorageEntry{}).Error
	if err != nil {
		return errors.Wrapf(err, "failed to remove storage key %s", key)
	}
	return nil
}
