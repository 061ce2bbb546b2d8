package store

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"voart-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists entries in the store_entries table. Read-modify-writes
// go through an optimistic version check so two concurrent admins cannot
// silently lose each other's updates.
type GormStore struct {
	db         *gorm.DB
	maxRetries int
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, maxRetries: 5}
}

func (s *GormStore) Get(key string, out interface{}) error {
	var entry models.StoreEntry
	if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrKeyNotFound
		}
		return err
	}
	return json.Unmarshal([]byte(entry.Value), out)
}

func (s *GormStore) Put(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	entry := models.StoreEntry{Key: key, Value: string(raw), Version: 1}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":   string(raw),
			"version": gorm.Expr("store_entries.version + 1"),
		}),
	}).Create(&entry).Error
}

func (s *GormStore) Delete(key string) error {
	return s.db.Delete(&models.StoreEntry{}, "key = ?", key).Error
}

func (s *GormStore) Update(key string, out interface{}, mutate func() error) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		// Reset out between attempts so a retried mutate starts clean.
		v := reflect.ValueOf(out).Elem()
		v.Set(reflect.Zero(v.Type()))

		var entry models.StoreEntry
		exists := true
		if err := s.db.First(&entry, "key = ?", key).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			exists = false
		}
		if exists {
			if err := json.Unmarshal([]byte(entry.Value), out); err != nil {
				return err
			}
		}

		if err := mutate(); err != nil {
			return err
		}

		raw, err := json.Marshal(out)
		if err != nil {
			return err
		}

		if exists {
			res := s.db.Model(&models.StoreEntry{}).
				Where("key = ? AND version = ?", key, entry.Version).
				Updates(map[string]interface{}{"value": string(raw), "version": entry.Version + 1})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				return nil
			}
			// Someone else won the race; reload and retry.
			continue
		}

		err = s.db.Create(&models.StoreEntry{Key: key, Value: string(raw), Version: 1}).Error
		if err == nil {
			return nil
		}
		if isDuplicateKey(err) {
			continue
		}
		return err
	}
	return ErrConflict
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
