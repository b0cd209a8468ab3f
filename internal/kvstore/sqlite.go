package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trade-journal-go/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SQLStore keeps keys as rows of the kv_entries table. It works on any gorm
// dialect opened by database.NewDatabase.
type SQLStore struct {
	db *gorm.DB
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps a migrated database (see database.NewDatabase).
func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry models.KVEntry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("could not get %s: %w", key, err)
	}
	return []byte(entry.Value), true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	if err := upsert(s.db.WithContext(ctx), key, string(value)); err != nil {
		return fmt.Errorf("could not set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.KVEntry{}).Where("entry_key = ?", key).Count(&count).Error; err != nil {
		return false, fmt.Errorf("could not check %s: %w", key, err)
	}
	return count > 0, nil
}

// Incr reads and rewrites the counter inside one transaction. An absent key
// is first inserted as "0" so there is always a row to lock; the row is
// locked where the driver supports it.
func (s *SQLStore) Incr(ctx context.Context, key string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.KVEntry{Key: key, Value: "0"}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return err
		}

		var entry models.KVEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("entry_key = ?", key).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			n = 0
		case err != nil:
			return err
		default:
			parsed, perr := strconv.ParseInt(strings.TrimSpace(entry.Value), 10, 64)
			if perr != nil {
				return ErrNotInteger
			}
			n = parsed
		}
		n++
		return upsert(tx, key, strconv.FormatInt(n, 10))
	})
	if err != nil {
		return 0, fmt.Errorf("could not incr %s: %w", key, err)
	}
	return n, nil
}

func (s *SQLStore) Del(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("entry_key = ?", key).Delete(&models.KVEntry{}).Error; err != nil {
		return fmt.Errorf("could not delete %s: %w", key, err)
	}
	return nil
}

func upsert(tx *gorm.DB, key, value string) error {
	entry := models.KVEntry{Key: key, Value: value}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
