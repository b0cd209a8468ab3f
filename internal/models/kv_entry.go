package models

import "time"

// KVEntry is one key of the SQL-backed key-value store.
type KVEntry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     string `gorm:"not null"`
	UpdatedAt time.Time
}

// TableName pins the table name used by the SQL backends.
func (KVEntry) TableName() string {
	return "kv_entries"
}
