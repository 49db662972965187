package model

import "time"

// StorageItem is one key of a client's persisted storage
type StorageItem struct {
	Namespace string    `gorm:"primaryKey;type:varchar(64)"`
	Key       string    `gorm:"primaryKey;type:varchar(64)"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (StorageItem) TableName() string {
	return "client_storage"
}
