package repository

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portal/internal/model"
)

// Storage keys shared by every client namespace
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// StorageRepository is a per-client key/value store, the server-side
// counterpart of the browser's local storage.
type StorageRepository interface {
	GetItem(ctx context.Context, namespace, key string) (string, bool, error)
	SetItem(ctx context.Context, namespace, key, value string) error
	RemoveItem(ctx context.Context, namespace, key string) error
}

type storageRepository struct {
	db *gorm.DB
}

// NewStorageRepository returns a gorm-backed StorageRepository
func NewStorageRepository(db *gorm.DB) StorageRepository {
	return &storageRepository{db: db}
}

func (r *storageRepository) GetItem(ctx context.Context, namespace, key string) (string, bool, error) {
	var item model.StorageItem
	err := GetDB(ctx, r.db).
		Where(`namespace = ? AND "key" = ?`, namespace, key).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get storage item %s/%s", namespace, key)
	}
	return item.Value, true, nil
}

func (r *storageRepository) SetItem(ctx context.Context, namespace, key, value string) error {
	item := model.StorageItem{
		Namespace: namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	err := GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return errors.Wrapf(err, "set storage item %s/%s", namespace, key)
	}
	return nil
}

func (r *storageRepository) RemoveItem(ctx context.Context, namespace, key string) error {
	err := GetDB(ctx, r.db).
		Where(`namespace = ? AND "key" = ?`, namespace, key).
		Delete(&model.StorageItem{}).Error
	if err != nil {
		return errors.Wrapf(err, "remove storage item %s/%s", namespace, key)
	}
	return nil
}

type memoryStorage struct {
	mu    sync.RWMutex
	items map[string]map[string]string
}

// NewMemoryStorage returns a StorageRepository that lives only as long as
// the process.
func NewMemoryStorage() StorageRepository {
	return &memoryStorage{items: make(map[string]map[string]string)}
}

func (m *memoryStorage) GetItem(_ context.Context, namespace, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[namespace][key]
	return v, ok, nil
}

func (m *memoryStorage) SetItem(_ context.Context, namespace, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ns, ok := m.items[namespace]
	if !ok {
		ns = make(map[string]string)
		m.items[namespace] = ns
	}
	ns[key] = value
	return nil
}

func (m *memoryStorage) RemoveItem(_ context.Context, namespace, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ns, ok := m.items[namespace]; ok {
		delete(ns, key)
		if len(ns) == 0 {
			delete(m.items, namespace)
		}
	}
	return nil
}
