package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type StoreRepo interface {
	WithTx(tx *gorm.DB) StoreRepo
	Create(store *model.Store) error
	GetByID(id uint) (*model.Store, error)
	GetByName(name string) (*model.Store, error)
	ListAll() ([]model.Store, error)
}

type storeRepoGorm struct {
	db *gorm.DB
}

var _ StoreRepo = (*storeRepoGorm)(nil)

func NewStoreRepoGorm(db *gorm.DB) *storeRepoGorm {
	return &storeRepoGorm{
		db: db,
	}
}

func (r *storeRepoGorm) WithTx(tx *gorm.DB) StoreRepo {
	return &storeRepoGorm{
		db: tx,
	}
}

func (r *storeRepoGorm) Create(store *model.Store) error {
	ctx := context.Background()
	if err := gorm.G[model.Store](r.db).Create(ctx, store); err != nil {
		return err
	}
	return nil
}

func (r *storeRepoGorm) GetByID(id uint) (*model.Store, error) {
	var store model.Store
	if err := r.db.Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("table_number") }).First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepoGorm) GetByName(name string) (*model.Store, error) {
	var store model.Store
	if err := r.db.Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("table_number") }).Where("name = ?", name).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepoGorm) ListAll() ([]model.Store, error) {
	var stores []model.Store
	if err := r.db.Preload("Tables", func(db *gorm.DB) *gorm.DB { return db.Order("table_number") }).Order("id").Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}
