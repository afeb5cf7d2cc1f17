package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type TableRepo interface {
	WithTx(tx *gorm.DB) TableRepo
	Create(table *model.MahjongTable) error
	GetByID(id uint) (*model.MahjongTable, error)
	GetByStoreID(storeID uint) ([]model.MahjongTable, error)
}

type tableRepoGorm struct {
	db *gorm.DB
}

var _ TableRepo = (*tableRepoGorm)(nil)

func NewTableRepoGorm(db *gorm.DB) *tableRepoGorm {
	return &tableRepoGorm{
		db: db,
	}
}

func (r *tableRepoGorm) WithTx(tx *gorm.DB) TableRepo {
	return &tableRepoGorm{
		db: tx,
	}
}

func (r *tableRepoGorm) Create(table *model.MahjongTable) error {
	ctx := context.Background()
	if err := gorm.G[model.MahjongTable](r.db).Create(ctx, table); err != nil {
		return err
	}
	return nil
}

func (r *tableRepoGorm) GetByID(id uint) (*model.MahjongTable, error) {
	ctx := context.Background()
	table, err := gorm.G[model.MahjongTable](r.db).Where(&model.MahjongTable{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *tableRepoGorm) GetByStoreID(storeID uint) ([]model.MahjongTable, error) {
	ctx := context.Background()
	tables, err := gorm.G[model.MahjongTable](r.db).Where(&model.MahjongTable{StoreID: storeID}).Order("table_number").Find(ctx)
	if err != nil {
		return nil, err
	}
	return tables, nil
}
