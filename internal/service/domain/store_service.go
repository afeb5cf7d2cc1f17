package domain

import (
	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
	"github.com/qs-lzh/mahjong-booking/internal/repository"
)

type StoreService interface {
	ListStores() ([]model.Store, error)
	GetStore(id uint) (*model.Store, error)
	ListTables(storeID uint) ([]model.MahjongTable, error)
}

type storeService struct {
	db     *gorm.DB
	stores repository.StoreRepo
	tables repository.TableRepo
}

var _ StoreService = (*storeService)(nil)

func NewStoreService(db *gorm.DB, stores repository.StoreRepo, tables repository.TableRepo) *storeService {
	return &storeService{
		db:     db,
		stores: stores,
		tables: tables,
	}
}

func (s *storeService) ListStores() ([]model.Store, error) {
	return s.stores.ListAll()
}

func (s *storeService) GetStore(id uint) (*model.Store, error) {
	store, err := s.stores.GetByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	return store, nil
}

func (s *storeService) ListTables(storeID uint) ([]model.MahjongTable, error) {
	if _, err := s.stores.GetByID(storeID); err != nil {
		return nil, notFound(err)
	}
	return s.tables.GetByStoreID(storeID)
}
