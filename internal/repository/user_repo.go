package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/mahjong-booking/internal/model"
)

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo
	Create(user *model.User) error
	GetByID(id uint) (*model.User, error)
	GetByName(name string) (*model.User, error)
}

type userRepoGorm struct {
	db *gorm.DB
}

var _ UserRepo = (*userRepoGorm)(nil)

func NewUserRepoGorm(db *gorm.DB) *userRepoGorm {
	return &userRepoGorm{
		db: db,
	}
}

func (r *userRepoGorm) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoGorm{
		db: tx,
	}
}

func (r *userRepoGorm) Create(user *model.User) error {
	ctx := context.Background()
	if err := gorm.G[model.User](r.db).Create(ctx, user); err != nil {
		return err
	}
	return nil
}

func (r *userRepoGorm) GetByID(id uint) (*model.User, error) {
	ctx := context.Background()
	user, err := gorm.G[model.User](r.db).Where(&model.User{ID: id}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepoGorm) GetByName(name string) (*model.User, error) {
	ctx := context.Background()
	user, err := gorm.G[model.User](r.db).Where(&model.User{Name: name}).First(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
