package repository

import (
	"context"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *entity.Admin) error
	Delete(ctx context.Context, address string) error
	IsAdmin(ctx context.Context, address string) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]entity.Admin, error)
}

type adminRepository struct{}

func NewAdminRepository() *adminRepository {
	return &adminRepository{}
}

func (r *adminRepository) Create(ctx context.Context, admin *entity.Admin) error {
	return xcontext.DB(ctx).Create(admin).Error
}

func (r *adminRepository) Delete(ctx context.Context, address string) error {
	tx := xcontext.DB(ctx).Unscoped().
		Where("address=?", address).Delete(&entity.Admin{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *adminRepository) IsAdmin(ctx context.Context, address string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Admin{}).
		Where("address=?", address).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *adminRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *adminRepository) List(ctx context.Context) ([]entity.Admin, error) {
	var result []entity.Admin
	if err := xcontext.DB(ctx).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
