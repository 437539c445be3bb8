package repository

import (
	"context"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PrizeRepository interface {
	Append(ctx context.Context, pkg *entity.PrizePackage) error
	Count(ctx context.Context, poolID int64) (int64, error)
	ListByPool(ctx context.Context, poolID int64) ([]entity.PrizePackage, error)
	GetAt(ctx context.Context, poolID, position int64) (*entity.PrizePackage, error)
	// TakeAt removes and returns the package at position, moving the tail
	// package into the hole. Callers must run inside a transaction.
	TakeAt(ctx context.Context, poolID, position int64) (*entity.PrizePackage, error)
}

type prizeRepository struct{}

func NewPrizeRepository() *prizeRepository {
	return &prizeRepository{}
}

// Append places the package at the tail of the pool's prize list.
func (r *prizeRepository) Append(ctx context.Context, pkg *entity.PrizePackage) error {
	count, err := r.Count(ctx, pkg.PoolID)
	if err != nil {
		return err
	}

	pkg.Position = count
	return xcontext.DB(ctx).Create(pkg).Error
}

func (r *prizeRepository) Count(ctx context.Context, poolID int64) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.PrizePackage{}).
		Where("pool_id=?", poolID).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *prizeRepository) ListByPool(ctx context.Context, poolID int64) ([]entity.PrizePackage, error) {
	var result []entity.PrizePackage
	err := xcontext.DB(ctx).Where("pool_id=?", poolID).
		Order("position ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *prizeRepository) GetAt(ctx context.Context, poolID, position int64) (*entity.PrizePackage, error) {
	var result entity.PrizePackage
	err := xcontext.DB(ctx).Take(&result, "pool_id=? AND position=?", poolID, position).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *prizeRepository) TakeAt(ctx context.Context, poolID, position int64) (*entity.PrizePackage, error) {
	count, err := r.Count(ctx, poolID)
	if err != nil {
		return nil, err
	}

	if position < 0 || position >= count {
		return nil, gorm.ErrRecordNotFound
	}

	target, err := r.GetAt(ctx, poolID, position)
	if err != nil {
		return nil, err
	}

	// Hard delete so the tail package can take over the slot.
	err = xcontext.DB(ctx).Unscoped().
		Where("pool_id=? AND position=?", poolID, position).
		Delete(&entity.PrizePackage{}).Error
	if err != nil {
		return nil, err
	}

	if position != count-1 {
		err = xcontext.DB(ctx).Model(&entity.PrizePackage{}).
			Where("pool_id=? AND position=?", poolID, count-1).
			Update("position", position).Error
		if err != nil {
			return nil, err
		}
	}

	return target, nil
}
