package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ProceedsRepository interface {
	AddPoolProceeds(ctx context.Context, poolID int64, token string, amount int64) error
	GetPoolProceeds(ctx context.Context, poolID int64, token string) (*entity.PoolProceeds, error)
	ListPoolProceeds(ctx context.Context, poolID int64) ([]entity.PoolProceeds, error)
	// WithdrawPoolProceeds marks everything outstanding as withdrawn and
	// returns the amount released. Callers must run inside a transaction.
	WithdrawPoolProceeds(ctx context.Context, poolID int64, token string) (int64, error)

	AddPlatformBalance(ctx context.Context, token string, amount int64) error
	GetPlatformBalance(ctx context.Context, token string) (int64, error)
	// DrainPlatformBalance zeroes the balance and returns the amount drained.
	DrainPlatformBalance(ctx context.Context, token string) (int64, error)
}

type proceedsRepository struct{}

func NewProceedsRepository() *proceedsRepository {
	return &proceedsRepository{}
}

func (r *proceedsRepository) AddPoolProceeds(ctx context.Context, poolID int64, token string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.PoolProceeds{}).
		Where("pool_id=? AND token=?", poolID, token).
		Update("total", gorm.Expr("total+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return xcontext.DB(ctx).Create(&entity.PoolProceeds{
			Base:   entity.Base{ID: uuid.NewString()},
			PoolID: poolID,
			Token:  token,
			Total:  amount,
		}).Error
	}

	return nil
}

func (r *proceedsRepository) GetPoolProceeds(ctx context.Context, poolID int64, token string) (*entity.PoolProceeds, error) {
	var result entity.PoolProceeds
	if err := xcontext.DB(ctx).Take(&result, "pool_id=? AND token=?", poolID, token).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *proceedsRepository) ListPoolProceeds(ctx context.Context, poolID int64) ([]entity.PoolProceeds, error) {
	var result []entity.PoolProceeds
	if err := xcontext.DB(ctx).Find(&result, "pool_id=?", poolID).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *proceedsRepository) WithdrawPoolProceeds(ctx context.Context, poolID int64, token string) (int64, error) {
	proceeds, err := r.GetPoolProceeds(ctx, poolID, token)
	if err != nil {
		return 0, err
	}

	available := proceeds.Total - proceeds.Withdrawn
	if available <= 0 {
		return 0, nil
	}

	tx := xcontext.DB(ctx).Model(&entity.PoolProceeds{}).
		Where("pool_id=? AND token=? AND withdrawn=?", poolID, token, proceeds.Withdrawn).
		Update("withdrawn", proceeds.Total)
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return available, nil
}

func (r *proceedsRepository) AddPlatformBalance(ctx context.Context, token string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.PlatformBalance{}).
		Where("token=?", token).
		Update("amount", gorm.Expr("amount+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return xcontext.DB(ctx).Create(&entity.PlatformBalance{
			Base:   entity.Base{ID: uuid.NewString()},
			Token:  token,
			Amount: amount,
		}).Error
	}

	return nil
}

func (r *proceedsRepository) GetPlatformBalance(ctx context.Context, token string) (int64, error) {
	var result entity.PlatformBalance
	err := xcontext.DB(ctx).Take(&result, "token=?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return result.Amount, nil
}

func (r *proceedsRepository) DrainPlatformBalance(ctx context.Context, token string) (int64, error) {
	var result entity.PlatformBalance
	err := xcontext.DB(ctx).Take(&result, "token=?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	if result.Amount == 0 {
		return 0, nil
	}

	tx := xcontext.DB(ctx).Model(&entity.PlatformBalance{}).
		Where("token=? AND amount=?", token, result.Amount).
		Update("amount", 0)
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	return result.Amount, nil
}
