package repository

import (
	"context"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PendingPrizeRepository interface {
	Append(ctx context.Context, pending *entity.PendingPrize) error
	Count(ctx context.Context, user string) (int64, error)
	ListByUser(ctx context.Context, user string) ([]entity.PendingPrize, error)
	GetAt(ctx context.Context, user string, position int64) (*entity.PendingPrize, error)
	// GetByID reloads a counter-form queue entry; the position reflects any
	// compaction since the entry was first read.
	GetByID(ctx context.Context, id string) (*entity.PendingPrize, error)
	GetByBearer(ctx context.Context, token string, serial int64) (*entity.PendingPrize, error)
	// TakeAt removes and returns the queue entry at position, moving the tail
	// entry into the hole. Callers must run inside a transaction.
	TakeAt(ctx context.Context, user string, position int64) (*entity.PendingPrize, error)
	// ConvertToBearer detaches the entry at position from the positional
	// queue and binds it to a bearer serial.
	ConvertToBearer(ctx context.Context, user string, position int64, token string, serial int64) (*entity.PendingPrize, error)
	DeleteByBearer(ctx context.Context, token string, serial int64) error
}

type pendingPrizeRepository struct{}

func NewPendingPrizeRepository() *pendingPrizeRepository {
	return &pendingPrizeRepository{}
}

func (r *pendingPrizeRepository) Append(ctx context.Context, pending *entity.PendingPrize) error {
	count, err := r.Count(ctx, pending.UserAddress)
	if err != nil {
		return err
	}

	pending.Position = count
	pending.AsNFT = false
	return xcontext.DB(ctx).Create(pending).Error
}

// Count counts the counter-form queue only; bearer-NFT prizes are excluded.
func (r *pendingPrizeRepository) Count(ctx context.Context, user string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.PendingPrize{}).
		Where("user_address=? AND as_nft=?", user, false).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *pendingPrizeRepository) ListByUser(ctx context.Context, user string) ([]entity.PendingPrize, error) {
	var result []entity.PendingPrize
	err := xcontext.DB(ctx).Where("user_address=? AND as_nft=?", user, false).
		Order("position ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pendingPrizeRepository) GetAt(ctx context.Context, user string, position int64) (*entity.PendingPrize, error) {
	var result entity.PendingPrize
	err := xcontext.DB(ctx).
		Take(&result, "user_address=? AND as_nft=? AND position=?", user, false, position).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *pendingPrizeRepository) GetByID(ctx context.Context, id string) (*entity.PendingPrize, error) {
	var result entity.PendingPrize
	if err := xcontext.DB(ctx).Take(&result, "id=? AND as_nft=?", id, false).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *pendingPrizeRepository) GetByBearer(ctx context.Context, token string, serial int64) (*entity.PendingPrize, error) {
	var result entity.PendingPrize
	err := xcontext.DB(ctx).
		Take(&result, "bearer_token=? AND bearer_serial=? AND as_nft=?", token, serial, true).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *pendingPrizeRepository) TakeAt(ctx context.Context, user string, position int64) (*entity.PendingPrize, error) {
	count, err := r.Count(ctx, user)
	if err != nil {
		return nil, err
	}

	if position < 0 || position >= count {
		return nil, gorm.ErrRecordNotFound
	}

	target, err := r.GetAt(ctx, user, position)
	if err != nil {
		return nil, err
	}

	tx := xcontext.DB(ctx).Unscoped().
		Where("id=? AND as_nft=? AND position=?", target.ID, false, position).
		Delete(&entity.PendingPrize{})
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	if position != count-1 {
		err = xcontext.DB(ctx).Model(&entity.PendingPrize{}).
			Where("user_address=? AND as_nft=? AND position=?", user, false, count-1).
			Update("position", position).Error
		if err != nil {
			return nil, err
		}
	}

	return target, nil
}

func (r *pendingPrizeRepository) ConvertToBearer(
	ctx context.Context, user string, position int64, token string, serial int64,
) (*entity.PendingPrize, error) {
	count, err := r.Count(ctx, user)
	if err != nil {
		return nil, err
	}

	if position < 0 || position >= count {
		return nil, gorm.ErrRecordNotFound
	}

	target, err := r.GetAt(ctx, user, position)
	if err != nil {
		return nil, err
	}

	tx := xcontext.DB(ctx).Model(&entity.PendingPrize{}).
		Where("id=? AND as_nft=?", target.ID, false).
		Updates(map[string]any{
			"as_nft":        true,
			"position":      -1,
			"bearer_token":  token,
			"bearer_serial": serial,
		})
	if tx.Error != nil {
		return nil, tx.Error
	}

	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	if position != count-1 {
		err = xcontext.DB(ctx).Model(&entity.PendingPrize{}).
			Where("user_address=? AND as_nft=? AND position=?", user, false, count-1).
			Update("position", position).Error
		if err != nil {
			return nil, err
		}
	}

	target.AsNFT = true
	target.Position = -1
	target.BearerToken = token
	target.BearerSerial = serial
	return target, nil
}

func (r *pendingPrizeRepository) DeleteByBearer(ctx context.Context, token string, serial int64) error {
	tx := xcontext.DB(ctx).Unscoped().
		Where("bearer_token=? AND bearer_serial=? AND as_nft=?", token, serial, true).
		Delete(&entity.PendingPrize{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
