package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ContractStateRepository interface {
	Create(ctx context.Context, state *entity.ContractState) error
	Get(ctx context.Context) (*entity.ContractState, error)
	Update(ctx context.Context, fields map[string]any) error

	AddGlobalPrizeManager(ctx context.Context, manager *entity.GlobalPrizeManager) error
	RemoveGlobalPrizeManager(ctx context.Context, address string) error
	IsGlobalPrizeManager(ctx context.Context, address string) (bool, error)
	ListGlobalPrizeManagers(ctx context.Context) ([]entity.GlobalPrizeManager, error)
}

type contractStateRepository struct{}

func NewContractStateRepository() *contractStateRepository {
	return &contractStateRepository{}
}

func (r *contractStateRepository) Create(ctx context.Context, state *entity.ContractState) error {
	return xcontext.DB(ctx).Create(state).Error
}

func (r *contractStateRepository) Get(ctx context.Context) (*entity.ContractState, error) {
	var result entity.ContractState
	if err := xcontext.DB(ctx).Take(&result, "id=?", entity.ContractStateID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *contractStateRepository) Update(ctx context.Context, fields map[string]any) error {
	tx := xcontext.DB(ctx).Model(&entity.ContractState{}).
		Where("id=?", entity.ContractStateID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *contractStateRepository) AddGlobalPrizeManager(ctx context.Context, manager *entity.GlobalPrizeManager) error {
	return xcontext.DB(ctx).Create(manager).Error
}

func (r *contractStateRepository) RemoveGlobalPrizeManager(ctx context.Context, address string) error {
	tx := xcontext.DB(ctx).Unscoped().
		Where("address=?", address).Delete(&entity.GlobalPrizeManager{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *contractStateRepository) IsGlobalPrizeManager(ctx context.Context, address string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.GlobalPrizeManager{}).
		Where("address=?", address).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *contractStateRepository) ListGlobalPrizeManagers(ctx context.Context) ([]entity.GlobalPrizeManager, error) {
	var result []entity.GlobalPrizeManager
	if err := xcontext.DB(ctx).Order("created_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

type BonusRepository interface {
	UpsertNFTBonus(ctx context.Context, token string, bps int64) error
	DeleteNFTBonus(ctx context.Context, token string) error
	ListNFTBonuses(ctx context.Context) ([]entity.NFTBonus, error)

	CreateTimeBonus(ctx context.Context, bonus *entity.TimeBonus) error
	DeleteTimeBonus(ctx context.Context, id int64) error
	ListTimeBonuses(ctx context.Context) ([]entity.TimeBonus, error)
	// ListActiveTimeBonuses returns windows containing now, bounds included.
	ListActiveTimeBonuses(ctx context.Context, now int64) ([]entity.TimeBonus, error)
}

type bonusRepository struct{}

func NewBonusRepository() *bonusRepository {
	return &bonusRepository{}
}

func (r *bonusRepository) UpsertNFTBonus(ctx context.Context, token string, bps int64) error {
	tx := xcontext.DB(ctx).Model(&entity.NFTBonus{}).
		Where("token=?", token).Update("bps", bps)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return xcontext.DB(ctx).Create(&entity.NFTBonus{
			Base:  entity.Base{ID: uuid.NewString()},
			Token: token,
			Bps:   bps,
		}).Error
	}

	return nil
}

func (r *bonusRepository) DeleteNFTBonus(ctx context.Context, token string) error {
	tx := xcontext.DB(ctx).Unscoped().Where("token=?", token).Delete(&entity.NFTBonus{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *bonusRepository) ListNFTBonuses(ctx context.Context) ([]entity.NFTBonus, error) {
	var result []entity.NFTBonus
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *bonusRepository) CreateTimeBonus(ctx context.Context, bonus *entity.TimeBonus) error {
	return xcontext.DB(ctx).Create(bonus).Error
}

func (r *bonusRepository) DeleteTimeBonus(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Unscoped().Where("id=?", id).Delete(&entity.TimeBonus{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *bonusRepository) ListTimeBonuses(ctx context.Context) ([]entity.TimeBonus, error) {
	var result []entity.TimeBonus
	if err := xcontext.DB(ctx).Order("start_time ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *bonusRepository) ListActiveTimeBonuses(ctx context.Context, now int64) ([]entity.TimeBonus, error) {
	var result []entity.TimeBonus
	err := xcontext.DB(ctx).
		Where("start_time <= ? AND end_time >= ?", now, now).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
