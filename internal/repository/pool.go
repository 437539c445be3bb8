package repository

import (
	"context"
	"errors"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PoolRepository interface {
	Create(ctx context.Context, pool *entity.Pool) error
	GetByID(ctx context.Context, poolID int64) (*entity.Pool, error)
	GetByTicketToken(ctx context.Context, ticketToken string) (*entity.Pool, error)
	Count(ctx context.Context) (int64, error)

	ListAll(ctx context.Context) ([]entity.Pool, error)
	ListGlobal(ctx context.Context, offset, limit int) ([]entity.Pool, error)
	ListCommunity(ctx context.Context, offset, limit int) ([]entity.Pool, error)
	ListByOwner(ctx context.Context, owner string) ([]entity.Pool, error)

	SetPaused(ctx context.Context, poolID int64, paused bool) error
	SetEntryCaps(ctx context.Context, poolID, maxPerBuy, maxPerUser int64) error
	// Close marks the pool closed only when no entries or ticket NFTs are
	// outstanding.
	Close(ctx context.Context, poolID int64) error

	SetOwner(ctx context.Context, poolID int64, owner string) error
	SetPrizeManager(ctx context.Context, poolID int64, manager string) error

	AddOutstanding(ctx context.Context, poolID int64, entries, ticketNFTs int64) error
	SubOutstandingEntries(ctx context.Context, poolID, n int64) error
	SubOutstandingTicketNFTs(ctx context.Context, poolID, n int64) error

	AddPrizeCount(ctx context.Context, poolID, n int64) error
}

type poolRepository struct{}

func NewPoolRepository() *poolRepository {
	return &poolRepository{}
}

// Create assigns the next monotonic pool id, starting at zero.
func (r *poolRepository) Create(ctx context.Context, pool *entity.Pool) error {
	var last entity.Pool
	err := xcontext.DB(ctx).Order("id DESC").Take(&last).Error
	switch {
	case err == nil:
		pool.ID = last.ID + 1
	case errors.Is(err, gorm.ErrRecordNotFound):
		pool.ID = 0
	default:
		return err
	}

	return xcontext.DB(ctx).Create(pool).Error
}

func (r *poolRepository) GetByID(ctx context.Context, poolID int64) (*entity.Pool, error) {
	var result entity.Pool
	if err := xcontext.DB(ctx).Take(&result, "id=?", poolID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *poolRepository) GetByTicketToken(ctx context.Context, ticketToken string) (*entity.Pool, error) {
	var result entity.Pool
	if err := xcontext.DB(ctx).Take(&result, "ticket_token=?", ticketToken).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *poolRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := xcontext.DB(ctx).Model(&entity.Pool{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func (r *poolRepository) ListAll(ctx context.Context) ([]entity.Pool, error) {
	var result []entity.Pool
	if err := xcontext.DB(ctx).Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *poolRepository) ListGlobal(ctx context.Context, offset, limit int) ([]entity.Pool, error) {
	var result []entity.Pool
	err := xcontext.DB(ctx).Where("is_global=?", true).
		Order("id ASC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *poolRepository) ListCommunity(ctx context.Context, offset, limit int) ([]entity.Pool, error) {
	var result []entity.Pool
	err := xcontext.DB(ctx).Where("is_global=?", false).
		Order("id ASC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *poolRepository) ListByOwner(ctx context.Context, owner string) ([]entity.Pool, error) {
	var result []entity.Pool
	err := xcontext.DB(ctx).Where("owner_address=?", owner).
		Order("id ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *poolRepository) SetEntryCaps(ctx context.Context, poolID, maxPerBuy, maxPerUser int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND closed=?", poolID, false).
		Updates(map[string]any{
			"max_tickets_per_buy":  maxPerBuy,
			"max_tickets_per_user": maxPerUser,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) SetPaused(ctx context.Context, poolID int64, paused bool) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND closed=? AND paused=?", poolID, false, !paused).
		Update("paused", paused)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) Close(ctx context.Context, poolID int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND closed=? AND outstanding_entries=0 AND outstanding_ticket_nfts=0",
			poolID, false).
		Updates(map[string]any{"closed": true, "paused": false})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) SetOwner(ctx context.Context, poolID int64, owner string) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=?", poolID).Update("owner_address", owner)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) SetPrizeManager(ctx context.Context, poolID int64, manager string) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=?", poolID).Update("prize_manager", manager)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// AddOutstanding increments the unrolled ticket counters of an open pool.
func (r *poolRepository) AddOutstanding(ctx context.Context, poolID int64, entries, ticketNFTs int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND closed=?", poolID, false).
		Updates(map[string]any{
			"outstanding_entries":     gorm.Expr("outstanding_entries+?", entries),
			"outstanding_ticket_nfts": gorm.Expr("outstanding_ticket_nfts+?", ticketNFTs),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) SubOutstandingEntries(ctx context.Context, poolID, n int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND outstanding_entries >= ?", poolID, n).
		Update("outstanding_entries", gorm.Expr("outstanding_entries-?", n))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) SubOutstandingTicketNFTs(ctx context.Context, poolID, n int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND outstanding_ticket_nfts >= ?", poolID, n).
		Update("outstanding_ticket_nfts", gorm.Expr("outstanding_ticket_nfts-?", n))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *poolRepository) AddPrizeCount(ctx context.Context, poolID, n int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Pool{}).
		Where("id=? AND prize_count + ? >= 0", poolID, n).
		Update("prize_count", gorm.Expr("prize_count+?", n))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
