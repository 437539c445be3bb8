package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// ErrEntryCapReached reports that an Add would push the user over the pool's
// cumulative entry cap.
var ErrEntryCapReached = errors.New("user entry cap reached")

type EntryRepository interface {
	Get(ctx context.Context, poolID int64, user string) (*entity.UserEntry, error)
	// Add credits n unrolled entries, enforcing the per-user cumulative cap
	// (zero means uncapped).
	Add(ctx context.Context, poolID int64, user string, n, maxPerUser int64) error
	// RecordPurchase counts n tickets against the cumulative cap without
	// crediting counter entries, for tickets materialized as NFTs at buy
	// time.
	RecordPurchase(ctx context.Context, poolID int64, user string, n, maxPerUser int64) error
	// Consume debits n unrolled entries, failing with gorm.ErrRecordNotFound
	// when fewer are available.
	Consume(ctx context.Context, poolID int64, user string, n int64) error
}

type entryRepository struct{}

func NewEntryRepository() *entryRepository {
	return &entryRepository{}
}

func (r *entryRepository) Get(ctx context.Context, poolID int64, user string) (*entity.UserEntry, error) {
	var result entity.UserEntry
	err := xcontext.DB(ctx).Take(&result, "pool_id=? AND user_address=?", poolID, user).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryRepository) Add(ctx context.Context, poolID int64, user string, n, maxPerUser int64) error {
	return r.credit(ctx, poolID, user, n, n, maxPerUser)
}

func (r *entryRepository) RecordPurchase(ctx context.Context, poolID int64, user string, n, maxPerUser int64) error {
	return r.credit(ctx, poolID, user, 0, n, maxPerUser)
}

func (r *entryRepository) credit(ctx context.Context, poolID int64, user string, count, bought, maxPerUser int64) error {
	_, err := r.Get(ctx, poolID, user)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = xcontext.DB(ctx).Create(&entity.UserEntry{
			Base:        entity.Base{ID: uuid.NewString()},
			PoolID:      poolID,
			UserAddress: user,
		}).Error
	}
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).Model(&entity.UserEntry{}).
		Where("pool_id=? AND user_address=? AND (? = 0 OR total_bought + ? <= ?)",
			poolID, user, maxPerUser, bought, maxPerUser).
		Updates(map[string]any{
			"count":        gorm.Expr("count+?", count),
			"total_bought": gorm.Expr("total_bought+?", bought),
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return ErrEntryCapReached
	}

	return nil
}

func (r *entryRepository) Consume(ctx context.Context, poolID int64, user string, n int64) error {
	tx := xcontext.DB(ctx).Model(&entity.UserEntry{}).
		Where("pool_id=? AND user_address=? AND count >= ?", poolID, user, n).
		Update("count", gorm.Expr("count-?", n))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
