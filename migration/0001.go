package migration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// migrate0001 seeds the ledger and the contract state: the hbar pseudo token
// at the zero address, the singleton state row, and the initial admin. It is
// idempotent.
func migrate0001(ctx context.Context) error {
	db := xcontext.DB(ctx)

	err := db.Take(&entity.TokenClass{}, "address=?", entity.HbarAddress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Create(&entity.TokenClass{
			Base:     entity.Base{ID: uuid.NewString()},
			Address:  entity.HbarAddress,
			Type:     entity.TokenTypeFungible,
			Name:     "hbar",
			Symbol:   "HBAR",
			Decimals: 8,
		}).Error
	}
	if err != nil {
		return err
	}

	err = db.Take(&entity.ContractState{}, "id=?", entity.ContractStateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Create(&entity.ContractState{
			SnowFlakeBase: entity.SnowFlakeBase{ID: entity.ContractStateID},
		}).Error
	}
	if err != nil {
		return err
	}

	admin := xcontext.Configs(ctx).Lotto.InitialAdmin
	if admin == "" {
		return nil
	}

	err = db.Take(&entity.Admin{}, "address=?", admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = db.Create(&entity.Admin{
			Base:    entity.Base{ID: uuid.NewString()},
			Address: admin,
		}).Error
	}

	return err
}
