package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type LedgerRepository interface {
	// Token classes
	CreateTokenClass(ctx context.Context, class *entity.TokenClass) error
	GetTokenClass(ctx context.Context, address string) (*entity.TokenClass, error)
	NextSerial(ctx context.Context, address string) (int64, error)
	AddSupply(ctx context.Context, address string, amount int64) error
	SubSupply(ctx context.Context, address string, amount int64) error

	// Fungible balances
	GetBalance(ctx context.Context, account, token string) (int64, error)
	AddBalance(ctx context.Context, account, token string, amount int64) error
	SubBalance(ctx context.Context, account, token string, amount int64) error
	ListBalances(ctx context.Context) ([]entity.TokenBalance, error)

	// NFT serials
	CreateSerial(ctx context.Context, serial *entity.NFTSerial) error
	GetSerial(ctx context.Context, token string, serial int64) (*entity.NFTSerial, error)
	GetSerialsByOwner(ctx context.Context, owner, token string) ([]entity.NFTSerial, error)
	CountSerialsByOwner(ctx context.Context, owner, token string) (int64, error)
	UpdateSerialOwner(ctx context.Context, token string, serial int64, from, to string) error
	SetSerialWinning(ctx context.Context, token string, serial int64, winning bool) error
	WipeSerial(ctx context.Context, token string, serial int64) error
	ListSerials(ctx context.Context) ([]entity.NFTSerial, error)

	// Allowances
	UpsertAllowance(ctx context.Context, allowance *entity.TokenAllowance) error
	GetAllowance(ctx context.Context, owner, spender, token string) (*entity.TokenAllowance, error)
	SpendAllowance(ctx context.Context, owner, spender, token string, amount int64) error
	HasNFTAllowance(ctx context.Context, owner, spender, token string) (bool, error)

	// Associations
	CreateAssociation(ctx context.Context, account, token string) error
	HasAssociation(ctx context.Context, account, token string) (bool, error)

	// Delegations
	CreateDelegation(ctx context.Context, delegation *entity.Delegation) error
	HasDelegatedSerial(ctx context.Context, delegate, token string) (bool, error)
}

type ledgerRepository struct{}

func NewLedgerRepository() *ledgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) CreateTokenClass(ctx context.Context, class *entity.TokenClass) error {
	return xcontext.DB(ctx).Create(class).Error
}

func (r *ledgerRepository) GetTokenClass(ctx context.Context, address string) (*entity.TokenClass, error) {
	var result entity.TokenClass
	if err := xcontext.DB(ctx).Take(&result, "address=?", address).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// NextSerial reserves the next serial number of a non-fungible class.
func (r *ledgerRepository) NextSerial(ctx context.Context, address string) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.TokenClass{}).
		Where("address=?", address).
		Update("next_serial", gorm.Expr("next_serial+?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}

	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	class, err := r.GetTokenClass(ctx, address)
	if err != nil {
		return 0, err
	}

	return class.NextSerial, nil
}

func (r *ledgerRepository) AddSupply(ctx context.Context, address string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenClass{}).
		Where("address=?", address).
		Update("total_supply", gorm.Expr("total_supply+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) SubSupply(ctx context.Context, address string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenClass{}).
		Where("address=? AND total_supply >= ?", address, amount).
		Update("total_supply", gorm.Expr("total_supply-?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) GetBalance(ctx context.Context, account, token string) (int64, error) {
	var result entity.TokenBalance
	err := xcontext.DB(ctx).Take(&result, "account=? AND token=?", account, token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return result.Amount, nil
}

func (r *ledgerRepository) AddBalance(ctx context.Context, account, token string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenBalance{}).
		Where("account=? AND token=?", account, token).
		Update("amount", gorm.Expr("amount+?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return xcontext.DB(ctx).Create(&entity.TokenBalance{
			Base:    entity.Base{ID: uuid.NewString()},
			Account: account,
			Token:   token,
			Amount:  amount,
		}).Error
	}

	return nil
}

// SubBalance fails with gorm.ErrRecordNotFound when the account holds less
// than amount.
func (r *ledgerRepository) SubBalance(ctx context.Context, account, token string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenBalance{}).
		Where("account=? AND token=? AND amount >= ?", account, token, amount).
		Update("amount", gorm.Expr("amount-?", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) ListBalances(ctx context.Context) ([]entity.TokenBalance, error) {
	var result []entity.TokenBalance
	if err := xcontext.DB(ctx).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ledgerRepository) CreateSerial(ctx context.Context, serial *entity.NFTSerial) error {
	return xcontext.DB(ctx).Create(serial).Error
}

func (r *ledgerRepository) GetSerial(ctx context.Context, token string, serial int64) (*entity.NFTSerial, error) {
	var result entity.NFTSerial
	if err := xcontext.DB(ctx).Take(&result, "token=? AND serial=?", token, serial).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ledgerRepository) GetSerialsByOwner(ctx context.Context, owner, token string) ([]entity.NFTSerial, error) {
	var result []entity.NFTSerial
	err := xcontext.DB(ctx).Order("serial ASC").
		Find(&result, "owner=? AND token=?", owner, token).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ledgerRepository) CountSerialsByOwner(ctx context.Context, owner, token string) (int64, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.NFTSerial{}).
		Where("owner=? AND token=?", owner, token).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *ledgerRepository) UpdateSerialOwner(ctx context.Context, token string, serial int64, from, to string) error {
	tx := xcontext.DB(ctx).Model(&entity.NFTSerial{}).
		Where("token=? AND serial=? AND owner=?", token, serial, from).
		Update("owner", to)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) SetSerialWinning(ctx context.Context, token string, serial int64, winning bool) error {
	tx := xcontext.DB(ctx).Model(&entity.NFTSerial{}).
		Where("token=? AND serial=?", token, serial).
		Update("winning", winning)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) WipeSerial(ctx context.Context, token string, serial int64) error {
	tx := xcontext.DB(ctx).
		Where("token=? AND serial=?", token, serial).
		Delete(&entity.NFTSerial{})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) ListSerials(ctx context.Context) ([]entity.NFTSerial, error) {
	var result []entity.NFTSerial
	if err := xcontext.DB(ctx).Order("token ASC, serial ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ledgerRepository) UpsertAllowance(ctx context.Context, allowance *entity.TokenAllowance) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenAllowance{}).
		Where("owner=? AND spender=? AND token=?", allowance.Owner, allowance.Spender, allowance.Token).
		Updates(map[string]any{"amount": allowance.Amount, "approve_all": allowance.ApproveAll})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return xcontext.DB(ctx).Create(allowance).Error
	}

	return nil
}

func (r *ledgerRepository) GetAllowance(ctx context.Context, owner, spender, token string) (*entity.TokenAllowance, error) {
	var result entity.TokenAllowance
	err := xcontext.DB(ctx).
		Take(&result, "owner=? AND spender=? AND token=?", owner, spender, token).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// SpendAllowance debits a fungible allowance, failing with
// gorm.ErrRecordNotFound when the remaining allowance is too small.
func (r *ledgerRepository) SpendAllowance(ctx context.Context, owner, spender, token string, amount int64) error {
	tx := xcontext.DB(ctx).Model(&entity.TokenAllowance{}).
		Where("owner=? AND spender=? AND token=? AND (approve_all=? OR amount >= ?)",
			owner, spender, token, true, amount).
		Update("amount", gorm.Expr("CASE WHEN approve_all THEN amount ELSE amount-? END", amount))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ledgerRepository) HasNFTAllowance(ctx context.Context, owner, spender, token string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.TokenAllowance{}).
		Where("owner=? AND spender=? AND token=? AND approve_all=?", owner, spender, token, true).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *ledgerRepository) CreateAssociation(ctx context.Context, account, token string) error {
	return xcontext.DB(ctx).Create(&entity.TokenAssociation{
		Base:    entity.Base{ID: uuid.NewString()},
		Account: account,
		Token:   token,
	}).Error
}

func (r *ledgerRepository) HasAssociation(ctx context.Context, account, token string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.TokenAssociation{}).
		Where("account=? AND token=?", account, token).Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *ledgerRepository) CreateDelegation(ctx context.Context, delegation *entity.Delegation) error {
	return xcontext.DB(ctx).Create(delegation).Error
}

// HasDelegatedSerial reports whether delegate is the delegate-of-record for
// any serial of token that its owner still holds. A delegation row with
// serial zero covers the owner's whole collection.
func (r *ledgerRepository) HasDelegatedSerial(ctx context.Context, delegate, token string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).Model(&entity.Delegation{}).
		Joins("JOIN nft_serials ON nft_serials.token = delegations.token"+
			" AND nft_serials.owner = delegations.owner"+
			" AND (delegations.serial = 0 OR nft_serials.serial = delegations.serial)"+
			" AND nft_serials.deleted_at IS NULL").
		Where("delegations.delegate=? AND delegations.token=?", delegate, token).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
