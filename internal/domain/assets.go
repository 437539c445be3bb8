package domain

import (
	"context"
	"errors"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

func contractAddress(ctx context.Context) string {
	return xcontext.Configs(ctx).Lotto.ContractAddress
}

// collectHbar takes required hbar out of the native value attached to the
// call and returns the excess so the caller can report the refund.
func collectHbar(ctx context.Context, ledgerRepo repository.LedgerRepository, payer string, payable, required int64) (int64, error) {
	if payable < required {
		return 0, errorx.New(errorx.InsufficientHbar,
			"Attached %d hbar, need %d", payable, required)
	}

	if required == 0 {
		return payable, nil
	}

	err := ledgerRepo.SubBalance(ctx, payer, entity.HbarAddress, required)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errorx.New(errorx.NotEnoughHbar, "Not enough hbar to cover %d", required)
		}

		xcontext.Logger(ctx).Errorf("Cannot debit hbar of %s: %v", payer, err)
		return 0, errorx.Unknown
	}

	if err := ledgerRepo.AddBalance(ctx, contractAddress(ctx), entity.HbarAddress, required); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit contract hbar: %v", err)
		return 0, errorx.Unknown
	}

	return payable - required, nil
}

// collectFungible pulls amount of token from payer through the allowance
// the payer granted the contract.
func collectFungible(ctx context.Context, ledgerRepo repository.LedgerRepository, payer, token string, amount int64) error {
	if amount == 0 {
		return nil
	}

	contract := contractAddress(ctx)
	err := ledgerRepo.SpendAllowance(ctx, payer, contract, token, amount)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotEnoughFungible,
				"Not enough allowance of %s for %d", token, amount)
		}

		xcontext.Logger(ctx).Errorf("Cannot spend allowance of %s: %v", payer, err)
		return errorx.Unknown
	}

	if err := ledgerRepo.SubBalance(ctx, payer, token, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotEnoughFungible,
				"Not enough balance of %s for %d", token, amount)
		}

		xcontext.Logger(ctx).Errorf("Cannot debit %s of %s: %v", token, payer, err)
		return errorx.Unknown
	}

	if err := ledgerRepo.AddBalance(ctx, contract, token, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit contract %s: %v", token, err)
		return errorx.Unknown
	}

	return nil
}

// payOut moves amount of token from the contract to the recipient. Fungible
// tokens other than hbar require the recipient to be associated first.
func payOut(ctx context.Context, ledgerRepo repository.LedgerRepository, recipient, token string, amount int64) error {
	if amount == 0 {
		return nil
	}

	if !entity.IsHbar(token) {
		associated, err := ledgerRepo.HasAssociation(ctx, recipient, token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
			return errorx.Unknown
		}

		if !associated {
			return errorx.New(errorx.AssociationFailed,
				"Recipient is not associated with %s", token)
		}
	}

	contract := contractAddress(ctx)
	if err := ledgerRepo.SubBalance(ctx, contract, token, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.FungibleTokenTransferFailed,
				"Contract cannot cover %d of %s", amount, token)
		}

		xcontext.Logger(ctx).Errorf("Cannot debit contract %s: %v", token, err)
		return errorx.Unknown
	}

	if err := ledgerRepo.AddBalance(ctx, recipient, token, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot credit %s: %v", recipient, err)
		return errorx.Unknown
	}

	return nil
}

// burnFungible destroys amount of token held by the contract.
func burnFungible(ctx context.Context, ledgerRepo repository.LedgerRepository, token string, amount int64) error {
	if amount == 0 {
		return nil
	}

	if err := ledgerRepo.SubBalance(ctx, contractAddress(ctx), token, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot debit contract for burn: %v", err)
		return errorx.Unknown
	}

	if err := ledgerRepo.SubSupply(ctx, token, amount); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reduce supply of %s: %v", token, err)
		return errorx.Unknown
	}

	return nil
}

func requireNotPaused(ctx context.Context, stateRepo repository.ContractStateRepository) error {
	state, err := stateRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contract state: %v", err)
		return errorx.Unknown
	}

	if state.Paused {
		return errorx.New(errorx.Unavailable, "Contract is paused")
	}

	return nil
}

func getPool(ctx context.Context, poolRepo repository.PoolRepository, poolID int64) (*entity.Pool, error) {
	pool, err := poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.LottoPoolNotFound, "Not found pool %d", poolID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get pool %d: %v", poolID, err)
		return nil, errorx.Unknown
	}

	return pool, nil
}

func convertRoyalties(royalties entity.Array[entity.Royalty]) []model.Royalty {
	result := make([]model.Royalty, 0, len(royalties))
	for _, r := range royalties {
		result = append(result, model.Royalty{Recipient: r.Recipient, Bps: r.Bps})
	}

	return result
}

func convertPool(pool *entity.Pool) model.Pool {
	return model.Pool{
		PoolID:           pool.ID,
		Name:             pool.Name,
		Symbol:           pool.Symbol,
		Memo:             pool.Memo,
		TicketCID:        pool.TicketCID,
		WinCID:           pool.WinCID,
		WinRateThreshold: pool.WinRateThreshold,
		EntryFee:         pool.EntryFee,
		FeeToken:         pool.FeeToken,
		TicketToken:      pool.TicketToken,
		Royalties:        convertRoyalties(pool.Royalties),
		Paused:           pool.Paused,
		Closed:           pool.Closed,
		IsGlobal:         pool.IsGlobal,
		Owner:            pool.OwnerAddress,
		PrizeManager:     pool.PrizeManager,

		PlatformPercentage:    pool.PlatformPercentage,
		MaxTicketsPerBuy:      pool.MaxTicketsPerBuy,
		MaxTicketsPerUser:     pool.MaxTicketsPerUser,
		OutstandingEntries:    pool.OutstandingEntries,
		OutstandingTicketNFTs: pool.OutstandingTicketNFTs,
		PrizeCount:            pool.PrizeCount,
	}
}

func convertPrizePackage(pkg *entity.PrizePackage) model.PrizePackage {
	return model.PrizePackage{
		Token:      pkg.Token,
		Amount:     pkg.Amount,
		NFTTokens:  pkg.NFTTokens,
		NFTSerials: pkg.NFTSerials,
	}
}
