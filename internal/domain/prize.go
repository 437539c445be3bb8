package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
)

type PrizeDomain interface {
	AddPrizePackage(context.Context, *model.AddPrizePackageRequest) (*model.AddPrizePackageResponse, error)
	AddMultipleFungiblePrizes(context.Context, *model.AddMultipleFungiblePrizesRequest) (*model.AddMultipleFungiblePrizesResponse, error)
	RemovePrizes(context.Context, *model.RemovePrizesRequest) (*model.RemovePrizesResponse, error)
	GetPrizes(context.Context, *model.GetPrizesRequest) (*model.GetPrizesResponse, error)
}

type prizeDomain struct {
	poolRepo   repository.PoolRepository
	prizeRepo  repository.PrizeRepository
	ledgerRepo repository.LedgerRepository
	verifier   *common.PrizeManagerVerifier
	locker     *common.PoolLocker
}

func NewPrizeDomain(
	poolRepo repository.PoolRepository,
	prizeRepo repository.PrizeRepository,
	ledgerRepo repository.LedgerRepository,
	verifier *common.PrizeManagerVerifier,
	locker *common.PoolLocker,
) *prizeDomain {
	return &prizeDomain{
		poolRepo:   poolRepo,
		prizeRepo:  prizeRepo,
		ledgerRepo: ledgerRepo,
		verifier:   verifier,
		locker:     locker,
	}
}

func validatePrizePackage(req *model.AddPrizePackageRequest) error {
	if req.Amount < 0 {
		return errorx.New(errorx.BadParameters, "Amount must not be negative")
	}

	if len(req.NFTTokens) != len(req.NFTSerials) {
		return errorx.New(errorx.BadParameters, "NFT tokens and serial lists must pair up")
	}

	if req.Amount == 0 && len(req.NFTTokens) == 0 {
		return errorx.New(errorx.BadParameters, "Empty prize package")
	}

	for i, serials := range req.NFTSerials {
		if len(serials) == 0 {
			return errorx.New(errorx.BadParameters, "No serials for %s", req.NFTTokens[i])
		}

		seen := make(map[int64]bool, len(serials))
		for _, serial := range serials {
			if serial <= 0 {
				return errorx.New(errorx.BadParameters, "Serial numbers start at one")
			}

			if seen[serial] {
				return errorx.New(errorx.BadParameters,
					"Duplicate serial %d of %s", serial, req.NFTTokens[i])
			}

			seen[serial] = true
		}
	}

	return nil
}

// depositPrizeAssets moves the package contents from the depositor to the
// contract escrow.
func (d *prizeDomain) depositPrizeAssets(
	ctx context.Context, depositor string, req *model.AddPrizePackageRequest,
) error {
	if req.Amount > 0 {
		if entity.IsHbar(req.Token) {
			if _, err := collectHbar(ctx, d.ledgerRepo, depositor, req.PayableAmount, req.Amount); err != nil {
				return err
			}
		} else {
			if err := collectFungible(ctx, d.ledgerRepo, depositor, req.Token, req.Amount); err != nil {
				return err
			}
		}
	}

	contract := contractAddress(ctx)
	for i, token := range req.NFTTokens {
		approved, err := d.ledgerRepo.HasNFTAllowance(ctx, depositor, contract, token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check nft allowance: %v", err)
			return errorx.Unknown
		}

		if !approved {
			return errorx.New(errorx.NotAuthorized,
				"Approve the contract for %s before depositing", token)
		}

		for _, serial := range req.NFTSerials[i] {
			if err := d.ledgerRepo.UpdateSerialOwner(ctx, token, serial, depositor, contract); err != nil {
				return errorx.New(errorx.BadParameters,
					"Serial %d of %s is not yours", serial, token)
			}
		}
	}

	return nil
}

func (d *prizeDomain) AddPrizePackage(
	ctx context.Context, req *model.AddPrizePackageRequest,
) (*model.AddPrizePackageResponse, error) {
	if err := validatePrizePackage(req); err != nil {
		return nil, err
	}

	if err := d.verifier.Verify(ctx, req.PoolID); err != nil {
		return nil, err
	}

	depositor := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.Closed {
		return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is closed", req.PoolID)
	}

	if err := d.depositPrizeAssets(ctx, depositor, req); err != nil {
		return nil, err
	}

	pkg := &entity.PrizePackage{
		Base:       entity.Base{ID: uuid.NewString()},
		PoolID:     req.PoolID,
		Token:      req.Token,
		Amount:     req.Amount,
		NFTTokens:  req.NFTTokens,
		NFTSerials: req.NFTSerials,
	}

	if err := d.prizeRepo.Append(ctx, pkg); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append prize package: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.poolRepo.AddPrizeCount(ctx, req.PoolID, 1); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increment prize count: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolPrizesUpdatedEvent, map[string]any{"pool_id": req.PoolID})

	return &model.AddPrizePackageResponse{Position: pkg.Position}, nil
}

func (d *prizeDomain) AddMultipleFungiblePrizes(
	ctx context.Context, req *model.AddMultipleFungiblePrizesRequest,
) (*model.AddMultipleFungiblePrizesResponse, error) {
	if len(req.Amounts) == 0 {
		return nil, errorx.New(errorx.BadParameters, "No amounts given")
	}

	var total int64
	for _, amount := range req.Amounts {
		if amount <= 0 {
			return nil, errorx.New(errorx.BadParameters, "Amounts must be positive")
		}

		total += amount
	}

	if err := d.verifier.Verify(ctx, req.PoolID); err != nil {
		return nil, err
	}

	depositor := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.Closed {
		return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is closed", req.PoolID)
	}

	if entity.IsHbar(req.Token) {
		if _, err := collectHbar(ctx, d.ledgerRepo, depositor, req.PayableAmount, total); err != nil {
			return nil, err
		}
	} else {
		if err := collectFungible(ctx, d.ledgerRepo, depositor, req.Token, total); err != nil {
			return nil, err
		}
	}

	startPosition, err := d.prizeRepo.Count(ctx, req.PoolID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count prizes: %v", err)
		return nil, errorx.Unknown
	}

	for _, amount := range req.Amounts {
		err := d.prizeRepo.Append(ctx, &entity.PrizePackage{
			Base:   entity.Base{ID: uuid.NewString()},
			PoolID: req.PoolID,
			Token:  req.Token,
			Amount: amount,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot append prize package: %v", err)
			return nil, errorx.Unknown
		}
	}

	count := int64(len(req.Amounts))
	if err := d.poolRepo.AddPrizeCount(ctx, req.PoolID, count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot increment prize count: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolPrizesUpdatedEvent, map[string]any{"pool_id": req.PoolID})

	return &model.AddMultipleFungiblePrizesResponse{StartPosition: startPosition, Count: count}, nil
}

func (d *prizeDomain) RemovePrizes(
	ctx context.Context, req *model.RemovePrizesRequest,
) (*model.RemovePrizesResponse, error) {
	if err := d.verifier.Verify(ctx, req.PoolID); err != nil {
		return nil, err
	}

	caller := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if !pool.Closed {
		return nil, errorx.New(errorx.BadRequest,
			"Close pool %d before removing prizes", req.PoolID)
	}

	pkg, err := d.prizeRepo.TakeAt(ctx, req.PoolID, req.Position)
	if err != nil {
		return nil, errorx.New(errorx.BadParameters, "No prize at position %d", req.Position)
	}

	if err := d.poolRepo.AddPrizeCount(ctx, req.PoolID, -1); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrement prize count: %v", err)
		return nil, errorx.Unknown
	}

	// Refund the escrowed assets to the caller.
	if err := payOut(ctx, d.ledgerRepo, caller, pkg.Token, pkg.Amount); err != nil {
		return nil, err
	}

	contract := contractAddress(ctx)
	for i, token := range pkg.NFTTokens {
		for _, serial := range pkg.NFTSerials[i] {
			if err := d.ledgerRepo.UpdateSerialOwner(ctx, token, serial, contract, caller); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot return serial %d of %s: %v", serial, token, err)
				return nil, errorx.Unknown
			}
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolPrizesUpdatedEvent, map[string]any{"pool_id": req.PoolID})

	return &model.RemovePrizesResponse{Removed: convertPrizePackage(pkg)}, nil
}

func (d *prizeDomain) GetPrizes(
	ctx context.Context, req *model.GetPrizesRequest,
) (*model.GetPrizesResponse, error) {
	if _, err := getPool(ctx, d.poolRepo, req.PoolID); err != nil {
		return nil, err
	}

	prizes, err := d.prizeRepo.ListByPool(ctx, req.PoolID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list prizes: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetPrizesResponse{Prizes: make([]model.PrizePackage, 0, len(prizes))}
	for i := range prizes {
		resp.Prizes = append(resp.Prizes, convertPrizePackage(&prizes[i]))
	}

	return resp, nil
}
