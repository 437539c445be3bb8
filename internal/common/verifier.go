package common

import (
	"context"
	"errors"

	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// AdminVerifier gates contract-owner operations. The caller address comes
// from the access token via xcontext.RequestUserID.
type AdminVerifier struct {
	adminRepo repository.AdminRepository
}

func NewAdminVerifier(adminRepo repository.AdminRepository) *AdminVerifier {
	return &AdminVerifier{adminRepo: adminRepo}
}

func (verifier *AdminVerifier) Verify(ctx context.Context) error {
	address := xcontext.RequestUserID(ctx)
	ok, err := verifier.adminRepo.IsAdmin(ctx, address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check admin of %s: %v", address, err)
		return errorx.Unknown
	}

	if !ok {
		return errorx.New(errorx.NotAdmin, "Only admin can call this")
	}

	return nil
}

// PrizeManagerVerifier decides who may add or remove prizes of a pool: an
// admin, the pool owner, the pool's dedicated prize manager, or a global
// prize manager.
type PrizeManagerVerifier struct {
	adminRepo repository.AdminRepository
	poolRepo  repository.PoolRepository
	stateRepo repository.ContractStateRepository
}

func NewPrizeManagerVerifier(
	adminRepo repository.AdminRepository,
	poolRepo repository.PoolRepository,
	stateRepo repository.ContractStateRepository,
) *PrizeManagerVerifier {
	return &PrizeManagerVerifier{
		adminRepo: adminRepo,
		poolRepo:  poolRepo,
		stateRepo: stateRepo,
	}
}

func (verifier *PrizeManagerVerifier) Verify(ctx context.Context, poolID int64) error {
	address := xcontext.RequestUserID(ctx)

	pool, err := verifier.poolRepo.GetByID(ctx, poolID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.LottoPoolNotFound, "Not found pool %d", poolID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get pool %d: %v", poolID, err)
		return errorx.Unknown
	}

	if pool.OwnerAddress == address || pool.PrizeManager == address {
		return nil
	}

	isAdmin, err := verifier.adminRepo.IsAdmin(ctx, address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check admin of %s: %v", address, err)
		return errorx.Unknown
	}

	if isAdmin {
		return nil
	}

	isGlobal, err := verifier.stateRepo.IsGlobalPrizeManager(ctx, address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check global prize manager of %s: %v", address, err)
		return errorx.Unknown
	}

	if isGlobal {
		return nil
	}

	return errorx.New(errorx.NotAuthorized, "Not allowed to manage prizes of pool %d", poolID)
}
