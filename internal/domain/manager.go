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

type ManagerDomain interface {
	SetCreationFees(context.Context, *model.SetCreationFeesRequest) (*model.SetCreationFeesResponse, error)
	SetPlatformPercentage(context.Context, *model.SetPlatformPercentageRequest) (*model.SetPlatformPercentageResponse, error)
	WithdrawPoolProceeds(context.Context, *model.WithdrawPoolProceedsRequest) (*model.WithdrawPoolProceedsResponse, error)
	WithdrawPlatformFees(context.Context, *model.WithdrawPlatformFeesRequest) (*model.WithdrawPlatformFeesResponse, error)
	SetPoolPrizeManager(context.Context, *model.SetPoolPrizeManagerRequest) (*model.SetPoolPrizeManagerResponse, error)
	AddGlobalPrizeManager(context.Context, *model.AddGlobalPrizeManagerRequest) (*model.AddGlobalPrizeManagerResponse, error)
	RemoveGlobalPrizeManager(context.Context, *model.RemoveGlobalPrizeManagerRequest) (*model.RemoveGlobalPrizeManagerResponse, error)
	CanAddPrizes(context.Context, *model.CanAddPrizesRequest) (*model.CanAddPrizesResponse, error)
	TransferPoolOwnership(context.Context, *model.TransferPoolOwnershipRequest) (*model.TransferPoolOwnershipResponse, error)
	GetGlobalPools(context.Context, *model.GetGlobalPoolsRequest) (*model.GetGlobalPoolsResponse, error)
	GetCommunityPools(context.Context, *model.GetCommunityPoolsRequest) (*model.GetCommunityPoolsResponse, error)
	GetUserPools(context.Context, *model.GetUserPoolsRequest) (*model.GetUserPoolsResponse, error)
}

type managerDomain struct {
	poolRepo      repository.PoolRepository
	adminRepo     repository.AdminRepository
	stateRepo     repository.ContractStateRepository
	proceedsRepo  repository.ProceedsRepository
	ledgerRepo    repository.LedgerRepository
	adminVerifier *common.AdminVerifier
}

func NewManagerDomain(
	poolRepo repository.PoolRepository,
	adminRepo repository.AdminRepository,
	stateRepo repository.ContractStateRepository,
	proceedsRepo repository.ProceedsRepository,
	ledgerRepo repository.LedgerRepository,
	adminVerifier *common.AdminVerifier,
) *managerDomain {
	return &managerDomain{
		poolRepo:      poolRepo,
		adminRepo:     adminRepo,
		stateRepo:     stateRepo,
		proceedsRepo:  proceedsRepo,
		ledgerRepo:    ledgerRepo,
		adminVerifier: adminVerifier,
	}
}

func (d *managerDomain) SetCreationFees(
	ctx context.Context, req *model.SetCreationFeesRequest,
) (*model.SetCreationFeesResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.FeeHbar < 0 || req.FeeLazy < 0 {
		return nil, errorx.New(errorx.BadParameters, "Creation fees must not be negative")
	}

	err := d.stateRepo.Update(ctx, map[string]any{
		"creation_fee_hbar": req.FeeHbar,
		"creation_fee_lazy": req.FeeLazy,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update creation fees: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.CreationFeesSetEvent, map[string]any{
		"by": xcontext.RequestUserID(ctx), "fee_hbar": req.FeeHbar, "fee_lazy": req.FeeLazy,
	})

	return &model.SetCreationFeesResponse{}, nil
}

func (d *managerDomain) SetPlatformPercentage(
	ctx context.Context, req *model.SetPlatformPercentageRequest,
) (*model.SetPlatformPercentageResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	maxPercentage := xcontext.Configs(ctx).Lotto.MaxPlatformPercentage
	if req.Percentage < 0 || req.Percentage > maxPercentage {
		return nil, errorx.New(errorx.BadParameters,
			"Platform percentage must be between 0 and %d", maxPercentage)
	}

	err := d.stateRepo.Update(ctx, map[string]any{"platform_percentage": req.Percentage})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update platform percentage: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.PlatformPercentageSet, map[string]any{
		"by": xcontext.RequestUserID(ctx), "percentage": req.Percentage,
	})

	return &model.SetPlatformPercentageResponse{}, nil
}

func (d *managerDomain) WithdrawPoolProceeds(
	ctx context.Context, req *model.WithdrawPoolProceedsRequest,
) (*model.WithdrawPoolProceedsResponse, error) {
	caller := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.OwnerAddress != caller {
		if err := d.adminVerifier.Verify(ctx); err != nil {
			return nil, err
		}
	}

	released, err := d.proceedsRepo.WithdrawPoolProceeds(ctx, req.PoolID, req.Token)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot withdraw pool proceeds: %v", err)
		return nil, errorx.Unknown
	}

	if released == 0 {
		return &model.WithdrawPoolProceedsResponse{}, nil
	}

	// The platform share frozen at creation time is diverted here, not at
	// entry time.
	platformShare := released * pool.PlatformPercentage / 100
	ownerShare := released - platformShare

	if platformShare > 0 {
		if err := d.proceedsRepo.AddPlatformBalance(ctx, req.Token, platformShare); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot divert platform share: %v", err)
			return nil, errorx.Unknown
		}
	}

	if err := payOut(ctx, d.ledgerRepo, pool.OwnerAddress, req.Token, ownerShare); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.WithdrawPoolProceedsResponse{
		OwnerAmount:    ownerShare,
		PlatformAmount: platformShare,
	}, nil
}

func (d *managerDomain) WithdrawPlatformFees(
	ctx context.Context, req *model.WithdrawPlatformFeesRequest,
) (*model.WithdrawPlatformFeesResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	caller := xcontext.RequestUserID(ctx)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	amount, err := d.proceedsRepo.DrainPlatformBalance(ctx, req.Token)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot drain platform balance: %v", err)
		return nil, errorx.Unknown
	}

	if amount == 0 {
		return &model.WithdrawPlatformFeesResponse{}, nil
	}

	if err := payOut(ctx, d.ledgerRepo, caller, req.Token, amount); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.WithdrawPlatformFeesResponse{Amount: amount}, nil
}

func (d *managerDomain) SetPoolPrizeManager(
	ctx context.Context, req *model.SetPoolPrizeManagerRequest,
) (*model.SetPoolPrizeManagerResponse, error) {
	caller := xcontext.RequestUserID(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.OwnerAddress != caller {
		if err := d.adminVerifier.Verify(ctx); err != nil {
			return nil, err
		}
	}

	if err := d.poolRepo.SetPrizeManager(ctx, req.PoolID, req.Manager); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot set prize manager: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.PrizeManagerChangedEvent, map[string]any{
		"pool_id": req.PoolID, "manager": req.Manager,
	})

	return &model.SetPoolPrizeManagerResponse{}, nil
}

func (d *managerDomain) AddGlobalPrizeManager(
	ctx context.Context, req *model.AddGlobalPrizeManagerRequest,
) (*model.AddGlobalPrizeManagerResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Manager == "" {
		return nil, errorx.New(errorx.BadParameters, "Manager address must not be empty")
	}

	err := d.stateRepo.AddGlobalPrizeManager(ctx, &entity.GlobalPrizeManager{
		Base:    entity.Base{ID: uuid.NewString()},
		Address: req.Manager,
	})
	if err != nil {
		return nil, errorx.New(errorx.AlreadyExists, "%s is already a global prize manager", req.Manager)
	}

	common.Emit(ctx, common.GlobalPrizeManagerAdded, map[string]any{"manager": req.Manager})

	return &model.AddGlobalPrizeManagerResponse{}, nil
}

func (d *managerDomain) RemoveGlobalPrizeManager(
	ctx context.Context, req *model.RemoveGlobalPrizeManagerRequest,
) (*model.RemoveGlobalPrizeManagerResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.stateRepo.RemoveGlobalPrizeManager(ctx, req.Manager); err != nil {
		return nil, errorx.New(errorx.NotFound, "%s is not a global prize manager", req.Manager)
	}

	common.Emit(ctx, common.GlobalPrizeManagerRemoved, map[string]any{"manager": req.Manager})

	return &model.RemoveGlobalPrizeManagerResponse{}, nil
}

// CanAddPrizes is the authoritative check behind the prize-add gate.
func (d *managerDomain) CanAddPrizes(
	ctx context.Context, req *model.CanAddPrizesRequest,
) (*model.CanAddPrizesResponse, error) {
	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.OwnerAddress == req.Address || pool.PrizeManager == req.Address {
		return &model.CanAddPrizesResponse{Allowed: true}, nil
	}

	isAdmin, err := d.adminRepo.IsAdmin(ctx, req.Address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check admin: %v", err)
		return nil, errorx.Unknown
	}

	if isAdmin {
		return &model.CanAddPrizesResponse{Allowed: true}, nil
	}

	isGlobal, err := d.stateRepo.IsGlobalPrizeManager(ctx, req.Address)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check global prize manager: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CanAddPrizesResponse{Allowed: isGlobal}, nil
}

func (d *managerDomain) TransferPoolOwnership(
	ctx context.Context, req *model.TransferPoolOwnershipRequest,
) (*model.TransferPoolOwnershipResponse, error) {
	if req.NewOwner == "" {
		return nil, errorx.New(errorx.BadParameters, "New owner must not be empty")
	}

	caller := xcontext.RequestUserID(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if pool.IsGlobal {
		return nil, errorx.New(errorx.CannotTransferGlobalPools,
			"Pool %d is a global pool", req.PoolID)
	}

	if pool.OwnerAddress != caller {
		if err := d.adminVerifier.Verify(ctx); err != nil {
			return nil, err
		}
	}

	if err := d.poolRepo.SetOwner(ctx, req.PoolID, req.NewOwner); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot transfer pool ownership: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.PoolOwnerChangedEvent, map[string]any{
		"pool_id": req.PoolID, "old_owner": pool.OwnerAddress, "new_owner": req.NewOwner,
	})

	return &model.TransferPoolOwnershipResponse{}, nil
}

// paginate clamps list windows to the configured api limits.
func paginate(ctx context.Context, offset, limit int) (int, int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if offset < 0 || limit < 0 {
		return 0, 0, errorx.New(errorx.BadParameters, "Invalid offset or limit")
	}

	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if apiCfg.MaxLimit > 0 && limit > apiCfg.MaxLimit {
		return 0, 0, errorx.New(errorx.BadParameters, "Exceeded the maximum limit of %d", apiCfg.MaxLimit)
	}

	return offset, limit, nil
}

func convertPools(pools []entity.Pool) []model.Pool {
	result := make([]model.Pool, 0, len(pools))
	for i := range pools {
		result = append(result, convertPool(&pools[i]))
	}

	return result
}

func (d *managerDomain) GetGlobalPools(
	ctx context.Context, req *model.GetGlobalPoolsRequest,
) (*model.GetGlobalPoolsResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	pools, err := d.poolRepo.ListGlobal(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list global pools: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetGlobalPoolsResponse{Pools: convertPools(pools)}, nil
}

func (d *managerDomain) GetCommunityPools(
	ctx context.Context, req *model.GetCommunityPoolsRequest,
) (*model.GetCommunityPoolsResponse, error) {
	offset, limit, err := paginate(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	pools, err := d.poolRepo.ListCommunity(ctx, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list community pools: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetCommunityPoolsResponse{Pools: convertPools(pools)}, nil
}

func (d *managerDomain) GetUserPools(
	ctx context.Context, req *model.GetUserPoolsRequest,
) (*model.GetUserPoolsResponse, error) {
	owner := req.Owner
	if owner == "" {
		owner = xcontext.RequestUserID(ctx)
	}

	pools, err := d.poolRepo.ListByOwner(ctx, owner)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list user pools: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUserPoolsResponse{Pools: convertPools(pools)}, nil
}
