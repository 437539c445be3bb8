package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/ethutil"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PoolDomain interface {
	CreatePool(context.Context, *model.CreatePoolRequest) (*model.CreatePoolResponse, error)
	GetPool(context.Context, *model.GetPoolRequest) (*model.GetPoolResponse, error)
	PausePool(context.Context, *model.PausePoolRequest) (*model.PausePoolResponse, error)
	UnpausePool(context.Context, *model.UnpausePoolRequest) (*model.UnpausePoolResponse, error)
	ClosePool(context.Context, *model.ClosePoolRequest) (*model.ClosePoolResponse, error)
	SetPoolEntryCaps(context.Context, *model.SetPoolEntryCapsRequest) (*model.SetPoolEntryCapsResponse, error)
}

type poolDomain struct {
	poolRepo      repository.PoolRepository
	adminRepo     repository.AdminRepository
	stateRepo     repository.ContractStateRepository
	ledgerRepo    repository.LedgerRepository
	proceedsRepo  repository.ProceedsRepository
	adminVerifier *common.AdminVerifier
}

func NewPoolDomain(
	poolRepo repository.PoolRepository,
	adminRepo repository.AdminRepository,
	stateRepo repository.ContractStateRepository,
	ledgerRepo repository.LedgerRepository,
	proceedsRepo repository.ProceedsRepository,
	adminVerifier *common.AdminVerifier,
) *poolDomain {
	return &poolDomain{
		poolRepo:      poolRepo,
		adminRepo:     adminRepo,
		stateRepo:     stateRepo,
		ledgerRepo:    ledgerRepo,
		proceedsRepo:  proceedsRepo,
		adminVerifier: adminVerifier,
	}
}

func validateCreatePool(req *model.CreatePoolRequest) error {
	switch {
	case req.Name == "":
		return errorx.New(errorx.BadParameters, "Pool name must not be empty")
	case req.TicketCID == "" || req.WinCID == "":
		return errorx.New(errorx.BadParameters, "Ticket and win CIDs must not be empty")
	case req.EntryFee <= 0:
		return errorx.New(errorx.BadParameters, "Entry fee must be positive")
	case req.Duration <= 0:
		return errorx.New(errorx.BadParameters, "Duration must be positive")
	case req.MinEntries <= 0:
		return errorx.New(errorx.BadParameters, "Min entries must be positive")
	case req.MaxEntries < req.MinEntries:
		return errorx.New(errorx.BadParameters, "Max entries must not be below min entries")
	case req.WinRateThreshold < 0 || req.WinRateThreshold > entity.WinRateScale:
		return errorx.New(errorx.BadParameters, "Win rate threshold out of range")
	case len(req.Royalties) > entity.MaxRoyalties:
		return errorx.New(errorx.BadParameters, "At most %d royalties", entity.MaxRoyalties)
	}

	var totalBps int64
	for _, royalty := range req.Royalties {
		if royalty.Bps <= 0 {
			return errorx.New(errorx.BadParameters, "Royalty bps must be positive")
		}

		totalBps += royalty.Bps
	}

	if totalBps > entity.BpsScale {
		return errorx.New(errorx.BadParameters, "Royalties exceed %d bps", entity.BpsScale)
	}

	return nil
}

func (d *poolDomain) CreatePool(
	ctx context.Context, req *model.CreatePoolRequest,
) (*model.CreatePoolResponse, error) {
	if err := validateCreatePool(req); err != nil {
		return nil, err
	}

	caller := xcontext.RequestUserID(ctx)
	isAdmin, err := d.adminRepo.IsAdmin(ctx, caller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check admin of %s: %v", caller, err)
		return nil, errorx.Unknown
	}

	if !isAdmin {
		if err := requireNotPaused(ctx, d.stateRepo); err != nil {
			return nil, err
		}
	}

	if !entity.IsHbar(req.FeeToken) {
		if _, err := d.ledgerRepo.GetTokenClass(ctx, req.FeeToken); err != nil {
			return nil, errorx.New(errorx.BadParameters, "Unknown fee token %s", req.FeeToken)
		}
	}

	state, err := d.stateRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contract state: %v", err)
		return nil, errorx.Unknown
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	var refund int64
	if !isAdmin {
		refund, err = collectHbar(ctx, d.ledgerRepo, caller, req.PayableAmount, state.CreationFeeHbar)
		if err != nil {
			return nil, err
		}

		lazyToken := xcontext.Configs(ctx).Lotto.LazyToken
		if err := collectFungible(ctx, d.ledgerRepo, caller, lazyToken, state.CreationFeeLazy); err != nil {
			return nil, err
		}

		if state.CreationFeeHbar > 0 {
			if err := d.proceedsRepo.AddPlatformBalance(ctx, entity.HbarAddress, state.CreationFeeHbar); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot record hbar creation fee: %v", err)
				return nil, errorx.Unknown
			}
		}

		if state.CreationFeeLazy > 0 {
			if err := d.proceedsRepo.AddPlatformBalance(ctx, lazyToken, state.CreationFeeLazy); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot record lazy creation fee: %v", err)
				return nil, errorx.Unknown
			}
		}
	}

	royalties := make(entity.Array[entity.Royalty], 0, len(req.Royalties))
	for _, royalty := range req.Royalties {
		royalties = append(royalties, entity.Royalty{Recipient: royalty.Recipient, Bps: royalty.Bps})
	}

	ticketToken, err := d.createTicketCollection(ctx, req, royalties)
	if err != nil {
		return nil, err
	}

	pool := &entity.Pool{
		Name:             req.Name,
		Symbol:           req.Symbol,
		Memo:             req.Memo,
		TicketCID:        req.TicketCID,
		WinCID:           req.WinCID,
		WinRateThreshold: req.WinRateThreshold,
		EntryFee:         req.EntryFee,
		FeeToken:         req.FeeToken,
		TicketToken:      ticketToken,
		Royalties:        royalties,
		IsGlobal:         isAdmin,
		OwnerAddress:     caller,

		PlatformPercentage: state.PlatformPercentage,

		Duration:   req.Duration,
		MinEntries: req.MinEntries,
		MaxEntries: req.MaxEntries,

		MaxTicketsPerBuy:  req.MaxTicketsPerBuy,
		MaxTicketsPerUser: req.MaxTicketsPerUser,
	}

	if err := d.poolRepo.Create(ctx, pool); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create pool: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolCreatedEvent, map[string]any{
		"pool_id":      pool.ID,
		"name":         pool.Name,
		"fee_token":    pool.FeeToken,
		"entry_fee":    pool.EntryFee,
		"ticket_token": pool.TicketToken,
		"refund":       refund,
	})

	return &model.CreatePoolResponse{PoolID: pool.ID, TicketToken: ticketToken}, nil
}

// createTicketCollection mints the pool's dedicated NFT class. Every ticket
// serial and every prize bearer serial belongs to it.
func (d *poolDomain) createTicketCollection(
	ctx context.Context, req *model.CreatePoolRequest, royalties entity.Array[entity.Royalty],
) (string, error) {
	address, err := ethutil.NewRandomAddress()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate token address: %v", err)
		return "", errorx.Unknown
	}

	class := &entity.TokenClass{
		Base:      entity.Base{ID: uuid.NewString()},
		Address:   address,
		Type:      entity.TokenTypeNonFungible,
		Name:      req.Name,
		Symbol:    req.Symbol,
		Memo:      req.Memo,
		Treasury:  contractAddress(ctx),
		Royalties: royalties,
	}

	if err := d.ledgerRepo.CreateTokenClass(ctx, class); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create ticket collection: %v", err)
		return "", errorx.New(errorx.FailedNFTCreate, "Cannot create ticket collection")
	}

	return class.Address, nil
}

func (d *poolDomain) GetPool(
	ctx context.Context, req *model.GetPoolRequest,
) (*model.GetPoolResponse, error) {
	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	return &model.GetPoolResponse{Pool: convertPool(pool)}, nil
}

// verifyPoolController allows the pool owner and admins.
func (d *poolDomain) verifyPoolController(ctx context.Context, pool *entity.Pool) error {
	if pool.OwnerAddress == xcontext.RequestUserID(ctx) {
		return nil
	}

	return d.adminVerifier.Verify(ctx)
}

func (d *poolDomain) PausePool(
	ctx context.Context, req *model.PausePoolRequest,
) (*model.PausePoolResponse, error) {
	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyPoolController(ctx, pool); err != nil {
		return nil, err
	}

	if pool.Closed {
		return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is closed", req.PoolID)
	}

	if err := d.poolRepo.SetPaused(ctx, req.PoolID, true); err != nil {
		return nil, errorx.New(errorx.PoolOnPause, "Pool %d is already paused", req.PoolID)
	}

	common.Emit(ctx, common.PoolPausedEvent, map[string]any{
		"by": xcontext.RequestUserID(ctx), "pool_id": req.PoolID,
	})

	return &model.PausePoolResponse{}, nil
}

func (d *poolDomain) UnpausePool(
	ctx context.Context, req *model.UnpausePoolRequest,
) (*model.UnpausePoolResponse, error) {
	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyPoolController(ctx, pool); err != nil {
		return nil, err
	}

	if pool.Closed {
		return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is closed", req.PoolID)
	}

	if err := d.poolRepo.SetPaused(ctx, req.PoolID, false); err != nil {
		return nil, errorx.New(errorx.BadRequest, "Pool %d is not paused", req.PoolID)
	}

	common.Emit(ctx, common.PoolUnpausedEvent, map[string]any{
		"by": xcontext.RequestUserID(ctx), "pool_id": req.PoolID,
	})

	return &model.UnpausePoolResponse{}, nil
}

func (d *poolDomain) SetPoolEntryCaps(
	ctx context.Context, req *model.SetPoolEntryCapsRequest,
) (*model.SetPoolEntryCapsResponse, error) {
	if req.MaxTicketsPerBuy < 0 || req.MaxTicketsPerUser < 0 {
		return nil, errorx.New(errorx.BadParameters, "Entry caps cannot be negative")
	}

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyPoolController(ctx, pool); err != nil {
		return nil, err
	}

	if err := d.poolRepo.SetEntryCaps(
		ctx, req.PoolID, req.MaxTicketsPerBuy, req.MaxTicketsPerUser,
	); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is closed", req.PoolID)
		}

		xcontext.Logger(ctx).Errorf("Cannot update entry caps: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.PoolEntryCapsSetEvent, map[string]any{
		"by":                   xcontext.RequestUserID(ctx),
		"pool_id":              req.PoolID,
		"max_tickets_per_buy":  req.MaxTicketsPerBuy,
		"max_tickets_per_user": req.MaxTicketsPerUser,
	})

	return &model.SetPoolEntryCapsResponse{}, nil
}

func (d *poolDomain) ClosePool(
	ctx context.Context, req *model.ClosePoolRequest,
) (*model.ClosePoolResponse, error) {
	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.verifyPoolController(ctx, pool); err != nil {
		return nil, err
	}

	if pool.Closed {
		return nil, errorx.New(errorx.PoolIsClosed, "Pool %d is already closed", req.PoolID)
	}

	if err := d.poolRepo.Close(ctx, req.PoolID); err != nil {
		return nil, errorx.New(errorx.EntriesOutstanding,
			"Pool %d still has unrolled tickets", req.PoolID)
	}

	common.Emit(ctx, common.PoolClosedEvent, map[string]any{
		"by": xcontext.RequestUserID(ctx), "pool_id": req.PoolID,
	})

	return &model.ClosePoolResponse{}, nil
}
