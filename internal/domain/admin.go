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

type AdminDomain interface {
	AddAdmin(context.Context, *model.AddAdminRequest) (*model.AddAdminResponse, error)
	RemoveAdmin(context.Context, *model.RemoveAdminRequest) (*model.RemoveAdminResponse, error)
	RenounceAdmin(context.Context, *model.RenounceAdminRequest) (*model.RenounceAdminResponse, error)
	ListAdmins(context.Context, *model.ListAdminsRequest) (*model.ListAdminsResponse, error)
	Pause(context.Context, *model.PauseContractRequest) (*model.PauseContractResponse, error)
	Unpause(context.Context, *model.UnpauseContractRequest) (*model.UnpauseContractResponse, error)
	GetContractState(context.Context, *model.GetContractStateRequest) (*model.GetContractStateResponse, error)
	TransferHbar(context.Context, *model.TransferHbarRequest) (*model.TransferHbarResponse, error)
	TransferFungible(context.Context, *model.TransferFungibleRequest) (*model.TransferFungibleResponse, error)
}

type adminDomain struct {
	adminRepo     repository.AdminRepository
	stateRepo     repository.ContractStateRepository
	ledgerRepo    repository.LedgerRepository
	adminVerifier *common.AdminVerifier
}

func NewAdminDomain(
	adminRepo repository.AdminRepository,
	stateRepo repository.ContractStateRepository,
	ledgerRepo repository.LedgerRepository,
	adminVerifier *common.AdminVerifier,
) *adminDomain {
	return &adminDomain{
		adminRepo:     adminRepo,
		stateRepo:     stateRepo,
		ledgerRepo:    ledgerRepo,
		adminVerifier: adminVerifier,
	}
}

func (d *adminDomain) AddAdmin(
	ctx context.Context, req *model.AddAdminRequest,
) (*model.AddAdminResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Address == "" {
		return nil, errorx.New(errorx.BadParameters, "Admin address must not be empty")
	}

	err := d.adminRepo.Create(ctx, &entity.Admin{
		Base:    entity.Base{ID: uuid.NewString()},
		Address: req.Address,
	})
	if err != nil {
		return nil, errorx.New(errorx.AlreadyExists, "%s is already an admin", req.Address)
	}

	common.Emit(ctx, common.AdminAddedEvent, map[string]any{"admin": req.Address})

	return &model.AddAdminResponse{}, nil
}

// removeAdmin drops an admin while keeping the set non-empty.
func (d *adminDomain) removeAdmin(ctx context.Context, address string) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	count, err := d.adminRepo.Count(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count admins: %v", err)
		return errorx.Unknown
	}

	if count <= 1 {
		return errorx.New(errorx.LastAdmin, "Cannot remove the last admin")
	}

	if err := d.adminRepo.Delete(ctx, address); err != nil {
		return errorx.New(errorx.NotFound, "%s is not an admin", address)
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.AdminRemovedEvent, map[string]any{"admin": address})

	return nil
}

func (d *adminDomain) RemoveAdmin(
	ctx context.Context, req *model.RemoveAdminRequest,
) (*model.RemoveAdminResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.removeAdmin(ctx, req.Address); err != nil {
		return nil, err
	}

	return &model.RemoveAdminResponse{}, nil
}

func (d *adminDomain) RenounceAdmin(
	ctx context.Context, req *model.RenounceAdminRequest,
) (*model.RenounceAdminResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.removeAdmin(ctx, xcontext.RequestUserID(ctx)); err != nil {
		return nil, err
	}

	return &model.RenounceAdminResponse{}, nil
}

func (d *adminDomain) ListAdmins(
	ctx context.Context, req *model.ListAdminsRequest,
) (*model.ListAdminsResponse, error) {
	admins, err := d.adminRepo.List(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list admins: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.ListAdminsResponse{Admins: make([]string, 0, len(admins))}
	for _, admin := range admins {
		resp.Admins = append(resp.Admins, admin.Address)
	}

	return resp, nil
}

func (d *adminDomain) Pause(
	ctx context.Context, req *model.PauseContractRequest,
) (*model.PauseContractResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.stateRepo.Update(ctx, map[string]any{"paused": true}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot pause contract: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.PausedEvent, map[string]any{"by": xcontext.RequestUserID(ctx)})

	return &model.PauseContractResponse{}, nil
}

func (d *adminDomain) Unpause(
	ctx context.Context, req *model.UnpauseContractRequest,
) (*model.UnpauseContractResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.stateRepo.Update(ctx, map[string]any{"paused": false}); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unpause contract: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.UnpausedEvent, map[string]any{"by": xcontext.RequestUserID(ctx)})

	return &model.UnpauseContractResponse{}, nil
}

func (d *adminDomain) GetContractState(
	ctx context.Context, req *model.GetContractStateRequest,
) (*model.GetContractStateResponse, error) {
	state, err := d.stateRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contract state: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetContractStateResponse{
		Paused:             state.Paused,
		CreationFeeHbar:    state.CreationFeeHbar,
		CreationFeeLazy:    state.CreationFeeLazy,
		PlatformPercentage: state.PlatformPercentage,
		BurnPercentageBps:  state.BurnPercentageBps,
	}, nil
}

func (d *adminDomain) TransferHbar(
	ctx context.Context, req *model.TransferHbarRequest,
) (*model.TransferHbarResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Amount <= 0 || req.Receiver == "" {
		return nil, errorx.New(errorx.BadParameters, "Invalid receiver or amount")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := payOut(ctx, d.ledgerRepo, req.Receiver, entity.HbarAddress, req.Amount); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.TransferHbarResponse{}, nil
}

func (d *adminDomain) TransferFungible(
	ctx context.Context, req *model.TransferFungibleRequest,
) (*model.TransferFungibleResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Amount <= 0 || req.Receiver == "" || entity.IsHbar(req.Token) {
		return nil, errorx.New(errorx.BadParameters, "Invalid receiver, token, or amount")
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := payOut(ctx, d.ledgerRepo, req.Receiver, req.Token, req.Amount); err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	return &model.TransferFungibleResponse{}, nil
}
