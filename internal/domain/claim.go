package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/client"
	"github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ClaimDomain interface {
	GetPendingPrizes(context.Context, *model.GetPendingPrizesRequest) (*model.GetPendingPrizesResponse, error)
	GetPendingPrize(context.Context, *model.GetPendingPrizeRequest) (*model.GetPendingPrizeResponse, error)
	GetPendingPrizeByNFT(context.Context, *model.GetPendingPrizeByNFTRequest) (*model.GetPendingPrizeByNFTResponse, error)
	ClaimPrize(context.Context, *model.ClaimPrizeRequest) (*model.ClaimPrizeResponse, error)
	ClaimAllPrizes(context.Context, *model.ClaimAllPrizesRequest) (*model.ClaimAllPrizesResponse, error)
	RedeemPrizeToNFT(context.Context, *model.RedeemPrizeToNFTRequest) (*model.RedeemPrizeToNFTResponse, error)
	ClaimPrizeFromNFT(context.Context, *model.ClaimPrizeFromNFTRequest) (*model.ClaimPrizeFromNFTResponse, error)
}

type claimDomain struct {
	poolRepo    repository.PoolRepository
	pendingRepo repository.PendingPrizeRepository
	ledgerRepo  repository.LedgerRepository
	stateRepo   repository.ContractStateRepository
	delegates   client.DelegateRegistry
	locker      *common.QueueLocker
}

func NewClaimDomain(
	poolRepo repository.PoolRepository,
	pendingRepo repository.PendingPrizeRepository,
	ledgerRepo repository.LedgerRepository,
	stateRepo repository.ContractStateRepository,
	delegates client.DelegateRegistry,
	locker *common.QueueLocker,
) *claimDomain {
	return &claimDomain{
		poolRepo:    poolRepo,
		pendingRepo: pendingRepo,
		ledgerRepo:  ledgerRepo,
		stateRepo:   stateRepo,
		delegates:   delegates,
		locker:      locker,
	}
}

func convertPendingPrize(pending *entity.PendingPrize) (model.PendingPrize, error) {
	prize, err := common.DecodePrizeSnapshot(pending.Snapshot)
	if err != nil {
		return model.PendingPrize{}, err
	}

	return model.PendingPrize{
		PoolID:       pending.PoolID,
		Position:     pending.Position,
		Prize:        prize,
		AsNFT:        pending.AsNFT,
		BearerToken:  pending.BearerToken,
		BearerSerial: pending.BearerSerial,
	}, nil
}

func (d *claimDomain) GetPendingPrizes(
	ctx context.Context, req *model.GetPendingPrizesRequest,
) (*model.GetPendingPrizesResponse, error) {
	user := req.User
	if user == "" {
		user = xcontext.RequestUserID(ctx)
	}

	pendings, err := d.pendingRepo.ListByUser(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list pending prizes: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetPendingPrizesResponse{Prizes: make([]model.PendingPrize, 0, len(pendings))}
	for i := range pendings {
		prize, err := convertPendingPrize(&pendings[i])
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
			return nil, errorx.Unknown
		}

		resp.Prizes = append(resp.Prizes, prize)
	}

	return resp, nil
}

func (d *claimDomain) GetPendingPrize(
	ctx context.Context, req *model.GetPendingPrizeRequest,
) (*model.GetPendingPrizeResponse, error) {
	user := req.User
	if user == "" {
		user = xcontext.RequestUserID(ctx)
	}

	pending, err := d.pendingRepo.GetAt(ctx, user, req.Position)
	if err != nil {
		return nil, errorx.New(errorx.InvalidPrizeIndex, "No pending prize at %d", req.Position)
	}

	prize, err := convertPendingPrize(pending)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetPendingPrizeResponse{Prize: prize}, nil
}

func (d *claimDomain) GetPendingPrizeByNFT(
	ctx context.Context, req *model.GetPendingPrizeByNFTRequest,
) (*model.GetPendingPrizeByNFTResponse, error) {
	pending, err := d.pendingRepo.GetByBearer(ctx, req.Token, req.Serial)
	if err != nil {
		return nil, errorx.New(errorx.InvalidTicketNFT,
			"Serial %d of %s carries no prize", req.Serial, req.Token)
	}

	prize, err := convertPendingPrize(pending)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetPendingPrizeByNFTResponse{Prize: prize}, nil
}

// settlePrize pays the snapshot out to the recipient. Fungible payouts are
// reduced by the burn percentage unless the recipient holds the exempt
// collection; hbar and NFT components are never burned.
func (d *claimDomain) settlePrize(
	ctx context.Context, recipient string, prize model.PrizePackage,
) (burned int64, err error) {
	if prize.Amount > 0 && !entity.IsHbar(prize.Token) {
		state, err := d.stateRepo.Get(ctx)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get contract state: %v", err)
			return 0, errorx.Unknown
		}

		if state.BurnPercentageBps > 0 {
			exempt := false
			if state.BurnExemptToken != "" {
				exempt, err = d.delegates.HoldsOrDelegated(ctx, recipient, state.BurnExemptToken)
				if err != nil {
					xcontext.Logger(ctx).Errorf("Cannot check burn exemption: %v", err)
					return 0, errorx.Unknown
				}
			}

			if !exempt {
				burned = prize.Amount * state.BurnPercentageBps / entity.BpsScale
			}
		}
	}

	if err := payOut(ctx, d.ledgerRepo, recipient, prize.Token, prize.Amount-burned); err != nil {
		return 0, err
	}

	if burned > 0 {
		if err := burnFungible(ctx, d.ledgerRepo, prize.Token, burned); err != nil {
			return 0, err
		}
	}

	contract := contractAddress(ctx)
	for i, token := range prize.NFTTokens {
		associated, err := d.ledgerRepo.HasAssociation(ctx, recipient, token)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
			return 0, errorx.Unknown
		}

		if !associated {
			return 0, errorx.New(errorx.AssociationFailed,
				"Associate with %s before claiming", token)
		}

		for _, serial := range prize.NFTSerials[i] {
			if err := d.ledgerRepo.UpdateSerialOwner(ctx, token, serial, contract, recipient); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot move serial %d of %s: %v", serial, token, err)
				return 0, errorx.Unknown
			}
		}
	}

	return burned, nil
}

func (d *claimDomain) ClaimPrize(
	ctx context.Context, req *model.ClaimPrizeRequest,
) (*model.ClaimPrizeResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(user)
	defer d.locker.Unlock(user)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pending, err := d.pendingRepo.TakeAt(ctx, user, req.Position)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidPrizeIndex, "No pending prize at %d", req.Position)
		}

		xcontext.Logger(ctx).Errorf("Cannot take pending prize: %v", err)
		return nil, errorx.Unknown
	}

	prize, err := common.DecodePrizeSnapshot(pending.Snapshot)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
		return nil, errorx.Unknown
	}

	burned, err := d.settlePrize(ctx, user, prize)
	if err != nil {
		return nil, err
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PrizeClaimedEvent, map[string]any{
		"user": user, "pool_id": pending.PoolID, "position": req.Position, "burned": burned,
	})

	prize.Amount -= burned
	return &model.ClaimPrizeResponse{Paid: prize, Burned: burned}, nil
}

func (d *claimDomain) ClaimAllPrizes(
	ctx context.Context, req *model.ClaimAllPrizesRequest,
) (*model.ClaimAllPrizesResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(user)
	defer d.locker.Unlock(user)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	count, err := d.pendingRepo.Count(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count pending prizes: %v", err)
		return nil, errorx.Unknown
	}

	if count == 0 {
		return nil, errorx.New(errorx.NoPendingPrizes, "Nothing to claim")
	}

	var claimed, totalBurned int64
	for i := int64(0); i < count; i++ {
		// Taking position zero repeatedly walks the whole queue as the
		// tail keeps compacting down.
		pending, err := d.pendingRepo.TakeAt(ctx, user, 0)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot take pending prize: %v", err)
			return nil, errorx.Unknown
		}

		prize, err := common.DecodePrizeSnapshot(pending.Snapshot)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
			return nil, errorx.Unknown
		}

		burned, err := d.settlePrize(ctx, user, prize)
		if err != nil {
			return nil, err
		}

		claimed++
		totalBurned += burned
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PrizeClaimedEvent, map[string]any{
		"user": user, "claimed": claimed, "burned": totalBurned,
	})

	return &model.ClaimAllPrizesResponse{Claimed: claimed, Burned: totalBurned}, nil
}

func (d *claimDomain) RedeemPrizeToNFT(
	ctx context.Context, req *model.RedeemPrizeToNFTRequest,
) (*model.RedeemPrizeToNFTResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	if len(req.Positions) == 0 {
		return nil, errorx.New(errorx.BadParameters, "No positions given")
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(user)
	defer d.locker.Unlock(user)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// Resolve the rows up front; positions shift as the queue compacts, so
	// every conversion reloads its row for the current position.
	targets := make([]*entity.PendingPrize, 0, len(req.Positions))
	seen := make(map[string]bool, len(req.Positions))
	for _, position := range req.Positions {
		pending, err := d.pendingRepo.GetAt(ctx, user, position)
		if err != nil {
			return nil, errorx.New(errorx.InvalidPrizeIndex, "No pending prize at %d", position)
		}

		if seen[pending.ID] {
			return nil, errorx.New(errorx.BadParameters, "Duplicate position %d", position)
		}

		seen[pending.ID] = true
		targets = append(targets, pending)
	}

	var bearerToken string
	serials := make([]int64, 0, len(targets))
	for _, target := range targets {
		pool, err := getPool(ctx, d.poolRepo, target.PoolID)
		if err != nil {
			return nil, err
		}

		if bearerToken == "" {
			bearerToken = pool.TicketToken
		} else if bearerToken != pool.TicketToken {
			return nil, errorx.New(errorx.BadParameters,
				"All redeemed prizes must come from the same pool")
		}

		serial, err := d.ledgerRepo.NextSerial(ctx, pool.TicketToken)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reserve bearer serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint bearer nft")
		}

		err = d.ledgerRepo.CreateSerial(ctx, &entity.NFTSerial{
			Base:        entity.Base{ID: uuid.NewString()},
			Token:       pool.TicketToken,
			Serial:      serial,
			Owner:       user,
			MetadataCID: pool.WinCID,
			Winning:     true,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mint bearer serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint bearer nft")
		}

		if err := d.ledgerRepo.AddSupply(ctx, pool.TicketToken, 1); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot bump bearer supply: %v", err)
			return nil, errorx.Unknown
		}

		current, err := d.pendingRepo.GetByID(ctx, target.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reload pending prize: %v", err)
			return nil, errorx.Unknown
		}

		_, err = d.pendingRepo.ConvertToBearer(ctx, user, current.Position, pool.TicketToken, serial)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot convert prize to bearer: %v", err)
			return nil, errorx.Unknown
		}

		serials = append(serials, serial)
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PrizeRedeemedToNFTEvent, map[string]any{
		"user": user, "bearer_token": bearerToken, "serials": serials,
	})

	return &model.RedeemPrizeToNFTResponse{BearerToken: bearerToken, BearerSerials: serials}, nil
}

func (d *claimDomain) ClaimPrizeFromNFT(
	ctx context.Context, req *model.ClaimPrizeFromNFTRequest,
) (*model.ClaimPrizeFromNFTResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	if len(req.Serials) == 0 {
		return nil, errorx.New(errorx.BadParameters, "No serials given")
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(user)
	defer d.locker.Unlock(user)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	var claimed, totalBurned int64
	for _, serial := range req.Serials {
		bearer, err := d.ledgerRepo.GetSerial(ctx, req.Token, serial)
		if err != nil {
			return nil, errorx.New(errorx.InvalidTicketNFT, "Unknown serial %d of %s", serial, req.Token)
		}

		if bearer.Owner != user {
			return nil, errorx.New(errorx.NotAuthorized, "Serial %d is not yours", serial)
		}

		pending, err := d.pendingRepo.GetByBearer(ctx, req.Token, serial)
		if err != nil {
			return nil, errorx.New(errorx.InvalidTicketNFT,
				"Serial %d of %s carries no prize", serial, req.Token)
		}

		prize, err := common.DecodePrizeSnapshot(pending.Snapshot)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decode prize snapshot: %v", err)
			return nil, errorx.Unknown
		}

		// The bearer is destroyed first so the claim can never pay twice.
		if err := d.ledgerRepo.WipeSerial(ctx, req.Token, serial); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot wipe bearer serial %d: %v", serial, err)
			return nil, errorx.New(errorx.FailedNFTWipe, "Cannot wipe bearer serial %d", serial)
		}

		if err := d.pendingRepo.DeleteByBearer(ctx, req.Token, serial); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete bearer prize: %v", err)
			return nil, errorx.Unknown
		}

		burned, err := d.settlePrize(ctx, user, prize)
		if err != nil {
			return nil, err
		}

		claimed++
		totalBurned += burned
	}

	xcontext.WithCommitDBTransaction(ctx)

	for _, serial := range req.Serials {
		common.Emit(ctx, common.PrizeNFTWipedForClaim, map[string]any{
			"user": user, "nft_address": req.Token, "serial": serial,
		})
	}

	common.Emit(ctx, common.PrizeClaimedEvent, map[string]any{
		"user": user, "claimed": claimed, "burned": totalBurned,
	})

	return &model.ClaimPrizeFromNFTResponse{Claimed: claimed, Burned: totalBurned}, nil
}
