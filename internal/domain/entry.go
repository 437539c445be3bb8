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
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type EntryDomain interface {
	BuyEntry(context.Context, *model.BuyEntryRequest) (*model.BuyEntryResponse, error)
	BuyAndRollEntry(context.Context, *model.BuyAndRollEntryRequest) (*model.BuyAndRollEntryResponse, error)
	BuyAndRedeemEntry(context.Context, *model.BuyAndRedeemEntryRequest) (*model.BuyAndRedeemEntryResponse, error)
	RedeemEntriesToNFT(context.Context, *model.RedeemEntriesToNFTRequest) (*model.RedeemEntriesToNFTResponse, error)
	GetUserEntries(context.Context, *model.GetUserEntriesRequest) (*model.GetUserEntriesResponse, error)
}

type entryDomain struct {
	*settler
	ledgerRepo   repository.LedgerRepository
	proceedsRepo repository.ProceedsRepository
	stateRepo    repository.ContractStateRepository
}

func NewEntryDomain(
	settler *settler,
	ledgerRepo repository.LedgerRepository,
	proceedsRepo repository.ProceedsRepository,
	stateRepo repository.ContractStateRepository,
) *entryDomain {
	return &entryDomain{
		settler:      settler,
		ledgerRepo:   ledgerRepo,
		proceedsRepo: proceedsRepo,
		stateRepo:    stateRepo,
	}
}

// buyChecks validates an entry purchase against the pool state and caps.
func (d *entryDomain) buyChecks(ctx context.Context, pool *entity.Pool, count int64) error {
	if count <= 0 {
		return errorx.New(errorx.BadParameters, "Count must be positive")
	}

	if pool.Closed {
		return errorx.New(errorx.PoolIsClosed, "Pool %d is closed", pool.ID)
	}

	if pool.Paused {
		return errorx.New(errorx.PoolOnPause, "Pool %d is paused", pool.ID)
	}

	if pool.MaxTicketsPerBuy > 0 && count > pool.MaxTicketsPerBuy {
		return errorx.New(errorx.BadParameters,
			"At most %d tickets per purchase", pool.MaxTicketsPerBuy)
	}

	return nil
}

// payEntryFee settles count entry fees against the pool's fee token and
// records the proceeds. It returns the hbar refund of the call.
func (d *entryDomain) payEntryFee(
	ctx context.Context, user string, pool *entity.Pool, count, payable int64,
) (int64, error) {
	required := pool.EntryFee * count
	var refund int64

	if entity.IsHbar(pool.FeeToken) {
		var err error
		refund, err = collectHbar(ctx, d.ledgerRepo, user, payable, required)
		if err != nil {
			return 0, err
		}
	} else {
		if payable > 0 {
			return 0, errorx.New(errorx.IncorrectFeeToken,
				"Pool %d charges %s, not hbar", pool.ID, pool.FeeToken)
		}

		if err := collectFungible(ctx, d.ledgerRepo, user, pool.FeeToken, required); err != nil {
			return 0, err
		}
	}

	if err := d.proceedsRepo.AddPoolProceeds(ctx, pool.ID, pool.FeeToken, required); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot record pool proceeds: %v", err)
		return 0, errorx.Unknown
	}

	return refund, nil
}

func (d *entryDomain) BuyEntry(
	ctx context.Context, req *model.BuyEntryRequest,
) (*model.BuyEntryResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.buyChecks(ctx, pool, req.Count); err != nil {
		return nil, err
	}

	refund, err := d.payEntryFee(ctx, user, pool, req.Count, req.PayableAmount)
	if err != nil {
		return nil, err
	}

	err = d.entryRepo.Add(ctx, req.PoolID, user, req.Count, pool.MaxTicketsPerUser)
	if err != nil {
		if errors.Is(err, repository.ErrEntryCapReached) {
			return nil, errorx.New(errorx.MaxEntriesReached,
				"At most %d tickets per user", pool.MaxTicketsPerUser)
		}

		xcontext.Logger(ctx).Errorf("Cannot add entries: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.poolRepo.AddOutstanding(ctx, req.PoolID, req.Count, 0); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add outstanding entries: %v", err)
		return nil, errorx.Unknown
	}

	entry, err := d.entryRepo.Get(ctx, req.PoolID, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user entry: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolEnteredEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "count": req.Count,
	})

	return &model.BuyEntryResponse{Entries: entry.Count, Refund: refund}, nil
}

func (d *entryDomain) BuyAndRollEntry(
	ctx context.Context, req *model.BuyAndRollEntryRequest,
) (*model.BuyAndRollEntryResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.buyChecks(ctx, pool, req.Count); err != nil {
		return nil, err
	}

	if err := d.rollChecks(ctx, pool); err != nil {
		return nil, err
	}

	refund, err := d.payEntryFee(ctx, user, pool, req.Count, req.PayableAmount)
	if err != nil {
		return nil, err
	}

	// The purchase still counts against the cumulative cap even though the
	// tickets are consumed immediately.
	err = d.entryRepo.RecordPurchase(ctx, req.PoolID, user, req.Count, pool.MaxTicketsPerUser)
	if err != nil {
		if errors.Is(err, repository.ErrEntryCapReached) {
			return nil, errorx.New(errorx.MaxEntriesReached,
				"At most %d tickets per user", pool.MaxTicketsPerUser)
		}

		xcontext.Logger(ctx).Errorf("Cannot record purchase: %v", err)
		return nil, errorx.Unknown
	}

	processed, wins, startOffset, err := d.settle(ctx, user, pool, req.Count)
	if err != nil {
		return nil, err
	}

	if processed != req.Count {
		// Unrolled remainder falls back to the counter ledger.
		remainder := req.Count - processed
		if err := d.entryRepo.Add(ctx, req.PoolID, user, remainder, 0); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot credit unrolled remainder: %v", err)
			return nil, errorx.Unknown
		}

		if err := d.poolRepo.AddOutstanding(ctx, req.PoolID, remainder, 0); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add outstanding entries: %v", err)
			return nil, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolEnteredEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "count": req.Count,
	})
	common.Emit(ctx, common.TicketRolledEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "count": processed,
	})
	if wins > 0 {
		common.Emit(ctx, common.PrizeWonEvent, map[string]any{
			"user": user, "pool_id": req.PoolID, "wins": wins, "start_offset": startOffset,
		})
	}

	return &model.BuyAndRollEntryResponse{Wins: wins, StartOffset: startOffset, Refund: refund}, nil
}

// mintTickets mints count serials of the pool's ticket collection to user.
func (d *entryDomain) mintTickets(
	ctx context.Context, user string, pool *entity.Pool, count int64,
) ([]int64, error) {
	associated, err := d.ledgerRepo.HasAssociation(ctx, user, pool.TicketToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check association: %v", err)
		return nil, errorx.Unknown
	}

	if !associated {
		return nil, errorx.New(errorx.AssociationFailed,
			"Associate with %s before receiving tickets", pool.TicketToken)
	}

	serials := make([]int64, 0, count)
	for i := int64(0); i < count; i++ {
		serial, err := d.ledgerRepo.NextSerial(ctx, pool.TicketToken)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot reserve ticket serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint ticket")
		}

		err = d.ledgerRepo.CreateSerial(ctx, &entity.NFTSerial{
			Base:        entity.Base{ID: uuid.NewString()},
			Token:       pool.TicketToken,
			Serial:      serial,
			Owner:       user,
			MetadataCID: pool.TicketCID,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot mint ticket serial: %v", err)
			return nil, errorx.New(errorx.FailedNFTMintAndSend, "Cannot mint ticket")
		}

		if err := d.ledgerRepo.AddSupply(ctx, pool.TicketToken, 1); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot bump ticket supply: %v", err)
			return nil, errorx.Unknown
		}

		serials = append(serials, serial)
	}

	return serials, nil
}

func (d *entryDomain) BuyAndRedeemEntry(
	ctx context.Context, req *model.BuyAndRedeemEntryRequest,
) (*model.BuyAndRedeemEntryResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(req.PoolID)
	defer d.locker.Unlock(req.PoolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, req.PoolID)
	if err != nil {
		return nil, err
	}

	if err := d.buyChecks(ctx, pool, req.Count); err != nil {
		return nil, err
	}

	refund, err := d.payEntryFee(ctx, user, pool, req.Count, req.PayableAmount)
	if err != nil {
		return nil, err
	}

	err = d.entryRepo.RecordPurchase(ctx, req.PoolID, user, req.Count, pool.MaxTicketsPerUser)
	if err != nil {
		if errors.Is(err, repository.ErrEntryCapReached) {
			return nil, errorx.New(errorx.MaxEntriesReached,
				"At most %d tickets per user", pool.MaxTicketsPerUser)
		}

		xcontext.Logger(ctx).Errorf("Cannot record purchase: %v", err)
		return nil, errorx.Unknown
	}

	serials, err := d.mintTickets(ctx, user, pool, req.Count)
	if err != nil {
		return nil, err
	}

	if err := d.poolRepo.AddOutstanding(ctx, req.PoolID, 0, req.Count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add outstanding ticket nfts: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.PoolEnteredEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "count": req.Count, "serials": serials,
	})

	return &model.BuyAndRedeemEntryResponse{Serials: serials, Refund: refund}, nil
}

func (d *entryDomain) RedeemEntriesToNFT(
	ctx context.Context, req *model.RedeemEntriesToNFTRequest,
) (*model.RedeemEntriesToNFTResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	if req.Count <= 0 {
		return nil, errorx.New(errorx.BadParameters, "Count must be positive")
	}

	user := xcontext.RequestUserID(ctx)

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

	if err := d.entryRepo.Consume(ctx, req.PoolID, user, req.Count); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotEnoughTicketsToRoll,
				"Not enough unrolled entries to redeem")
		}

		xcontext.Logger(ctx).Errorf("Cannot consume entries: %v", err)
		return nil, errorx.Unknown
	}

	serials, err := d.mintTickets(ctx, user, pool, req.Count)
	if err != nil {
		return nil, err
	}

	if err := d.poolRepo.SubOutstandingEntries(ctx, req.PoolID, req.Count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrement outstanding entries: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.poolRepo.AddOutstanding(ctx, req.PoolID, 0, req.Count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot add outstanding ticket nfts: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	common.Emit(ctx, common.TicketRedeemedToNFTEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "serials": serials,
	})

	return &model.RedeemEntriesToNFTResponse{Serials: serials}, nil
}

func (d *entryDomain) GetUserEntries(
	ctx context.Context, req *model.GetUserEntriesRequest,
) (*model.GetUserEntriesResponse, error) {
	user := req.User
	if user == "" {
		user = xcontext.RequestUserID(ctx)
	}

	entry, err := d.entryRepo.Get(ctx, req.PoolID, user)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.GetUserEntriesResponse{Count: 0}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get user entry: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetUserEntriesResponse{Count: entry.Count}, nil
}
