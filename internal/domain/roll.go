package domain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/lazy-lotto/backend/internal/client"
	internalCommon "github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/crypto"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RollDomain interface {
	RollAll(context.Context, *model.RollAllRequest) (*model.RollAllResponse, error)
	RollBatch(context.Context, *model.RollBatchRequest) (*model.RollBatchResponse, error)
	RollWithNFT(context.Context, *model.RollWithNFTRequest) (*model.RollWithNFTResponse, error)
	SetPRNG(context.Context, *model.SetPRNGRequest) (*model.SetPRNGResponse, error)
}

// settler drives the per-ticket outcome derivation shared by every roll
// entry point. One ticket consumes one seed; the low eight bytes decide
// win or lose, the high eight bytes pick the prize.
type settler struct {
	poolRepo    repository.PoolRepository
	entryRepo   repository.EntryRepository
	prizeRepo   repository.PrizeRepository
	pendingRepo repository.PendingPrizeRepository
	engine      *bonusEngine
	locker      *internalCommon.PoolLocker

	mutex sync.RWMutex
	prng  client.PRNG
}

func (s *settler) source() client.PRNG {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.prng
}

func (s *settler) setSource(prng client.PRNG) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.prng = prng
}

func NewSettler(
	poolRepo repository.PoolRepository,
	entryRepo repository.EntryRepository,
	prizeRepo repository.PrizeRepository,
	pendingRepo repository.PendingPrizeRepository,
	engine *bonusEngine,
	prng client.PRNG,
	locker *internalCommon.PoolLocker,
) *settler {
	return &settler{
		poolRepo:    poolRepo,
		entryRepo:   entryRepo,
		prizeRepo:   prizeRepo,
		pendingRepo: pendingRepo,
		engine:      engine,
		prng:        prng,
		locker:      locker,
	}
}

func rollSalt(user string, poolID int64, index int64) common.Hash {
	sum := crypto.SHA256([]byte(fmt.Sprintf("%s:%d:%d", user, poolID, index)))
	return common.BytesToHash(sum[:])
}

// effectiveWinRate scales the pool threshold by the user boost, saturating
// at the certain-win rate.
func effectiveWinRate(threshold, boost int64) int64 {
	rate := threshold + threshold*boost/entity.WinRateScale
	if rate > entity.WinRateScale {
		rate = entity.WinRateScale
	}

	return rate
}

// settle rolls count tickets for user against the pool and queues won
// packages. It returns how many tickets were processed, how many won, and
// the queue offset of the first win. Callers must hold the pool lock and
// run inside a transaction.
func (s *settler) settle(
	ctx context.Context, user string, pool *entity.Pool, count int64,
) (processed, wins, startOffset int64, err error) {
	boost, err := s.engine.calculate(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot calculate boost of %s: %v", user, err)
		return 0, 0, 0, errorx.Unknown
	}

	rate := effectiveWinRate(pool.WinRateThreshold, boost)

	startOffset, err = s.pendingRepo.Count(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count pending prizes: %v", err)
		return 0, 0, 0, errorx.Unknown
	}

	prng := s.source()
	for i := int64(0); i < count; i++ {
		seed, err := prng.GetSeed(ctx, rollSalt(user, pool.ID, startOffset+i))
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get prng seed: %v", err)
			return 0, 0, 0, errorx.Unknown
		}

		processed++
		r := int64(binary.BigEndian.Uint64(seed[24:32]) % uint64(entity.WinRateScale))
		if r >= rate {
			continue
		}

		prizeCount, err := s.prizeRepo.Count(ctx, pool.ID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot count prizes: %v", err)
			return 0, 0, 0, errorx.Unknown
		}

		if prizeCount == 0 {
			// The inventory emptied mid-batch; stop so the remaining
			// tickets keep their chance at future prizes.
			processed--
			break
		}

		prizeIndex := int64(binary.BigEndian.Uint64(seed[0:8]) % uint64(prizeCount))
		pkg, err := s.prizeRepo.TakeAt(ctx, pool.ID, prizeIndex)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot take prize %d: %v", prizeIndex, err)
			return 0, 0, 0, errorx.Unknown
		}

		if err := s.poolRepo.AddPrizeCount(ctx, pool.ID, -1); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decrement prize count: %v", err)
			return 0, 0, 0, errorx.Unknown
		}

		err = s.pendingRepo.Append(ctx, &entity.PendingPrize{
			Base:        entity.Base{ID: uuid.NewString()},
			UserAddress: user,
			PoolID:      pool.ID,
			Snapshot:    internalCommon.EncodePrizeSnapshot(convertPrizePackage(pkg)),
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot queue won prize: %v", err)
			return 0, 0, 0, errorx.Unknown
		}

		wins++
	}

	return processed, wins, startOffset, nil
}

// rollChecks validates the common preconditions of every roll path.
func (s *settler) rollChecks(ctx context.Context, pool *entity.Pool) error {
	if pool.Closed {
		return errorx.New(errorx.PoolIsClosed, "Pool %d is closed", pool.ID)
	}

	prizeCount, err := s.prizeRepo.Count(ctx, pool.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count prizes: %v", err)
		return errorx.Unknown
	}

	if prizeCount == 0 {
		return errorx.New(errorx.NoPrizesAvailable, "Pool %d has no prizes", pool.ID)
	}

	return nil
}

type rollDomain struct {
	*settler
	ledgerRepo    repository.LedgerRepository
	stateRepo     repository.ContractStateRepository
	adminVerifier *internalCommon.AdminVerifier
}

func NewRollDomain(
	settler *settler,
	ledgerRepo repository.LedgerRepository,
	stateRepo repository.ContractStateRepository,
	adminVerifier *internalCommon.AdminVerifier,
) *rollDomain {
	return &rollDomain{
		settler:       settler,
		ledgerRepo:    ledgerRepo,
		stateRepo:     stateRepo,
		adminVerifier: adminVerifier,
	}
}

// SetPRNG swaps the randomness source behind every roll. The mock mode
// pins a constant seed so outcomes become reproducible.
func (d *rollDomain) SetPRNG(
	ctx context.Context, req *model.SetPRNGRequest,
) (*model.SetPRNGResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	switch req.Mode {
	case model.PRNGModeHash:
		d.setSource(client.NewHashPRNG())
	case model.PRNGModeMock:
		d.setSource(client.NewMockPRNG(common.HexToHash(req.Seed)))
	default:
		return nil, errorx.New(errorx.BadParameters, "Unknown randomness mode %s", req.Mode)
	}

	return &model.SetPRNGResponse{}, nil
}

func (d *rollDomain) RollAll(
	ctx context.Context, req *model.RollAllRequest,
) (*model.RollAllResponse, error) {
	wins, startOffset, err := d.rollCounter(ctx, req.PoolID, -1)
	if err != nil {
		return nil, err
	}

	return &model.RollAllResponse{Wins: wins, StartOffset: startOffset}, nil
}

func (d *rollDomain) RollBatch(
	ctx context.Context, req *model.RollBatchRequest,
) (*model.RollBatchResponse, error) {
	if req.Count <= 0 {
		return nil, errorx.New(errorx.BadParameters, "Count must be positive")
	}

	wins, startOffset, err := d.rollCounter(ctx, req.PoolID, req.Count)
	if err != nil {
		return nil, err
	}

	return &model.RollBatchResponse{Wins: wins, StartOffset: startOffset}, nil
}

// rollCounter rolls counter-form entries; count -1 means all of them.
func (d *rollDomain) rollCounter(ctx context.Context, poolID, count int64) (int64, int64, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return 0, 0, err
	}

	user := xcontext.RequestUserID(ctx)

	d.locker.Lock(poolID)
	defer d.locker.Unlock(poolID)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := getPool(ctx, d.poolRepo, poolID)
	if err != nil {
		return 0, 0, err
	}

	if err := d.rollChecks(ctx, pool); err != nil {
		return 0, 0, err
	}

	entry, err := d.entryRepo.Get(ctx, poolID, user)
	if err != nil || entry.Count == 0 {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get user entry: %v", err)
			return 0, 0, errorx.Unknown
		}

		return 0, 0, errorx.New(errorx.NoTicketsToRoll, "No unrolled entries in pool %d", poolID)
	}

	if count == -1 {
		count = entry.Count
	} else if count > entry.Count {
		return 0, 0, errorx.New(errorx.NotEnoughTicketsToRoll,
			"Only %d entries available", entry.Count)
	}

	processed, wins, startOffset, err := d.settle(ctx, user, pool, count)
	if err != nil {
		return 0, 0, err
	}

	if processed > 0 {
		if err := d.entryRepo.Consume(ctx, poolID, user, processed); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot consume entries: %v", err)
			return 0, 0, errorx.Unknown
		}

		if err := d.poolRepo.SubOutstandingEntries(ctx, poolID, processed); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot decrement outstanding entries: %v", err)
			return 0, 0, errorx.Unknown
		}
	}

	xcontext.WithCommitDBTransaction(ctx)

	internalCommon.Emit(ctx, internalCommon.TicketRolledEvent, map[string]any{
		"user": user, "pool_id": poolID, "count": processed,
	})
	if wins > 0 {
		internalCommon.Emit(ctx, internalCommon.PrizeWonEvent, map[string]any{
			"user": user, "pool_id": poolID, "wins": wins, "start_offset": startOffset,
		})
	}

	return wins, startOffset, nil
}

func (d *rollDomain) RollWithNFT(
	ctx context.Context, req *model.RollWithNFTRequest,
) (*model.RollWithNFTResponse, error) {
	if err := requireNotPaused(ctx, d.stateRepo); err != nil {
		return nil, err
	}

	if len(req.Serials) == 0 {
		return nil, errorx.New(errorx.BadParameters, "No serials given")
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

	if err := d.rollChecks(ctx, pool); err != nil {
		return nil, err
	}

	approved, err := d.ledgerRepo.HasNFTAllowance(ctx, user, contractAddress(ctx), pool.TicketToken)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check nft allowance: %v", err)
		return nil, errorx.Unknown
	}

	if !approved {
		return nil, errorx.New(errorx.NotAuthorized,
			"Approve the contract for %s before rolling", pool.TicketToken)
	}

	for _, serial := range req.Serials {
		ticket, err := d.ledgerRepo.GetSerial(ctx, pool.TicketToken, serial)
		if err != nil {
			return nil, errorx.New(errorx.InvalidTicketNFT, "Unknown ticket serial %d", serial)
		}

		if ticket.Owner != user {
			return nil, errorx.New(errorx.InvalidTicketNFT, "Serial %d is not yours", serial)
		}

		if ticket.Winning {
			return nil, errorx.New(errorx.AlreadyWinningTicket,
				"Serial %d already carries a prize", serial)
		}
	}

	// Tickets are single use: rolling wipes the serials win or lose.
	for _, serial := range req.Serials {
		if err := d.ledgerRepo.WipeSerial(ctx, pool.TicketToken, serial); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot wipe ticket serial %d: %v", serial, err)
			return nil, errorx.New(errorx.FailedNFTWipe, "Cannot wipe ticket serial %d", serial)
		}
	}

	count := int64(len(req.Serials))
	processed, wins, startOffset, err := d.settle(ctx, user, pool, count)
	if err != nil {
		return nil, err
	}

	if processed != count {
		// Every NFT ticket was already wiped; an emptied inventory cannot
		// give the rest back, so refuse the whole batch.
		return nil, errorx.New(errorx.NoPrizesAvailable, "Pool %d ran out of prizes", req.PoolID)
	}

	if err := d.poolRepo.SubOutstandingTicketNFTs(ctx, req.PoolID, count); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decrement outstanding ticket nfts: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	internalCommon.Emit(ctx, internalCommon.TicketRolledEvent, map[string]any{
		"user": user, "pool_id": req.PoolID, "serials": req.Serials,
	})
	if wins > 0 {
		internalCommon.Emit(ctx, internalCommon.PrizeWonEvent, map[string]any{
			"user": user, "pool_id": req.PoolID, "wins": wins, "start_offset": startOffset,
		})
	}

	return &model.RollWithNFTResponse{Wins: wins, StartOffset: startOffset}, nil
}
