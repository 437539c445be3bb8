package domain

import (
	"context"
	"time"

	"github.com/lazy-lotto/backend/internal/client"
	"github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/xcontext"
)

type BonusDomain interface {
	CalculateBoost(context.Context, *model.CalculateBoostRequest) (*model.CalculateBoostResponse, error)
	GetBonusConfig(context.Context, *model.GetBonusConfigRequest) (*model.GetBonusConfigResponse, error)
	SetBurnPercentage(context.Context, *model.SetBurnPercentageRequest) (*model.SetBurnPercentageResponse, error)
	SetLazyBalanceBonus(context.Context, *model.SetLazyBalanceBonusRequest) (*model.SetLazyBalanceBonusResponse, error)
	SetNFTBonus(context.Context, *model.SetNFTBonusRequest) (*model.SetNFTBonusResponse, error)
	RemoveNFTBonus(context.Context, *model.RemoveNFTBonusRequest) (*model.RemoveNFTBonusResponse, error)
	AddTimeBonus(context.Context, *model.AddTimeBonusRequest) (*model.AddTimeBonusResponse, error)
	RemoveTimeBonus(context.Context, *model.RemoveTimeBonusRequest) (*model.RemoveTimeBonusResponse, error)
}

// bonusEngine is the boost arithmetic shared between the public boost query
// and roll settlement. Bonuses are evaluated at roll time, so a time window
// applies to every roll executed inside it regardless of when the entries
// were bought.
type bonusEngine struct {
	bonusRepo  repository.BonusRepository
	stateRepo  repository.ContractStateRepository
	ledgerRepo repository.LedgerRepository
	delegates  client.DelegateRegistry
}

func NewBonusEngine(
	bonusRepo repository.BonusRepository,
	stateRepo repository.ContractStateRepository,
	ledgerRepo repository.LedgerRepository,
	delegates client.DelegateRegistry,
) *bonusEngine {
	return &bonusEngine{
		bonusRepo:  bonusRepo,
		stateRepo:  stateRepo,
		ledgerRepo: ledgerRepo,
		delegates:  delegates,
	}
}

// calculate sums every applicable bonus in basis points, then scales by 1e4
// so the result composes with the 1e8 win-rate fixed point.
func (e *bonusEngine) calculate(ctx context.Context, user string) (int64, error) {
	var totalBps int64

	timeBonuses, err := e.bonusRepo.ListActiveTimeBonuses(ctx, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	for _, bonus := range timeBonuses {
		totalBps += bonus.Bps
	}

	nftBonuses, err := e.bonusRepo.ListNFTBonuses(ctx)
	if err != nil {
		return 0, err
	}

	for _, bonus := range nftBonuses {
		holds, err := e.delegates.HoldsOrDelegated(ctx, user, bonus.Token)
		if err != nil {
			return 0, err
		}

		if holds {
			totalBps += bonus.Bps
		}
	}

	state, err := e.stateRepo.Get(ctx)
	if err != nil {
		return 0, err
	}

	if state.LazyBalanceThreshold > 0 {
		balance, err := e.ledgerRepo.GetBalance(ctx, user, xcontext.Configs(ctx).Lotto.LazyToken)
		if err != nil {
			return 0, err
		}

		if balance >= state.LazyBalanceThreshold {
			totalBps += state.LazyBalanceBonusBps
		}
	}

	return totalBps * (entity.WinRateScale / entity.BpsScale), nil
}

type bonusDomain struct {
	engine        *bonusEngine
	poolRepo      repository.PoolRepository
	bonusRepo     repository.BonusRepository
	stateRepo     repository.ContractStateRepository
	adminVerifier *common.AdminVerifier
}

func NewBonusDomain(
	engine *bonusEngine,
	poolRepo repository.PoolRepository,
	bonusRepo repository.BonusRepository,
	stateRepo repository.ContractStateRepository,
	adminVerifier *common.AdminVerifier,
) *bonusDomain {
	return &bonusDomain{
		engine:        engine,
		poolRepo:      poolRepo,
		bonusRepo:     bonusRepo,
		stateRepo:     stateRepo,
		adminVerifier: adminVerifier,
	}
}

func (d *bonusDomain) CalculateBoost(
	ctx context.Context, req *model.CalculateBoostRequest,
) (*model.CalculateBoostResponse, error) {
	if _, err := getPool(ctx, d.poolRepo, req.PoolID); err != nil {
		return nil, err
	}

	user := req.User
	if user == "" {
		user = xcontext.RequestUserID(ctx)
	}

	boost, err := d.engine.calculate(ctx, user)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot calculate boost of %s: %v", user, err)
		return nil, errorx.Unknown
	}

	return &model.CalculateBoostResponse{Boost: boost}, nil
}

func (d *bonusDomain) GetBonusConfig(
	ctx context.Context, req *model.GetBonusConfigRequest,
) (*model.GetBonusConfigResponse, error) {
	state, err := d.stateRepo.Get(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contract state: %v", err)
		return nil, errorx.Unknown
	}

	nftBonuses, err := d.bonusRepo.ListNFTBonuses(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list nft bonuses: %v", err)
		return nil, errorx.Unknown
	}

	timeBonuses, err := d.bonusRepo.ListTimeBonuses(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list time bonuses: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetBonusConfigResponse{
		BurnPercentageBps:    state.BurnPercentageBps,
		BurnExemptToken:      state.BurnExemptToken,
		LazyBalanceThreshold: state.LazyBalanceThreshold,
		LazyBalanceBonusBps:  state.LazyBalanceBonusBps,
	}

	for _, bonus := range nftBonuses {
		resp.NFTBonuses = append(resp.NFTBonuses, model.NFTBonus{Token: bonus.Token, Bps: bonus.Bps})
	}

	for _, bonus := range timeBonuses {
		resp.TimeBonuses = append(resp.TimeBonuses, model.TimeBonus{
			ID:        bonus.ID,
			StartTime: bonus.StartTime,
			EndTime:   bonus.EndTime,
			Bps:       bonus.Bps,
		})
	}

	return resp, nil
}

func (d *bonusDomain) SetBurnPercentage(
	ctx context.Context, req *model.SetBurnPercentageRequest,
) (*model.SetBurnPercentageResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Bps < 0 || req.Bps > entity.BpsScale {
		return nil, errorx.New(errorx.BadParameters, "Burn percentage out of range")
	}

	err := d.stateRepo.Update(ctx, map[string]any{
		"burn_percentage_bps": req.Bps,
		"burn_exempt_token":   req.ExemptToken,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update burn percentage: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.BurnPercentageSetEvent, map[string]any{
		"by":           xcontext.RequestUserID(ctx),
		"bps":          req.Bps,
		"exempt_token": req.ExemptToken,
	})

	return &model.SetBurnPercentageResponse{}, nil
}

func (d *bonusDomain) SetLazyBalanceBonus(
	ctx context.Context, req *model.SetLazyBalanceBonusRequest,
) (*model.SetLazyBalanceBonusResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.Threshold < 0 || req.Bps < 0 || req.Bps > entity.BpsScale {
		return nil, errorx.New(errorx.BadParameters, "Invalid lazy balance bonus")
	}

	err := d.stateRepo.Update(ctx, map[string]any{
		"lazy_balance_threshold": req.Threshold,
		"lazy_balance_bonus_bps": req.Bps,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot update lazy balance bonus: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.LazyBalanceBonusSetEvent, map[string]any{
		"by":        xcontext.RequestUserID(ctx),
		"threshold": req.Threshold,
		"bps":       req.Bps,
	})

	return &model.SetLazyBalanceBonusResponse{}, nil
}

func (d *bonusDomain) SetNFTBonus(
	ctx context.Context, req *model.SetNFTBonusRequest,
) (*model.SetNFTBonusResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if entity.IsHbar(req.Token) {
		return nil, errorx.New(errorx.BadParameters, "Invalid bonus collection")
	}

	if req.Bps <= 0 || req.Bps > entity.BpsScale {
		return nil, errorx.New(errorx.BadParameters, "Bonus bps out of range")
	}

	if err := d.bonusRepo.UpsertNFTBonus(ctx, req.Token, req.Bps); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert nft bonus: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.NFTBonusSetEvent, map[string]any{
		"by":    xcontext.RequestUserID(ctx),
		"token": req.Token,
		"bps":   req.Bps,
	})

	return &model.SetNFTBonusResponse{}, nil
}

func (d *bonusDomain) RemoveNFTBonus(
	ctx context.Context, req *model.RemoveNFTBonusRequest,
) (*model.RemoveNFTBonusResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.bonusRepo.DeleteNFTBonus(ctx, req.Token); err != nil {
		return nil, errorx.New(errorx.NotFound, "No bonus configured for %s", req.Token)
	}

	common.Emit(ctx, common.NFTBonusSetEvent, map[string]any{
		"by":    xcontext.RequestUserID(ctx),
		"token": req.Token,
		"bps":   0,
	})

	return &model.RemoveNFTBonusResponse{}, nil
}

func (d *bonusDomain) AddTimeBonus(
	ctx context.Context, req *model.AddTimeBonusRequest,
) (*model.AddTimeBonusResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if req.StartTime >= req.EndTime {
		return nil, errorx.New(errorx.BadParameters, "Bonus window must end after it starts")
	}

	if req.Bps <= 0 || req.Bps > entity.BpsScale {
		return nil, errorx.New(errorx.BadParameters, "Bonus bps out of range")
	}

	bonus := &entity.TimeBonus{
		SnowFlakeBase: entity.SnowFlakeBase{ID: xcontext.SnowFlake(ctx).Generate().Int64()},
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Bps:           req.Bps,
	}

	if err := d.bonusRepo.CreateTimeBonus(ctx, bonus); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create time bonus: %v", err)
		return nil, errorx.Unknown
	}

	common.Emit(ctx, common.TimeBonusAddedEvent, map[string]any{
		"by":         xcontext.RequestUserID(ctx),
		"id":         bonus.ID,
		"start_time": req.StartTime,
		"end_time":   req.EndTime,
		"bps":        req.Bps,
	})

	return &model.AddTimeBonusResponse{ID: bonus.ID}, nil
}

func (d *bonusDomain) RemoveTimeBonus(
	ctx context.Context, req *model.RemoveTimeBonusRequest,
) (*model.RemoveTimeBonusResponse, error) {
	if err := d.adminVerifier.Verify(ctx); err != nil {
		return nil, err
	}

	if err := d.bonusRepo.DeleteTimeBonus(ctx, req.ID); err != nil {
		return nil, errorx.New(errorx.NotFound, "No time bonus %d", req.ID)
	}

	common.Emit(ctx, common.TimeBonusRemovedEvent, map[string]any{
		"by": xcontext.RequestUserID(ctx),
		"id": req.ID,
	})

	return &model.RemoveTimeBonusResponse{}, nil
}
