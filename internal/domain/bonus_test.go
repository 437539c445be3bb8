package domain

import (
	"testing"
	"time"

	"github.com/lazy-lotto/backend/internal/client"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/testutil"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func Test_effectiveWinRate(t *testing.T) {
	// A boost of 1e8 doubles the threshold.
	require.Equal(t, int64(20_000_000), effectiveWinRate(10_000_000, entity.WinRateScale))

	// No boost leaves the threshold unchanged.
	require.Equal(t, int64(10_000_000), effectiveWinRate(10_000_000, 0))

	// The rate saturates at certain win.
	require.Equal(t, entity.WinRateScale, effectiveWinRate(entity.WinRateScale, 50_000_000))
	require.Equal(t, entity.WinRateScale, effectiveWinRate(60_000_000, entity.WinRateScale))
}

func Test_bonusDomain_CalculateBoost_Stacking(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	adminCtx := asUser(ctx, testutil.Admin1)

	now := time.Now().Unix()
	_, err := d.bonus.AddTimeBonus(adminCtx, &model.AddTimeBonusRequest{
		StartTime: now - 60, EndTime: now + 3600, Bps: 100,
	})
	require.NoError(t, err)

	bonusToken := "0xb0b0000000000000000000000000000000000001"
	testutil.InsertNFTCollection(ctx, bonusToken, testutil.User1, 1)
	_, err = d.bonus.SetNFTBonus(adminCtx, &model.SetNFTBonusRequest{Token: bonusToken, Bps: 200})
	require.NoError(t, err)

	_, err = d.bonus.SetLazyBalanceBonus(adminCtx, &model.SetLazyBalanceBonusRequest{Threshold: 100, Bps: 50})
	require.NoError(t, err)
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 150)

	// All three bonuses apply: (100+200+50) bps scaled to the win-rate
	// fixed point.
	boostResp, err := d.bonus.CalculateBoost(asUser(ctx, testutil.User1), &model.CalculateBoostRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3_500_000), boostResp.Boost)

	// User2 holds no bonus collection and not enough lazy.
	boostResp, err = d.bonus.CalculateBoost(asUser(ctx, testutil.User2), &model.CalculateBoostRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1_000_000), boostResp.Boost)
}

func Test_bonusDomain_CalculateBoost_ExpiredWindow(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	now := time.Now().Unix()
	_, err := d.bonus.AddTimeBonus(asUser(ctx, testutil.Admin1), &model.AddTimeBonusRequest{
		StartTime: now - 7200, EndTime: now - 3600, Bps: 500,
	})
	require.NoError(t, err)

	boostResp, err := d.bonus.CalculateBoost(asUser(ctx, testutil.User1), &model.CalculateBoostRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), boostResp.Boost)
}

func Test_bonusDomain_CalculateBoost_DelegatedHolding(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	bonusToken := "0xb0b0000000000000000000000000000000000002"
	testutil.InsertNFTCollection(ctx, bonusToken, testutil.User2, 1)
	_, err := d.bonus.SetNFTBonus(asUser(ctx, testutil.Admin1), &model.SetNFTBonusRequest{
		Token: bonusToken, Bps: 300,
	})
	require.NoError(t, err)

	// User1 holds nothing until User2 delegates the serial.
	boostResp, err := d.bonus.CalculateBoost(asUser(ctx, testutil.User1), &model.CalculateBoostRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), boostResp.Boost)

	_, err = d.ledger.AddDelegation(asUser(ctx, testutil.User2), &model.AddDelegationRequest{
		Delegate: testutil.User1, Token: bonusToken, Serial: 1,
	})
	require.NoError(t, err)

	boostResp, err = d.bonus.CalculateBoost(asUser(ctx, testutil.User1), &model.CalculateBoostRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3_000_000), boostResp.Boost)
}

func Test_bonusDomain_AdminGates(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	userCtx := asUser(ctx, testutil.User1)
	_, err := d.bonus.SetBurnPercentage(userCtx, &model.SetBurnPercentageRequest{Bps: 100})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.bonus.SetLazyBalanceBonus(userCtx, &model.SetLazyBalanceBonusRequest{Threshold: 1, Bps: 1})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	adminCtx := asUser(ctx, testutil.Admin1)
	_, err = d.bonus.SetBurnPercentage(adminCtx, &model.SetBurnPercentageRequest{Bps: entity.BpsScale + 1})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.bonus.AddTimeBonus(adminCtx, &model.AddTimeBonusRequest{StartTime: 100, EndTime: 100, Bps: 10})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.bonus.RemoveTimeBonus(adminCtx, &model.RemoveTimeBonusRequest{ID: 12345})
	require.True(t, errorx.Is(err, errorx.NotFound))

	_, err = d.bonus.RemoveNFTBonus(adminCtx, &model.RemoveNFTBonusRequest{Token: "0xunknown"})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_bonusDomain_GetBonusConfig(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	adminCtx := asUser(ctx, testutil.Admin1)
	_, err := d.bonus.SetBurnPercentage(adminCtx, &model.SetBurnPercentageRequest{Bps: 250})
	require.NoError(t, err)

	_, err = d.bonus.SetLazyBalanceBonus(adminCtx, &model.SetLazyBalanceBonusRequest{Threshold: 100, Bps: 75})
	require.NoError(t, err)

	bonusToken := "0xb0b0000000000000000000000000000000000003"
	_, err = d.bonus.SetNFTBonus(adminCtx, &model.SetNFTBonusRequest{Token: bonusToken, Bps: 125})
	require.NoError(t, err)

	cfgResp, err := d.bonus.GetBonusConfig(ctx, &model.GetBonusConfigRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(250), cfgResp.BurnPercentageBps)
	require.Equal(t, int64(100), cfgResp.LazyBalanceThreshold)
	require.Equal(t, int64(75), cfgResp.LazyBalanceBonusBps)
	require.Len(t, cfgResp.NFTBonuses, 1)
	require.Equal(t, bonusToken, cfgResp.NFTBonuses[0].Token)
}

func Test_rollDomain_BoostedRoll_Saturates(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	// Threshold 50% boosted by 10000 bps doubles to certain win.
	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})

	now := time.Now().Unix()
	_, err := d.bonus.AddTimeBonus(asUser(ctx, testutil.Admin1), &model.AddTimeBonusRequest{
		StartTime: now - 60, EndTime: now + 3600, Bps: entity.BpsScale,
	})
	require.NoError(t, err)

	buyEntries(t, ctx, d, resp.PoolID, 1)
	rollResp, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Equal(t, int64(1), rollResp.Wins)
}
