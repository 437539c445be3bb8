package domain

import (
	"testing"

	"github.com/lazy-lotto/backend/internal/client"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/testutil"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func Test_prizeDomain_AddPrizePackage_Authorization(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	req := &model.AddPrizePackageRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress, Amount: 100, PayableAmount: 100,
	}
	_, err := d.prize.AddPrizePackage(asUser(ctx, testutil.User1), req)
	require.True(t, errorx.Is(err, errorx.NotAuthorized))

	// The pool prize manager may deposit.
	_, err = d.manager.SetPoolPrizeManager(asUser(ctx, testutil.Admin1), &model.SetPoolPrizeManagerRequest{
		PoolID: resp.PoolID, Manager: testutil.User1,
	})
	require.NoError(t, err)

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	addResp, err := d.prize.AddPrizePackage(asUser(ctx, testutil.User1), req)
	require.NoError(t, err)
	require.Equal(t, int64(0), addResp.Position)

	// A global prize manager may deposit into any pool.
	_, err = d.manager.AddGlobalPrizeManager(asUser(ctx, testutil.Admin1), &model.AddGlobalPrizeManagerRequest{
		Manager: testutil.User2,
	})
	require.NoError(t, err)

	testutil.FundAccount(ctx, testutil.User2, entity.HbarAddress, 100)
	addResp, err = d.prize.AddPrizePackage(asUser(ctx, testutil.User2), req)
	require.NoError(t, err)
	require.Equal(t, int64(1), addResp.Position)
}

func Test_prizeDomain_AddPrizePackage_Validation(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	adminCtx := asUser(ctx, testutil.Admin1)

	_, err := d.prize.AddPrizePackage(adminCtx, &model.AddPrizePackageRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.prize.AddPrizePackage(adminCtx, &model.AddPrizePackageRequest{
		PoolID:     resp.PoolID,
		NFTTokens:  []string{"0xaaa0000000000000000000000000000000000001"},
		NFTSerials: [][]int64{{1, 1}},
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.prize.AddPrizePackage(adminCtx, &model.AddPrizePackageRequest{
		PoolID:     resp.PoolID,
		NFTTokens:  []string{"0xaaa0000000000000000000000000000000000001"},
		NFTSerials: [][]int64{},
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))
}

func Test_prizeDomain_AddPrizePackage_NFTDeposit(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	collection := "0xaaa0000000000000000000000000000000000001"
	testutil.InsertNFTCollection(ctx, collection, testutil.Admin1, 2)

	req := &model.AddPrizePackageRequest{
		PoolID:     resp.PoolID,
		NFTTokens:  []string{collection},
		NFTSerials: [][]int64{{1, 2}},
	}
	_, err := d.prize.AddPrizePackage(asUser(ctx, testutil.Admin1), req)
	require.True(t, errorx.Is(err, errorx.NotAuthorized))

	testutil.ApproveNFTs(ctx, testutil.Admin1, collection)
	addResp, err := d.prize.AddPrizePackage(asUser(ctx, testutil.Admin1), req)
	require.NoError(t, err)
	require.Equal(t, int64(0), addResp.Position)

	// The serials moved into contract escrow.
	serial, err := d.ledgerRepo.GetSerial(ctx, collection, 1)
	require.NoError(t, err)
	require.Equal(t, testutil.ContractAddress, serial.Owner)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(1), pool.PrizeCount)
}

func Test_prizeDomain_AddMultipleFungiblePrizes(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	testutil.FundAccount(ctx, testutil.Admin1, entity.HbarAddress, 30)
	addResp, err := d.prize.AddMultipleFungiblePrizes(asUser(ctx, testutil.Admin1), &model.AddMultipleFungiblePrizesRequest{
		PoolID:        resp.PoolID,
		Token:         entity.HbarAddress,
		Amounts:       []int64{10, 20},
		PayableAmount: 30,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), addResp.StartPosition)
	require.Equal(t, int64(2), addResp.Count)

	listResp, err := d.prize.GetPrizes(ctx, &model.GetPrizesRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Len(t, listResp.Prizes, 2)
	require.Equal(t, int64(10), listResp.Prizes[0].Amount)
	require.Equal(t, int64(20), listResp.Prizes[1].Amount)

	_, err = d.prize.AddMultipleFungiblePrizes(asUser(ctx, testutil.Admin1), &model.AddMultipleFungiblePrizesRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress, Amounts: []int64{0},
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))
}

func Test_prizeDomain_RemovePrizes(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{100, 200})

	// Removal is only allowed once the pool is closed.
	_, err := d.prize.RemovePrizes(asUser(ctx, testutil.Admin1), &model.RemovePrizesRequest{
		PoolID: resp.PoolID, Position: 0,
	})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.pool.ClosePool(asUser(ctx, testutil.Admin1), &model.ClosePoolRequest{PoolID: resp.PoolID})
	require.NoError(t, err)

	before, err := d.ledgerRepo.GetBalance(ctx, testutil.Admin1, entity.HbarAddress)
	require.NoError(t, err)

	removeResp, err := d.prize.RemovePrizes(asUser(ctx, testutil.Admin1), &model.RemovePrizesRequest{
		PoolID: resp.PoolID, Position: 0,
	})
	require.NoError(t, err)
	require.Equal(t, int64(100), removeResp.Removed.Amount)

	after, err := d.ledgerRepo.GetBalance(ctx, testutil.Admin1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, before+100, after)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(1), pool.PrizeCount)

	// The queue compacted, the 200 package now sits at position zero.
	pkg, err := d.prizeRepo.GetAt(ctx, resp.PoolID, 0)
	require.NoError(t, err)
	require.Equal(t, int64(200), pkg.Amount)

	_, err = d.prize.RemovePrizes(asUser(ctx, testutil.Admin1), &model.RemovePrizesRequest{
		PoolID: resp.PoolID, Position: 5,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))
}
