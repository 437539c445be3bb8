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

func Test_managerDomain_WithdrawPoolProceeds(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	// User1 creates a community pool; its platform percentage is frozen
	// at the current state value of 5.
	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	testutil.ApproveSpending(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.PayableAmount = 100
	resp, err := d.pool.CreatePool(asUser(ctx, testutil.User1), req)
	require.NoError(t, err)

	// User2 buys 10 entries at fee 10.
	testutil.FundAccount(ctx, testutil.User2, entity.HbarAddress, 100)
	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User2), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 10, PayableAmount: 100,
	})
	require.NoError(t, err)

	_, err = d.manager.WithdrawPoolProceeds(asUser(ctx, testutil.User2), &model.WithdrawPoolProceedsRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	withdrawResp, err := d.manager.WithdrawPoolProceeds(asUser(ctx, testutil.User1), &model.WithdrawPoolProceedsRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress,
	})
	require.NoError(t, err)
	require.Equal(t, int64(95), withdrawResp.OwnerAmount)
	require.Equal(t, int64(5), withdrawResp.PlatformAmount)

	balance, err := d.ledgerRepo.GetBalance(ctx, testutil.User1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(95), balance)

	// Nothing left on a second withdrawal.
	withdrawResp, err = d.manager.WithdrawPoolProceeds(asUser(ctx, testutil.User1), &model.WithdrawPoolProceedsRequest{
		PoolID: resp.PoolID, Token: entity.HbarAddress,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), withdrawResp.OwnerAmount)

	// Platform holds the creation fee plus the diverted share.
	feesResp, err := d.manager.WithdrawPlatformFees(asUser(ctx, testutil.Admin1), &model.WithdrawPlatformFeesRequest{
		Token: entity.HbarAddress,
	})
	require.NoError(t, err)
	require.Equal(t, int64(105), feesResp.Amount)

	adminBalance, err := d.ledgerRepo.GetBalance(ctx, testutil.Admin1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(105), adminBalance)
}

func Test_managerDomain_WithdrawPlatformFees_AdminOnly(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	_, err := d.manager.WithdrawPlatformFees(asUser(ctx, testutil.User1), &model.WithdrawPlatformFeesRequest{
		Token: entity.HbarAddress,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))
}

func Test_managerDomain_SetPlatformPercentage(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	existing := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	// The configured ceiling is 25.
	_, err := d.manager.SetPlatformPercentage(asUser(ctx, testutil.Admin1), &model.SetPlatformPercentageRequest{
		Percentage: 26,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.manager.SetPlatformPercentage(asUser(ctx, testutil.Admin1), &model.SetPlatformPercentageRequest{
		Percentage: 10,
	})
	require.NoError(t, err)

	// Existing pools keep their frozen percentage, new ones snapshot the
	// updated value.
	pool, err := d.poolRepo.GetByID(ctx, existing.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(5), pool.PlatformPercentage)

	created := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	pool, err = d.poolRepo.GetByID(ctx, created.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(10), pool.PlatformPercentage)
}

func Test_managerDomain_SetCreationFees(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	_, err := d.manager.SetCreationFees(asUser(ctx, testutil.User1), &model.SetCreationFeesRequest{
		FeeHbar: 1, FeeLazy: 1,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.manager.SetCreationFees(asUser(ctx, testutil.Admin1), &model.SetCreationFeesRequest{
		FeeHbar: 200, FeeLazy: 80,
	})
	require.NoError(t, err)

	stateResp, err := d.admin.GetContractState(ctx, &model.GetContractStateRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(200), stateResp.CreationFeeHbar)
	require.Equal(t, int64(80), stateResp.CreationFeeLazy)
}

func Test_managerDomain_TransferPoolOwnership(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	global := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	_, err := d.manager.TransferPoolOwnership(asUser(ctx, testutil.Admin1), &model.TransferPoolOwnershipRequest{
		PoolID: global.PoolID, NewOwner: testutil.User1,
	})
	require.True(t, errorx.Is(err, errorx.CannotTransferGlobalPools))

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	testutil.ApproveSpending(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.PayableAmount = 100
	community, err := d.pool.CreatePool(asUser(ctx, testutil.User1), req)
	require.NoError(t, err)

	_, err = d.manager.TransferPoolOwnership(asUser(ctx, testutil.User2), &model.TransferPoolOwnershipRequest{
		PoolID: community.PoolID, NewOwner: testutil.User2,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.manager.TransferPoolOwnership(asUser(ctx, testutil.User1), &model.TransferPoolOwnershipRequest{
		PoolID: community.PoolID, NewOwner: testutil.User2,
	})
	require.NoError(t, err)

	pool, err := d.poolRepo.GetByID(ctx, community.PoolID)
	require.NoError(t, err)
	require.Equal(t, testutil.User2, pool.OwnerAddress)
}

func Test_managerDomain_CanAddPrizes(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	check := func(address string) bool {
		canResp, err := d.manager.CanAddPrizes(ctx, &model.CanAddPrizesRequest{
			PoolID: resp.PoolID, Address: address,
		})
		require.NoError(t, err)
		return canResp.Allowed
	}

	require.True(t, check(testutil.Admin1))  // owner and admin
	require.True(t, check(testutil.Admin2))  // admin
	require.False(t, check(testutil.User1))  // nobody
	require.False(t, check(testutil.User2))  // nobody

	_, err := d.manager.SetPoolPrizeManager(asUser(ctx, testutil.Admin1), &model.SetPoolPrizeManagerRequest{
		PoolID: resp.PoolID, Manager: testutil.User1,
	})
	require.NoError(t, err)
	require.True(t, check(testutil.User1))

	_, err = d.manager.AddGlobalPrizeManager(asUser(ctx, testutil.Admin1), &model.AddGlobalPrizeManagerRequest{
		Manager: testutil.User2,
	})
	require.NoError(t, err)
	require.True(t, check(testutil.User2))

	_, err = d.manager.RemoveGlobalPrizeManager(asUser(ctx, testutil.Admin1), &model.RemoveGlobalPrizeManagerRequest{
		Manager: testutil.User2,
	})
	require.NoError(t, err)
	require.False(t, check(testutil.User2))

	_, err = d.manager.RemoveGlobalPrizeManager(asUser(ctx, testutil.Admin1), &model.RemoveGlobalPrizeManagerRequest{
		Manager: testutil.User2,
	})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_managerDomain_ListPools(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	testutil.ApproveSpending(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.PayableAmount = 100
	_, err := d.pool.CreatePool(asUser(ctx, testutil.User1), req)
	require.NoError(t, err)

	globalResp, err := d.manager.GetGlobalPools(ctx, &model.GetGlobalPoolsRequest{})
	require.NoError(t, err)
	require.Len(t, globalResp.Pools, 2)

	communityResp, err := d.manager.GetCommunityPools(ctx, &model.GetCommunityPoolsRequest{})
	require.NoError(t, err)
	require.Len(t, communityResp.Pools, 1)
	require.Equal(t, testutil.User1, communityResp.Pools[0].Owner)

	userResp, err := d.manager.GetUserPools(ctx, &model.GetUserPoolsRequest{Owner: testutil.User1})
	require.NoError(t, err)
	require.Len(t, userResp.Pools, 1)

	_, err = d.manager.GetGlobalPools(ctx, &model.GetGlobalPoolsRequest{Limit: 100})
	require.True(t, errorx.Is(err, errorx.BadParameters))
}
