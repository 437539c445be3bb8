package domain

import (
	"testing"

	"github.com/lazy-lotto/backend/internal/client"
	internalCommon "github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/testutil"
	"github.com/lazy-lotto/backend/pkg/xcontext"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func Test_poolDomain_CreatePool_ByAdmin(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	require.NotEmpty(t, resp.TicketToken)

	var pool entity.Pool
	tx := xcontext.DB(ctx).Take(&pool, "id=?", resp.PoolID)
	require.NoError(t, tx.Error)
	require.True(t, pool.IsGlobal)
	require.Equal(t, testutil.Admin1, pool.OwnerAddress)
	require.Equal(t, int64(5), pool.PlatformPercentage)
	require.Equal(t, resp.TicketToken, pool.TicketToken)

	// Admins never pay the creation fees.
	proceedsRepo := repository.NewProceedsRepository()
	balance, err := proceedsRepo.GetPlatformBalance(ctx, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func Test_poolDomain_CreatePool_CommunityPaysFees(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 1000)
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 50)
	testutil.ApproveSpending(ctx, testutil.User1, testutil.LazyTokenAddress, 50)

	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.PayableAmount = 150
	resp, err := d.pool.CreatePool(ctx, req)
	require.NoError(t, err)

	var pool entity.Pool
	require.NoError(t, xcontext.DB(ctx).Take(&pool, "id=?", resp.PoolID).Error)
	require.False(t, pool.IsGlobal)
	require.Equal(t, testutil.User1, pool.OwnerAddress)

	ledgerRepo := repository.NewLedgerRepository()
	hbar, err := ledgerRepo.GetBalance(ctx, testutil.User1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(900), hbar)

	lazy, err := ledgerRepo.GetBalance(ctx, testutil.User1, testutil.LazyTokenAddress)
	require.NoError(t, err)
	require.Equal(t, int64(0), lazy)

	proceedsRepo := repository.NewProceedsRepository()
	hbarFees, err := proceedsRepo.GetPlatformBalance(ctx, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(100), hbarFees)

	lazyFees, err := proceedsRepo.GetPlatformBalance(ctx, testutil.LazyTokenAddress)
	require.NoError(t, err)
	require.Equal(t, int64(50), lazyFees)
}

func Test_poolDomain_CreatePool_NotEnoughHbarAttached(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.User1)
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.PayableAmount = 99
	_, err := d.pool.CreatePool(ctx, req)
	require.True(t, errorx.Is(err, errorx.InsufficientHbar))
}

func Test_poolDomain_CreatePool_Validation(t *testing.T) {
	ctx := testutil.MockContextWithUserID(testutil.Admin1)
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.Name = ""
	_, err := d.pool.CreatePool(ctx, req)
	require.True(t, errorx.Is(err, errorx.BadParameters))

	req = basePoolRequest(entity.WinRateScale+1, entity.HbarAddress)
	_, err = d.pool.CreatePool(ctx, req)
	require.True(t, errorx.Is(err, errorx.BadParameters))

	req = basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.Royalties = []model.Royalty{
		{Recipient: testutil.User2, Bps: 6000},
		{Recipient: testutil.Admin2, Bps: 5000},
	}
	_, err = d.pool.CreatePool(ctx, req)
	require.True(t, errorx.Is(err, errorx.BadParameters))

	req = basePoolRequest(entity.WinRateScale/2, "0xdead000000000000000000000000000000000001")
	_, err = d.pool.CreatePool(ctx, req)
	require.True(t, errorx.Is(err, errorx.BadParameters))
}

func Test_poolDomain_CreatePool_EmitsEvent(t *testing.T) {
	publisher := &testutil.MockPublisher{}
	ctx := xcontext.WithPublisher(testutil.MockContext(), publisher)
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	packs := publisher.Packs()
	require.Len(t, packs, 1)
	require.Equal(t, []byte(internalCommon.PoolCreatedEvent), packs[0].Key)
}

func Test_poolDomain_PauseUnpause(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	_, err := d.pool.PausePool(asUser(ctx, testutil.User1), &model.PausePoolRequest{PoolID: resp.PoolID})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.pool.PausePool(asUser(ctx, testutil.Admin1), &model.PausePoolRequest{PoolID: resp.PoolID})
	require.NoError(t, err)

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 10)
	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 1, PayableAmount: 10,
	})
	require.True(t, errorx.Is(err, errorx.PoolOnPause))

	_, err = d.pool.UnpausePool(asUser(ctx, testutil.Admin1), &model.UnpausePoolRequest{PoolID: resp.PoolID})
	require.NoError(t, err)

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 1, PayableAmount: 10,
	})
	require.NoError(t, err)
}

func Test_poolDomain_ClosePool(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	_, err := d.pool.ClosePool(asUser(ctx, testutil.Admin1), &model.ClosePoolRequest{PoolID: resp.PoolID})
	require.NoError(t, err)

	_, err = d.pool.ClosePool(asUser(ctx, testutil.Admin1), &model.ClosePoolRequest{PoolID: resp.PoolID})
	require.True(t, errorx.Is(err, errorx.PoolIsClosed))
}

func Test_poolDomain_ClosePool_EntriesOutstanding(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	buyEntries(t, ctx, d, resp.PoolID, 1)

	_, err := d.pool.ClosePool(asUser(ctx, testutil.Admin1), &model.ClosePoolRequest{PoolID: resp.PoolID})
	require.True(t, errorx.Is(err, errorx.EntriesOutstanding))
}

func Test_poolDomain_SetPoolEntryCaps(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)

	_, err := d.pool.SetPoolEntryCaps(asUser(ctx, testutil.User1), &model.SetPoolEntryCapsRequest{
		PoolID: resp.PoolID, MaxTicketsPerBuy: 3, MaxTicketsPerUser: 6,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.pool.SetPoolEntryCaps(asUser(ctx, testutil.Admin1), &model.SetPoolEntryCapsRequest{
		PoolID: resp.PoolID, MaxTicketsPerBuy: -1,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.pool.SetPoolEntryCaps(asUser(ctx, testutil.Admin1), &model.SetPoolEntryCapsRequest{
		PoolID: resp.PoolID, MaxTicketsPerBuy: 3, MaxTicketsPerUser: 6,
	})
	require.NoError(t, err)

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 4, PayableAmount: 40,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 3, PayableAmount: 30,
	})
	require.NoError(t, err)

	closeReq := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	_, err = d.pool.ClosePool(asUser(ctx, testutil.Admin1), &model.ClosePoolRequest{
		PoolID: closeReq.PoolID,
	})
	require.NoError(t, err)

	_, err = d.pool.SetPoolEntryCaps(asUser(ctx, testutil.Admin1), &model.SetPoolEntryCapsRequest{
		PoolID: closeReq.PoolID, MaxTicketsPerBuy: 1, MaxTicketsPerUser: 1,
	})
	require.True(t, errorx.Is(err, errorx.PoolIsClosed))
}
