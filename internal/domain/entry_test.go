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

func Test_entryDomain_BuyEntry(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)

	// Overpaying in hbar returns the excess.
	buyResp, err := d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 3, PayableAmount: 35,
	})
	require.NoError(t, err)
	require.Equal(t, int64(3), buyResp.Entries)
	require.Equal(t, int64(5), buyResp.Refund)

	hbar, err := d.ledgerRepo.GetBalance(ctx, testutil.User1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(70), hbar)

	proceeds, err := d.proceedsRepo.GetPoolProceeds(ctx, resp.PoolID, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(30), proceeds.Total)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(3), pool.OutstandingEntries)
}

func Test_entryDomain_BuyEntry_FungibleFee(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	req := basePoolRequest(entity.WinRateScale/2, testutil.LazyTokenAddress)
	resp, err := d.pool.CreatePool(asUser(ctx, testutil.Admin1), req)
	require.NoError(t, err)

	// Attaching hbar to a fungible-fee pool is rejected.
	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 1, PayableAmount: 10,
	})
	require.True(t, errorx.Is(err, errorx.IncorrectFeeToken))

	// The fee is pulled through the allowance the buyer granted.
	testutil.FundAccount(ctx, testutil.User1, testutil.LazyTokenAddress, 100)
	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 1,
	})
	require.True(t, errorx.Is(err, errorx.NotEnoughFungible))

	testutil.ApproveSpending(ctx, testutil.User1, testutil.LazyTokenAddress, 100)
	buyResp, err := d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 2,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), buyResp.Entries)

	lazy, err := d.ledgerRepo.GetBalance(ctx, testutil.User1, testutil.LazyTokenAddress)
	require.NoError(t, err)
	require.Equal(t, int64(80), lazy)
}

func Test_entryDomain_BuyEntry_Caps(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	req := basePoolRequest(entity.WinRateScale/2, entity.HbarAddress)
	req.MaxTicketsPerBuy = 5
	req.MaxTicketsPerUser = 8
	resp, err := d.pool.CreatePool(asUser(ctx, testutil.Admin1), req)
	require.NoError(t, err)

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 200)

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 6, PayableAmount: 60,
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 5, PayableAmount: 50,
	})
	require.NoError(t, err)

	// 5 bought already, 4 more breaks the per-user cumulative cap.
	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 4, PayableAmount: 40,
	})
	require.True(t, errorx.Is(err, errorx.MaxEntriesReached))

	_, err = d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID: resp.PoolID, Count: 3, PayableAmount: 30,
	})
	require.NoError(t, err)
}

func Test_entryDomain_BuyAndRedeemEntry(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)

	// Minting to an unassociated account is refused.
	_, err := d.entry.BuyAndRedeemEntry(asUser(ctx, testutil.User1), &model.BuyAndRedeemEntryRequest{
		PoolID: resp.PoolID, Count: 2, PayableAmount: 20,
	})
	require.True(t, errorx.Is(err, errorx.AssociationFailed))

	testutil.Associate(ctx, testutil.User1, resp.TicketToken)
	redeemResp, err := d.entry.BuyAndRedeemEntry(asUser(ctx, testutil.User1), &model.BuyAndRedeemEntryRequest{
		PoolID: resp.PoolID, Count: 2, PayableAmount: 20,
	})
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, redeemResp.Serials)

	serial, err := d.ledgerRepo.GetSerial(ctx, resp.TicketToken, 1)
	require.NoError(t, err)
	require.Equal(t, testutil.User1, serial.Owner)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(0), pool.OutstandingEntries)
	require.Equal(t, int64(2), pool.OutstandingTicketNFTs)
}

func Test_entryDomain_RedeemEntriesToNFT(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale/2)
	buyEntries(t, ctx, d, resp.PoolID, 3)
	testutil.Associate(ctx, testutil.User1, resp.TicketToken)

	_, err := d.entry.RedeemEntriesToNFT(asUser(ctx, testutil.User1), &model.RedeemEntriesToNFTRequest{
		PoolID: resp.PoolID, Count: 5,
	})
	require.True(t, errorx.Is(err, errorx.NotEnoughTicketsToRoll))

	redeemResp, err := d.entry.RedeemEntriesToNFT(asUser(ctx, testutil.User1), &model.RedeemEntriesToNFTRequest{
		PoolID: resp.PoolID, Count: 2,
	})
	require.NoError(t, err)
	require.Len(t, redeemResp.Serials, 2)

	entriesResp, err := d.entry.GetUserEntries(asUser(ctx, testutil.User1), &model.GetUserEntriesRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), entriesResp.Count)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(1), pool.OutstandingEntries)
	require.Equal(t, int64(2), pool.OutstandingTicketNFTs)
}
