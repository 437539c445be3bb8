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

// The zero seed rolls r=0, which wins against any positive rate and loses
// against a zero one, and always picks the prize at position zero.

func Test_rollDomain_RollAll_Wins(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500, 500})
	buyEntries(t, ctx, d, resp.PoolID, 2)

	rollResp, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Equal(t, int64(2), rollResp.Wins)
	require.Equal(t, int64(0), rollResp.StartOffset)

	pending, err := d.pendingRepo.Count(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, int64(2), pending)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(0), pool.OutstandingEntries)
	require.Equal(t, int64(0), pool.PrizeCount)

	entries, err := d.entry.GetUserEntries(asUser(ctx, testutil.User1), &model.GetUserEntriesRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), entries.Count)
}

func Test_rollDomain_RollAll_Loses(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, 0)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})
	buyEntries(t, ctx, d, resp.PoolID, 2)

	rollResp, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Equal(t, int64(0), rollResp.Wins)

	// Losing still consumes the tickets.
	entries, err := d.entry.GetUserEntries(asUser(ctx, testutil.User1), &model.GetUserEntriesRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), entries.Count)

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(1), pool.PrizeCount)
}

func Test_rollDomain_RollAll_StopsWhenInventoryEmpties(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})
	buyEntries(t, ctx, d, resp.PoolID, 3)

	rollResp, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Equal(t, int64(1), rollResp.Wins)

	// The unprocessed remainder stays rollable.
	entries, err := d.entry.GetUserEntries(asUser(ctx, testutil.User1), &model.GetUserEntriesRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), entries.Count)
}

func Test_rollDomain_RollBatch(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{100, 100, 100})

	_, err := d.roll.RollBatch(asUser(ctx, testutil.User1), &model.RollBatchRequest{
		PoolID: resp.PoolID, Count: 1,
	})
	require.True(t, errorx.Is(err, errorx.NoTicketsToRoll))

	buyEntries(t, ctx, d, resp.PoolID, 2)

	_, err = d.roll.RollBatch(asUser(ctx, testutil.User1), &model.RollBatchRequest{
		PoolID: resp.PoolID, Count: 3,
	})
	require.True(t, errorx.Is(err, errorx.NotEnoughTicketsToRoll))

	rollResp, err := d.roll.RollBatch(asUser(ctx, testutil.User1), &model.RollBatchRequest{
		PoolID: resp.PoolID, Count: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rollResp.Wins)

	entries, err := d.entry.GetUserEntries(asUser(ctx, testutil.User1), &model.GetUserEntriesRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), entries.Count)
}

func Test_rollDomain_Roll_NoPrizes(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	buyEntries(t, ctx, d, resp.PoolID, 1)

	_, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.True(t, errorx.Is(err, errorx.NoPrizesAvailable))
}

func Test_rollDomain_BuyAndRollEntry(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500, 500})

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	rollResp, err := d.entry.BuyAndRollEntry(asUser(ctx, testutil.User1), &model.BuyAndRollEntryRequest{
		PoolID: resp.PoolID, Count: 2, PayableAmount: 25,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), rollResp.Wins)
	require.Equal(t, int64(5), rollResp.Refund)

	// Everything rolled immediately, nothing outstanding.
	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(0), pool.OutstandingEntries)

	pending, err := d.pendingRepo.Count(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, int64(2), pending)
}

func Test_rollDomain_RollWithNFT(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500, 500})

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.Associate(ctx, testutil.User1, resp.TicketToken)
	redeemResp, err := d.entry.BuyAndRedeemEntry(asUser(ctx, testutil.User1), &model.BuyAndRedeemEntryRequest{
		PoolID: resp.PoolID, Count: 2, PayableAmount: 20,
	})
	require.NoError(t, err)

	_, err = d.roll.RollWithNFT(asUser(ctx, testutil.User1), &model.RollWithNFTRequest{
		PoolID: resp.PoolID, Serials: redeemResp.Serials,
	})
	require.True(t, errorx.Is(err, errorx.NotAuthorized))

	testutil.ApproveNFTs(ctx, testutil.User1, resp.TicketToken)
	rollResp, err := d.roll.RollWithNFT(asUser(ctx, testutil.User1), &model.RollWithNFTRequest{
		PoolID: resp.PoolID, Serials: redeemResp.Serials,
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), rollResp.Wins)

	// The ticket serials are gone win or lose.
	for _, serial := range redeemResp.Serials {
		_, err := d.ledgerRepo.GetSerial(ctx, resp.TicketToken, serial)
		require.Error(t, err)
	}

	pool, err := d.poolRepo.GetByID(ctx, resp.PoolID)
	require.NoError(t, err)
	require.Equal(t, int64(0), pool.OutstandingTicketNFTs)
}

func Test_rollDomain_RollWithNFT_WipesOnLoss(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, 0)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.Associate(ctx, testutil.User1, resp.TicketToken)
	testutil.ApproveNFTs(ctx, testutil.User1, resp.TicketToken)
	redeemResp, err := d.entry.BuyAndRedeemEntry(asUser(ctx, testutil.User1), &model.BuyAndRedeemEntryRequest{
		PoolID: resp.PoolID, Count: 1, PayableAmount: 10,
	})
	require.NoError(t, err)

	rollResp, err := d.roll.RollWithNFT(asUser(ctx, testutil.User1), &model.RollWithNFTRequest{
		PoolID: resp.PoolID, Serials: redeemResp.Serials,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), rollResp.Wins)

	_, err = d.ledgerRepo.GetSerial(ctx, resp.TicketToken, redeemResp.Serials[0])
	require.Error(t, err)
}

func Test_rollDomain_RollWithNFT_RefusesWhenInventoryShort(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 100)
	testutil.Associate(ctx, testutil.User1, resp.TicketToken)
	testutil.ApproveNFTs(ctx, testutil.User1, resp.TicketToken)
	redeemResp, err := d.entry.BuyAndRedeemEntry(asUser(ctx, testutil.User1), &model.BuyAndRedeemEntryRequest{
		PoolID: resp.PoolID, Count: 2, PayableAmount: 20,
	})
	require.NoError(t, err)

	_, err = d.roll.RollWithNFT(asUser(ctx, testutil.User1), &model.RollWithNFTRequest{
		PoolID: resp.PoolID, Serials: redeemResp.Serials,
	})
	require.True(t, errorx.Is(err, errorx.NoPrizesAvailable))

	// The whole batch rolled back, tickets and inventory untouched.
	for _, serial := range redeemResp.Serials {
		_, err := d.ledgerRepo.GetSerial(ctx, resp.TicketToken, serial)
		require.NoError(t, err)
	}

	pending, err := d.pendingRepo.Count(ctx, testutil.User1)
	require.NoError(t, err)
	require.Equal(t, int64(0), pending)
}

func Test_rollDomain_RollWithNFT_RejectsWinningBearer(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})
	buyEntries(t, ctx, d, resp.PoolID, 1)

	_, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{PoolID: resp.PoolID})
	require.NoError(t, err)

	testutil.Associate(ctx, testutil.User1, resp.TicketToken)
	bearerResp, err := d.claim.RedeemPrizeToNFT(asUser(ctx, testutil.User1), &model.RedeemPrizeToNFTRequest{
		Positions: []int64{0},
	})
	require.NoError(t, err)

	testutil.ApproveNFTs(ctx, testutil.User1, resp.TicketToken)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{500})
	_, err = d.roll.RollWithNFT(asUser(ctx, testutil.User1), &model.RollWithNFTRequest{
		PoolID: resp.PoolID, Serials: bearerResp.BearerSerials,
	})
	require.True(t, errorx.Is(err, errorx.AlreadyWinningTicket))
}

func Test_rollDomain_SetPRNG(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(client.NewMockPRNG(ethCommon.Hash{}))

	resp := createGlobalPool(t, ctx, d, 1)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{100, 100})
	buyEntries(t, ctx, d, resp.PoolID, 2)

	_, err := d.roll.SetPRNG(asUser(ctx, testutil.User1), &model.SetPRNGRequest{
		Mode: model.PRNGModeMock,
	})
	require.True(t, errorx.Is(err, errorx.NotAdmin))

	_, err = d.roll.SetPRNG(asUser(ctx, testutil.Admin1), &model.SetPRNGRequest{
		Mode: "quantum",
	})
	require.True(t, errorx.Is(err, errorx.BadParameters))

	rollResp, err := d.roll.RollBatch(asUser(ctx, testutil.User1), &model.RollBatchRequest{
		PoolID: resp.PoolID, Count: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rollResp.Wins)

	// A seed ending in ffffffffffffffff rolls r = 9551615, above the
	// threshold of one, so every roll now loses.
	_, err = d.roll.SetPRNG(asUser(ctx, testutil.Admin1), &model.SetPRNGRequest{
		Mode: model.PRNGModeMock,
		Seed: "0x000000000000000000000000000000000000000000000000ffffffffffffffff",
	})
	require.NoError(t, err)

	rollResp, err = d.roll.RollBatch(asUser(ctx, testutil.User1), &model.RollBatchRequest{
		PoolID: resp.PoolID, Count: 1,
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), rollResp.Wins)
}

func Test_rollDomain_PrizeIndexFromSeedPrefix(t *testing.T) {
	ctx := testutil.MockContext()

	// The first eight bytes pick the prize: a prefix of one selects the
	// second package while the zeroed tail keeps every roll a win.
	seed := ethCommon.HexToHash(
		"0x0000000000000001000000000000000000000000000000000000000000000000")
	d := newTestDomains(client.NewMockPRNG(seed))

	resp := createGlobalPool(t, ctx, d, entity.WinRateScale)
	addHbarPrizes(t, ctx, d, resp.PoolID, []int64{100, 200, 300})
	buyEntries(t, ctx, d, resp.PoolID, 1)

	rollResp, err := d.roll.RollAll(asUser(ctx, testutil.User1), &model.RollAllRequest{
		PoolID: resp.PoolID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), rollResp.Wins)

	pending, err := d.claim.GetPendingPrize(asUser(ctx, testutil.User1), &model.GetPendingPrizeRequest{
		Position: 0,
	})
	require.NoError(t, err)
	require.Equal(t, int64(200), pending.Prize.Prize.Amount)

	// The tail package compacted into the taken slot.
	listResp, err := d.prize.GetPrizes(ctx, &model.GetPrizesRequest{PoolID: resp.PoolID})
	require.NoError(t, err)
	require.Len(t, listResp.Prizes, 2)
	require.Equal(t, int64(100), listResp.Prizes[0].Amount)
	require.Equal(t, int64(300), listResp.Prizes[1].Amount)
}
