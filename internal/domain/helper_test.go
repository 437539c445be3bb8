package domain

import (
	"context"
	"testing"
	"time"

	"github.com/lazy-lotto/backend/internal/client"
	internalCommon "github.com/lazy-lotto/backend/internal/common"
	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/testutil"
	"github.com/lazy-lotto/backend/pkg/xcontext"

	"github.com/stretchr/testify/require"
)

// testDomains wires every domain against shared repositories so a test can
// drive a full flow end to end.
type testDomains struct {
	pool    PoolDomain
	entry   EntryDomain
	roll    RollDomain
	prize   PrizeDomain
	claim   ClaimDomain
	bonus   BonusDomain
	manager ManagerDomain
	admin   AdminDomain
	ledger  LedgerDomain

	poolRepo     repository.PoolRepository
	entryRepo    repository.EntryRepository
	prizeRepo    repository.PrizeRepository
	pendingRepo  repository.PendingPrizeRepository
	ledgerRepo   repository.LedgerRepository
	proceedsRepo repository.ProceedsRepository
}

func newTestDomains(prng client.PRNG) *testDomains {
	poolRepo := repository.NewPoolRepository()
	entryRepo := repository.NewEntryRepository()
	prizeRepo := repository.NewPrizeRepository()
	pendingRepo := repository.NewPendingPrizeRepository()
	ledgerRepo := repository.NewLedgerRepository()
	adminRepo := repository.NewAdminRepository()
	stateRepo := repository.NewContractStateRepository()
	bonusRepo := repository.NewBonusRepository()
	proceedsRepo := repository.NewProceedsRepository()

	adminVerifier := internalCommon.NewAdminVerifier(adminRepo)
	prizeVerifier := internalCommon.NewPrizeManagerVerifier(adminRepo, poolRepo, stateRepo)
	locker := internalCommon.NewPoolLocker()
	delegates := client.NewDelegateRegistry(ledgerRepo)
	engine := NewBonusEngine(bonusRepo, stateRepo, ledgerRepo, delegates)
	settler := NewSettler(poolRepo, entryRepo, prizeRepo, pendingRepo, engine, prng, locker)

	return &testDomains{
		pool:    NewPoolDomain(poolRepo, adminRepo, stateRepo, ledgerRepo, proceedsRepo, adminVerifier),
		entry:   NewEntryDomain(settler, ledgerRepo, proceedsRepo, stateRepo),
		roll:    NewRollDomain(settler, ledgerRepo, stateRepo, adminVerifier),
		prize:   NewPrizeDomain(poolRepo, prizeRepo, ledgerRepo, prizeVerifier, locker),
		claim:   NewClaimDomain(poolRepo, pendingRepo, ledgerRepo, stateRepo, delegates, internalCommon.NewQueueLocker()),
		bonus:   NewBonusDomain(engine, poolRepo, bonusRepo, stateRepo, adminVerifier),
		manager: NewManagerDomain(poolRepo, adminRepo, stateRepo, proceedsRepo, ledgerRepo, adminVerifier),
		admin:   NewAdminDomain(adminRepo, stateRepo, ledgerRepo, adminVerifier),
		ledger:  NewLedgerDomain(ledgerRepo),

		poolRepo:     poolRepo,
		entryRepo:    entryRepo,
		prizeRepo:    prizeRepo,
		pendingRepo:  pendingRepo,
		ledgerRepo:   ledgerRepo,
		proceedsRepo: proceedsRepo,
	}
}

func asUser(ctx context.Context, user string) context.Context {
	return xcontext.WithRequestUserID(ctx, user)
}

func basePoolRequest(threshold int64, feeToken string) *model.CreatePoolRequest {
	return &model.CreatePoolRequest{
		Name:             "Test Pool",
		Symbol:           "TP",
		TicketCID:        "bafyticket",
		WinCID:           "bafywin",
		WinRateThreshold: threshold,
		EntryFee:         10,
		FeeToken:         feeToken,
		Duration:         time.Hour,
		MinEntries:       1,
		MaxEntries:       1000,
	}
}

// createGlobalPool has Admin1 create a fee-exempt pool charging its entry
// fee in hbar.
func createGlobalPool(t *testing.T, ctx context.Context, d *testDomains, threshold int64) *model.CreatePoolResponse {
	resp, err := d.pool.CreatePool(asUser(ctx, testutil.Admin1), basePoolRequest(threshold, entity.HbarAddress))
	require.NoError(t, err)
	return resp
}

// addHbarPrizes deposits fungible hbar prizes into the pool as Admin1.
func addHbarPrizes(t *testing.T, ctx context.Context, d *testDomains, poolID int64, amounts []int64) {
	var total int64
	for _, amount := range amounts {
		total += amount
	}

	testutil.FundAccount(ctx, testutil.Admin1, entity.HbarAddress, total)
	_, err := d.prize.AddMultipleFungiblePrizes(asUser(ctx, testutil.Admin1), &model.AddMultipleFungiblePrizesRequest{
		PoolID:        poolID,
		Token:         entity.HbarAddress,
		Amounts:       amounts,
		PayableAmount: total,
	})
	require.NoError(t, err)
}

// buyEntries funds User1 and buys count entries of an hbar-fee pool.
func buyEntries(t *testing.T, ctx context.Context, d *testDomains, poolID, count int64) {
	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 10*count)
	_, err := d.entry.BuyEntry(asUser(ctx, testutil.User1), &model.BuyEntryRequest{
		PoolID:        poolID,
		Count:         count,
		PayableAmount: 10 * count,
	})
	require.NoError(t, err)
}
