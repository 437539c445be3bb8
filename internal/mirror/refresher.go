package mirror

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	redisutil "github.com/lazy-lotto/backend/pkg/redis"
	"github.com/lazy-lotto/backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// Refresher periodically serialises pool, balance, and serial snapshots into
// redis. Keys expire after three intervals so rows deleted from the database
// eventually disappear from the mirror too.
type Refresher struct {
	poolRepo   repository.PoolRepository
	ledgerRepo repository.LedgerRepository

	client   redisutil.Client
	interval time.Duration
}

func NewRefresher(
	poolRepo repository.PoolRepository,
	ledgerRepo repository.LedgerRepository,
	client redisutil.Client,
	interval time.Duration,
) *Refresher {
	if interval <= 0 {
		interval = time.Second
	}

	return &Refresher{
		poolRepo:   poolRepo,
		ledgerRepo: ledgerRepo,
		client:     client,
		interval:   interval,
	}
}

// Run refreshes the snapshot every interval until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Refresh(ctx); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot refresh the mirror: %v", err)
			}
		}
	}
}

func (r *Refresher) Refresh(ctx context.Context) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error { return r.refreshPools(egCtx) })
	eg.Go(func() error { return r.refreshBalances(egCtx) })
	eg.Go(func() error { return r.refreshSerials(egCtx) })
	return eg.Wait()
}

func (r *Refresher) ttl() time.Duration {
	return 3 * r.interval
}

func (r *Refresher) refreshPools(ctx context.Context) error {
	pools, err := r.poolRepo.ListAll(ctx)
	if err != nil {
		return err
	}

	for i := range pools {
		raw, err := json.Marshal(convertPool(&pools[i]))
		if err != nil {
			return err
		}

		if err := r.client.Set(ctx, poolKey(pools[i].ID), string(raw), r.ttl()); err != nil {
			return err
		}
	}

	return nil
}

func (r *Refresher) refreshBalances(ctx context.Context) error {
	balances, err := r.ledgerRepo.ListBalances(ctx)
	if err != nil {
		return err
	}

	for _, b := range balances {
		key := balanceKey(b.Account, b.Token)
		value := strconv.FormatInt(b.Amount, 10)
		if err := r.client.Set(ctx, key, value, r.ttl()); err != nil {
			return err
		}
	}

	return nil
}

func (r *Refresher) refreshSerials(ctx context.Context) error {
	serials, err := r.ledgerRepo.ListSerials(ctx)
	if err != nil {
		return err
	}

	for _, s := range serials {
		key := serialKey(s.Token, s.Serial)
		if err := r.client.Set(ctx, key, s.Owner, r.ttl()); err != nil {
			return err
		}
	}

	return nil
}

func convertPool(pool *entity.Pool) model.Pool {
	royalties := make([]model.Royalty, 0, len(pool.Royalties))
	for _, r := range pool.Royalties {
		royalties = append(royalties, model.Royalty{Recipient: r.Recipient, Bps: r.Bps})
	}

	return model.Pool{
		PoolID:           pool.ID,
		Name:             pool.Name,
		Symbol:           pool.Symbol,
		Memo:             pool.Memo,
		TicketCID:        pool.TicketCID,
		WinCID:           pool.WinCID,
		WinRateThreshold: pool.WinRateThreshold,
		EntryFee:         pool.EntryFee,
		FeeToken:         pool.FeeToken,
		TicketToken:      pool.TicketToken,
		Royalties:        royalties,
		Paused:           pool.Paused,
		Closed:           pool.Closed,
		IsGlobal:         pool.IsGlobal,
		Owner:            pool.OwnerAddress,
		PrizeManager:     pool.PrizeManager,

		PlatformPercentage:    pool.PlatformPercentage,
		MaxTicketsPerBuy:      pool.MaxTicketsPerBuy,
		MaxTicketsPerUser:     pool.MaxTicketsPerUser,
		OutstandingEntries:    pool.OutstandingEntries,
		OutstandingTicketNFTs: pool.OutstandingTicketNFTs,
		PrizeCount:            pool.PrizeCount,
	}
}
