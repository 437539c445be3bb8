package mirror

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/lazy-lotto/backend/internal/entity"
	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/internal/repository"
	"github.com/lazy-lotto/backend/pkg/errorx"
	"github.com/lazy-lotto/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_redisReader_GetPool(t *testing.T) {
	ctx := context.Background()

	raw, err := json.Marshal(model.Pool{PoolID: 7, Name: "Mirror Pool", EntryFee: 10})
	require.NoError(t, err)

	reader := NewReader(&testutil.MockRedisClient{
		GetFunc: func(ctx context.Context, key string) (string, error) {
			require.Equal(t, "mirror:pool:7", key)
			return string(raw), nil
		},
	})

	pool, err := reader.GetPool(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(7), pool.PoolID)
	require.Equal(t, "Mirror Pool", pool.Name)
	require.Equal(t, int64(10), pool.EntryFee)
}

func Test_redisReader_Misses(t *testing.T) {
	ctx := context.Background()

	// No GetFunc, so every lookup misses with redis.Nil.
	reader := NewReader(&testutil.MockRedisClient{})

	_, err := reader.GetPool(ctx, 1)
	require.True(t, errorx.Is(err, errorx.LottoPoolNotFound))

	balance, err := reader.GetBalance(ctx, testutil.User1, entity.HbarAddress)
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	_, err = reader.GetNFTOwner(ctx, "0xdead", 1)
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_Refresher_Refresh(t *testing.T) {
	ctx := testutil.MockContext()
	poolRepo := repository.NewPoolRepository()
	ledgerRepo := repository.NewLedgerRepository()

	pool := &entity.Pool{Name: "Snapshot Pool", EntryFee: 25, FeeToken: entity.HbarAddress}
	require.NoError(t, poolRepo.Create(ctx, pool))

	testutil.FundAccount(ctx, testutil.User1, entity.HbarAddress, 250)
	require.NoError(t, ledgerRepo.CreateSerial(ctx, &entity.NFTSerial{
		Base:   entity.Base{ID: "mirror-serial"},
		Token:  "0xc0ffee",
		Serial: 3,
		Owner:  testutil.User2,
	}))

	type write struct {
		value string
		ttl   time.Duration
	}

	// Refresh fans the key families out over goroutines.
	var mutex sync.Mutex
	writes := map[string]write{}
	client := &testutil.MockRedisClient{
		SetFunc: func(ctx context.Context, key, value string, ttl time.Duration) error {
			mutex.Lock()
			defer mutex.Unlock()
			writes[key] = write{value: value, ttl: ttl}
			return nil
		},
	}

	interval := 5 * time.Second
	refresher := NewRefresher(poolRepo, ledgerRepo, client, interval)
	require.NoError(t, refresher.Refresh(ctx))

	poolWrite, ok := writes[poolKey(pool.ID)]
	require.True(t, ok)
	require.Equal(t, 3*interval, poolWrite.ttl)

	var snapshot model.Pool
	require.NoError(t, json.Unmarshal([]byte(poolWrite.value), &snapshot))
	require.Equal(t, pool.ID, snapshot.PoolID)
	require.Equal(t, "Snapshot Pool", snapshot.Name)
	require.Equal(t, int64(25), snapshot.EntryFee)

	balanceWrite, ok := writes[balanceKey(testutil.User1, entity.HbarAddress)]
	require.True(t, ok)
	require.Equal(t, "250", balanceWrite.value)
	require.Equal(t, 3*interval, balanceWrite.ttl)

	serialWrite, ok := writes[serialKey("0xc0ffee", 3)]
	require.True(t, ok)
	require.Equal(t, testutil.User2, serialWrite.value)
	require.Equal(t, 3*interval, serialWrite.ttl)
}
