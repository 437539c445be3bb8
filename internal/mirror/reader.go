package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/lazy-lotto/backend/internal/model"
	"github.com/lazy-lotto/backend/pkg/errorx"
	redisutil "github.com/lazy-lotto/backend/pkg/redis"
	"github.com/redis/go-redis/v9"
)

// Reader answers queries from the redis snapshot only, never from the
// database. The snapshot trails the authoritative state by the refresh
// interval.
type Reader interface {
	GetPool(ctx context.Context, poolID int64) (*model.Pool, error)
	GetBalance(ctx context.Context, account, token string) (int64, error)
	GetNFTOwner(ctx context.Context, token string, serial int64) (string, error)
}

type redisReader struct {
	client redisutil.Client
}

func NewReader(client redisutil.Client) *redisReader {
	return &redisReader{client: client}
}

func poolKey(poolID int64) string {
	return fmt.Sprintf("mirror:pool:%d", poolID)
}

func balanceKey(account, token string) string {
	return fmt.Sprintf("mirror:balance:%s:%s", account, token)
}

func serialKey(token string, serial int64) string {
	return fmt.Sprintf("mirror:serial:%s:%d", token, serial)
}

func (r *redisReader) GetPool(ctx context.Context, poolID int64) (*model.Pool, error) {
	raw, err := r.client.Get(ctx, poolKey(poolID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errorx.New(errorx.LottoPoolNotFound, "Pool is not visible yet")
		}

		return nil, err
	}

	var pool model.Pool
	if err := json.Unmarshal([]byte(raw), &pool); err != nil {
		return nil, err
	}

	return &pool, nil
}

func (r *redisReader) GetBalance(ctx context.Context, account, token string) (int64, error) {
	raw, err := r.client.Get(ctx, balanceKey(account, token))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}

		return 0, err
	}

	return strconv.ParseInt(raw, 10, 64)
}

func (r *redisReader) GetNFTOwner(ctx context.Context, token string, serial int64) (string, error) {
	owner, err := r.client.Get(ctx, serialKey(token, serial))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errorx.New(errorx.NotFound, "Serial is not visible yet")
		}

		return "", err
	}

	return owner, nil
}
