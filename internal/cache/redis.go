package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/storefront/internal/models"
)

const (
	// order_status:{order_id} -> hash {view: JSON OrderStatusView, ver: UpdatedAt in µs}
	KeyOrderStatus = "order_status:%s"

	// idem:order:create:{user_id}:{key} -> "pending" | order_id
	KeyIdemOrderCreate = "idem:order:create:%s"

	pendingMarker = "pending"
)

// setStatusScript writes the view unless the cached one is strictly newer, so writers
// that finish out of order cannot roll the cache back.
var setStatusScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'ver')
if cur and tonumber(cur) > tonumber(ARGV[2]) then
	return 0
end
redis.call('HSET', KEYS[1], 'view', ARGV[1], 'ver', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`)

var (
	TTLStatusCache = 5 * time.Minute
	TTLIdempotency = 24 * time.Hour

	// TTLIdempotencyPending bounds how long a checkout that never completed its key keeps
	// later requests with the same key at 409.
	TTLIdempotencyPending = 2 * time.Minute
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

func Ping(ctx context.Context, rdb redis.Cmdable) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

type StatusCache struct {
	rdb redis.Cmdable
}

func NewStatusCache(rdb redis.Cmdable) *StatusCache {
	return &StatusCache{rdb: rdb}
}

func (c *StatusCache) SetStatus(ctx context.Context, view models.OrderStatusView) error {
	b, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	key := fmt.Sprintf(KeyOrderStatus, view.OrderID)
	return setStatusScript.Run(ctx, c.rdb, []string{key}, b, view.UpdatedAt.UnixMicro(), TTLStatusCache.Milliseconds()).Err()
}

// GetStatus returns nil without error on a cache miss.
func (c *StatusCache) GetStatus(ctx context.Context, orderID string) (*models.OrderStatusView, error) {
	b, err := c.rdb.HGet(ctx, fmt.Sprintf(KeyOrderStatus, orderID), "view").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var view models.OrderStatusView
	if err := json.Unmarshal(b, &view); err != nil {
		return nil, fmt.Errorf("unmarshal status: %w", err)
	}
	return &view, nil
}

type Idempotency struct {
	rdb redis.Cmdable
}

func NewIdempotency(rdb redis.Cmdable) *Idempotency {
	return &Idempotency{rdb: rdb}
}

// Reserve claims key with SETNX. When the key already exists it returns the stored order id,
// or "" while the first checkout is still running.
func (i *Idempotency) Reserve(ctx context.Context, key string) (string, bool, error) {
	k := fmt.Sprintf(KeyIdemOrderCreate, key)
	ok, err := i.rdb.SetNX(ctx, k, pendingMarker, TTLIdempotencyPending).Result()
	if err != nil {
		return "", false, err
	}
	if ok {
		return "", true, nil
	}

	v, err := i.rdb.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	if v == pendingMarker {
		return "", false, nil
	}
	return v, false, nil
}

func (i *Idempotency) Complete(ctx context.Context, key, orderID string) error {
	return i.rdb.Set(ctx, fmt.Sprintf(KeyIdemOrderCreate, key), orderID, TTLIdempotency).Err()
}

func (i *Idempotency) Release(ctx context.Context, key string) error {
	return i.rdb.Del(ctx, fmt.Sprintf(KeyIdemOrderCreate, key)).Err()
}
