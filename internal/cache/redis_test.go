package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestStatusCache_SetGetExpire(t *testing.T) {
	t.Parallel()

	mr, rdb := newRedis(t)
	c := NewStatusCache(rdb)
	ctx := context.Background()
	require.NoError(t, Ping(ctx, rdb))

	miss, err := c.GetStatus(ctx, "ORD404")
	require.NoError(t, err)
	assert.Nil(t, miss)

	view := models.OrderStatusView{
		OrderID:       "ORD1",
		UserID:        uuid.New(),
		OrderStatus:   models.OrderStatusShipped,
		PaymentStatus: models.PaymentStatusCompleted,
		UpdatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, c.SetStatus(ctx, view))

	got, err := c.GetStatus(ctx, "ORD1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, view.UserID, got.UserID)
	assert.Equal(t, models.OrderStatusShipped, got.OrderStatus)
	assert.True(t, view.UpdatedAt.Equal(got.UpdatedAt))

	assert.Equal(t, TTLStatusCache, mr.TTL("order_status:ORD1"))
	mr.FastForward(TTLStatusCache + time.Second)

	got, err = c.GetStatus(ctx, "ORD1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestIdempotency_PendingMarkerExpiresEarly(t *testing.T) {
	t.Parallel()

	mr, rdb := newRedis(t)
	idem := NewIdempotency(rdb)
	ctx := context.Background()

	_, reserved, err := idem.Reserve(ctx, "u1:lost")
	require.NoError(t, err)
	require.True(t, reserved)
	assert.Equal(t, TTLIdempotencyPending, mr.TTL("idem:order:create:u1:lost"))

	mr.FastForward(TTLIdempotencyPending + time.Second)
	_, reserved, err = idem.Reserve(ctx, "u1:lost")
	require.NoError(t, err)
	assert.True(t, reserved, "a key never completed frees up after the pending window")

	require.NoError(t, idem.Complete(ctx, "u1:lost", "ORD9"))
	assert.Equal(t, TTLIdempotency, mr.TTL("idem:order:create:u1:lost"))
}

func TestStatusCache_KeepsNewestView(t *testing.T) {
	t.Parallel()

	_, rdb := newRedis(t)
	c := NewStatusCache(rdb)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	older := models.OrderStatusView{OrderID: "ORD7", OrderStatus: models.OrderStatusProcessing, UpdatedAt: base}
	newer := models.OrderStatusView{OrderID: "ORD7", OrderStatus: models.OrderStatusShipped, UpdatedAt: base.Add(time.Millisecond)}

	require.NoError(t, c.SetStatus(ctx, newer))
	require.NoError(t, c.SetStatus(ctx, older))

	got, err := c.GetStatus(ctx, "ORD7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.OrderStatusShipped, got.OrderStatus, "late write of an older view is dropped")

	newest := newer
	newest.OrderStatus = models.OrderStatusDelivered
	newest.UpdatedAt = newer.UpdatedAt.Add(time.Microsecond)
	require.NoError(t, c.SetStatus(ctx, newest))

	got, err = c.GetStatus(ctx, "ORD7")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, got.OrderStatus)
}

func TestIdempotency_Lifecycle(t *testing.T) {
	t.Parallel()

	_, rdb := newRedis(t)
	idem := NewIdempotency(rdb)
	ctx := context.Background()

	orderID, reserved, err := idem.Reserve(ctx, "u1:k1")
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, orderID)

	orderID, reserved, err = idem.Reserve(ctx, "u1:k1")
	require.NoError(t, err)
	assert.False(t, reserved, "second reservation while in flight")
	assert.Empty(t, orderID)

	require.NoError(t, idem.Complete(ctx, "u1:k1", "ORD42"))
	orderID, reserved, err = idem.Reserve(ctx, "u1:k1")
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "ORD42", orderID)

	_, reserved, err = idem.Reserve(ctx, "u1:k2")
	require.NoError(t, err)
	require.True(t, reserved)
	require.NoError(t, idem.Release(ctx, "u1:k2"))
	_, reserved, err = idem.Reserve(ctx, "u1:k2")
	require.NoError(t, err)
	assert.True(t, reserved, "released key can be reserved again")
}
