package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testdb"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return &repo.GormRepo{DB: testdb.Open(t)}
}

func seedProduct(t *testing.T, r *repo.GormRepo, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    "general",
		Stock:       stock,
		Images:      models.ImageList{"https://img.example/" + name + ".png"},
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func stockOf(t *testing.T, r *repo.GormRepo, id uuid.UUID) int {
	t.Helper()
	p, err := r.GetProduct(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func countOrders(t *testing.T, r *repo.GormRepo) int64 {
	t.Helper()
	n, err := r.CountOrders(context.Background(), "")
	require.NoError(t, err)
	return n
}

func orderRequest(lines ...transport.OrderLine) transport.CreateOrderRequest {
	return transport.CreateOrderRequest{
		Products: lines,
		ShippingAddress: models.ShippingAddress{
			Name:    "Asha Rao",
			Phone:   "+91 98765 43210",
			Address: "12 Lake Road",
			City:    "Pune",
			Pincode: "411001",
		},
		PaymentMethod: "Card",
	}
}

func line(id uuid.UUID, qty int) transport.OrderLine {
	return transport.OrderLine{ProductID: id, Quantity: qty}
}

type published struct {
	Topic, Key, Type string
	Payload          any
}

type fakeEvents struct {
	mu   sync.Mutex
	sent []published
	err  error
}

func (f *fakeEvents) Publish(_ context.Context, topic, key, eventType string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, published{Topic: topic, Key: key, Type: eventType, Payload: payload})
	return f.err
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.Type)
	}
	return out
}

type fakeStatusCache struct {
	mu    sync.Mutex
	views map[string]models.OrderStatusView
	gets  int
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{views: map[string]models.OrderStatusView{}}
}

func (f *fakeStatusCache) SetStatus(_ context.Context, v models.OrderStatusView) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.views[v.OrderID]; ok && cur.UpdatedAt.After(v.UpdatedAt) {
		return nil
	}
	f.views[v.OrderID] = v
	return nil
}

func (f *fakeStatusCache) GetStatus(_ context.Context, orderID string) (*models.OrderStatusView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.views[orderID]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]string{}}
}

func (f *fakeIdempotency) Reserve(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.keys[key]; ok {
		return v, false, nil
	}
	f.keys[key] = ""
	return "", true, nil
}

func (f *fakeIdempotency) Complete(_ context.Context, key, orderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[key] = orderID
	return nil
}

func (f *fakeIdempotency) Release(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[uuid.UUID]models.Product
	deleted []uuid.UUID
	hits    []models.Product
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uuid.UUID]models.Product{}}
}

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, query string, from, size int) (int64, []models.Product, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	if query == "" {
		return 0, nil, fmt.Errorf("empty query")
	}
	end := min(from+size, len(f.hits))
	if from >= end {
		return int64(len(f.hits)), nil, nil
	}
	return int64(len(f.hits)), f.hits[from:end], nil
}
