package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// GetOrder returns the order if requester owns it or is an admin.
func (s *OrderService) GetOrder(ctx context.Context, orderID string, requester Requester) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, orderID, "Order %s not found", orderID)
		}
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	if !requester.CanAccess(order.UserID) {
		return nil, newError(ErrForbidden, orderID, "Access denied")
	}
	s.populate(ctx, order)
	attachUsers(ctx, s.Repo, order)
	return order, nil
}

func (s *OrderService) ListOrdersForUser(ctx context.Context, userID uuid.UUID, requester Requester) ([]models.Order, error) {
	if !requester.CanAccess(userID) {
		return nil, newError(ErrForbidden, userID.String(), "Access denied")
	}
	orders, err := s.Repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for %s: %w", userID, err)
	}
	s.populate(ctx, ptrs(orders)...)
	return orders, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context, requester Requester) ([]models.Order, error) {
	if !requester.IsAdmin() {
		return nil, newError(ErrForbidden, requester.ID.String(), "Access denied")
	}
	orders, err := s.Repo.ListOrders(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	s.populate(ctx, ptrs(orders)...)
	attachUsers(ctx, s.Repo, ptrs(orders)...)
	return orders, nil
}

// getOwned serves an idempotent replay; the order must belong to the same user.
func (s *OrderService) getOwned(ctx context.Context, orderID string, userID uuid.UUID) (*models.Order, error) {
	return s.GetOrder(ctx, orderID, Requester{ID: userID})
}

func ptrs(orders []models.Order) []*models.Order {
	out := make([]*models.Order, len(orders))
	for i := range orders {
		out[i] = &orders[i]
	}
	return out
}

// populate attaches name and images of each ordered product for display and returns the
// products it loaded. Products deleted since the order was placed are left unresolved.
func (s *OrderService) populate(ctx context.Context, orders ...*models.Order) []models.Product {
	return populateOrders(ctx, s.Repo, orders...)
}

type productLoader interface {
	ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

func populateOrders(ctx context.Context, loader productLoader, orders ...*models.Order) []models.Product {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	if len(ids) == 0 {
		return nil
	}

	products, err := loader.ProductsByIDs(ctx, ids)
	if err != nil {
		logging.FromContext(ctx).Warn("populate_products_failed", "error", err)
		return nil
	}
	byID := make(map[uuid.UUID]models.ProductSummary, len(products))
	for _, p := range products {
		byID[p.ID] = p.Summary()
	}
	for _, o := range orders {
		for i := range o.Items {
			if sum, ok := byID[o.Items[i].ProductID]; ok {
				o.Items[i].Product = &sum
			}
		}
	}
	return products
}

// attachUsers sets the buyer's name and email on each order. Unknown users stay nil.
func attachUsers(ctx context.Context, lookup UserLookup, orders ...*models.Order) {
	seen := map[uuid.UUID]struct{}{}
	var ids []uuid.UUID
	for _, o := range orders {
		if _, ok := seen[o.UserID]; !ok {
			seen[o.UserID] = struct{}{}
			ids = append(ids, o.UserID)
		}
	}
	if len(ids) == 0 {
		return
	}

	users, err := lookup.UsersByIDs(ctx, ids)
	if err != nil {
		logging.FromContext(ctx).Warn("populate_users_failed", "error", err)
		return
	}
	byID := make(map[uuid.UUID]models.UserSummary, len(users))
	for _, u := range users {
		byID[u.ID] = u.Summary()
	}
	for _, o := range orders {
		if sum, ok := byID[o.UserID]; ok {
			o.User = &sum
		}
	}
}

// afterWrite refreshes the status cache and announces the change. Both are best effort.
func (s *OrderService) afterWrite(ctx context.Context, order *models.Order, eventType string) {
	l := logging.FromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	if s.StatusCache != nil {
		if err := s.StatusCache.SetStatus(ctx, order.StatusView()); err != nil {
			l.Warn("status_cache_set_failed", "order_id", order.OrderID, "error", err)
		}
	}
	if s.Events != nil {
		if err := s.Events.Publish(ctx, topicOrders, order.OrderID, eventType, orderPayload(order)); err != nil {
			l.Error("publish_failed", "event", eventType, "order_id", order.OrderID, "error", err)
		}
	}
}

func (s *OrderService) reindex(ctx context.Context, products []models.Product) {
	if s.Index == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, p := range products {
		if err := s.Index.IndexProduct(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("reindex_product_failed", "product_id", p.ID, "error", err)
		}
	}
}
