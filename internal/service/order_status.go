package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

// UpdateStatus applies the supplied status fields only. Any value may follow any other as
// long as it belongs to its enumeration. Callers must have checked admin capability.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, req transport.UpdateStatusRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	patch, err := statusPatch(req)
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, orderID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, orderID, "Order %s not found", orderID)
		}
		l.Error("update_status_failed", "error", err)
		return nil, fmt.Errorf("update order %s: %w", orderID, err)
	}

	s.populate(ctx, order)
	s.afterWrite(ctx, order, events.TypeOrderStatusUpdated)

	l.Info("update_status_success", "order_status", order.OrderStatus, "payment_status", order.PaymentStatus)
	return order, nil
}

func statusPatch(req transport.UpdateStatusRequest) (models.StatusPatch, error) {
	var patch models.StatusPatch
	if req.OrderStatus != nil {
		st := models.OrderStatus(*req.OrderStatus)
		if !st.Valid() {
			return patch, newError(ErrInvalidStatus, *req.OrderStatus, "Invalid order status")
		}
		patch.OrderStatus = &st
	}
	if req.PaymentStatus != nil {
		st := models.PaymentStatus(*req.PaymentStatus)
		if !st.Valid() {
			return patch, newError(ErrInvalidStatus, *req.PaymentStatus, "Invalid payment status")
		}
		patch.PaymentStatus = &st
	}
	if patch.Empty() {
		return patch, invalidInput("orderStatus or paymentStatus is required")
	}
	return patch, nil
}

// GetOrderStatus serves the status projection from cache, falling back to the order store.
func (s *OrderService) GetOrderStatus(ctx context.Context, orderID string, requester Requester) (*models.OrderStatusView, error) {
	l := logging.FromContext(ctx).With("svc", "order.get_status", "order_id", orderID)

	if s.StatusCache != nil {
		view, err := s.StatusCache.GetStatus(ctx, orderID)
		switch {
		case err != nil:
			l.Warn("status_cache_get_failed", "error", err)
		case view != nil:
			if !requester.CanAccess(view.UserID) {
				return nil, newError(ErrForbidden, orderID, "Access denied")
			}
			return view, nil
		}
	}

	order, err := s.GetOrder(ctx, orderID, requester)
	if err != nil {
		return nil, err
	}
	view := order.StatusView()
	if s.StatusCache != nil {
		if err := s.StatusCache.SetStatus(ctx, view); err != nil {
			l.Warn("status_cache_set_failed", "error", err)
		}
	}
	return &view, nil
}
