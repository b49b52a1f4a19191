package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	maxOrderIDAttempts   = 5
	defaultPaymentMethod = "Card"
)

type OrderService struct {
	Repo OrderRepo

	// Optional collaborators; nil disables the integration.
	Events      EventPublisher
	StatusCache StatusCache
	Idempotency IdempotencyStore
	Index       ProductIndex

	// NewOrderID defaults to NewOrderID.
	NewOrderID func() string
}

// PlaceOrder reserves stock for every line and records the order as one unit: either all
// decrements and the order row commit together, or nothing is left behind.
func (s *OrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	req = normalizeOrderRequest(req)
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	lines, err := mergeLines(req.Products)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" && s.Idempotency != nil {
		key := userID.String() + ":" + req.IdempotencyKey
		orderID, reserved, err := s.Idempotency.Reserve(ctx, key)
		switch {
		case err != nil:
			l.Warn("idempotency_reserve_failed", "error", err)
		case !reserved && orderID == "":
			return nil, newError(ErrConflict, req.IdempotencyKey, "a checkout with this idempotency key is already in progress")
		case !reserved:
			l.Info("idempotent_replay", "order_id", orderID)
			return s.getOwned(ctx, orderID, userID)
		default:
			order, err := s.placeOrder(ctx, userID, lines, req)
			detached := context.WithoutCancel(ctx)
			if err != nil {
				if rErr := s.Idempotency.Release(detached, key); rErr != nil {
					l.Warn("idempotency_release_failed", "error", rErr)
				}
				return nil, err
			}
			if cErr := s.Idempotency.Complete(detached, key, order.OrderID); cErr != nil {
				l.Warn("idempotency_complete_failed", "order_id", order.OrderID, "error", cErr)
			}
			return order, nil
		}
	}

	return s.placeOrder(ctx, userID, lines, req)
}

func (s *OrderService) placeOrder(ctx context.Context, userID uuid.UUID, lines []transport.OrderLine, req transport.CreateOrderRequest) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.place_order", "user_id", userID)

	var order *models.Order
	err := s.Repo.WithTx(ctx, func(ctx context.Context) error {
		o, err := s.reserveAndCreate(ctx, userID, lines, req)
		if err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		var se *Error
		if errors.As(err, &se) {
			l.Warn("place_order_rejected", "reason", se.Msg, "id", se.ID)
			return nil, err
		}
		l.Error("place_order_failed", "error", err)
		return nil, err
	}

	products := s.populate(ctx, order)
	s.afterWrite(ctx, order, events.TypeOrderCreated)
	s.reindex(ctx, products)

	l.Info("place_order_success", "order_id", order.OrderID, "total", order.TotalAmount.String())
	return order, nil
}

// reserveAndCreate decrements stock line by line in product id order so that concurrent
// multi-item orders lock rows in the same sequence. Lines already decremented are restored
// before any error is returned.
func (s *OrderService) reserveAndCreate(ctx context.Context, userID uuid.UUID, lines []transport.OrderLine, req transport.CreateOrderRequest) (*models.Order, error) {
	byLockOrder := slices.Clone(lines)
	slices.SortFunc(byLockOrder, func(a, b transport.OrderLine) int {
		return strings.Compare(a.ProductID.String(), b.ProductID.String())
	})

	prices := make(map[uuid.UUID]decimal.Decimal, len(lines))
	reserved := make([]transport.OrderLine, 0, len(lines))

	for _, line := range byLockOrder {
		p, err := s.Repo.GetProduct(ctx, line.ProductID)
		if err != nil {
			s.release(ctx, reserved)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newError(ErrNotFound, line.ProductID.String(), "Product %s not found", line.ProductID)
			}
			return nil, fmt.Errorf("get product %s: %w", line.ProductID, err)
		}

		if err := s.Repo.DecrementStock(ctx, p.ID, line.Quantity); err != nil {
			s.release(ctx, reserved)
			switch {
			case errors.Is(err, repo.ErrStockConflict):
				return nil, newError(ErrInsufficientStock, p.ID.String(), "Insufficient stock for %s", p.Name)
			case errors.Is(err, gorm.ErrRecordNotFound):
				return nil, newError(ErrNotFound, p.ID.String(), "Product %s not found", p.ID)
			default:
				return nil, fmt.Errorf("decrement stock %s: %w", p.ID, err)
			}
		}
		reserved = append(reserved, line)
		prices[p.ID] = p.Price
	}

	order := &models.Order{
		UserID:          userID,
		Items:           make([]models.OrderItem, 0, len(lines)),
		TotalAmount:     decimal.Zero,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		OrderStatus:     models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusCompleted,
	}
	for _, line := range lines {
		item := models.OrderItem{ProductID: line.ProductID, Quantity: line.Quantity, Price: prices[line.ProductID]}
		order.Items = append(order.Items, item)
		order.TotalAmount = order.TotalAmount.Add(item.LineTotal())
	}

	if err := s.createWithFreshID(ctx, order); err != nil {
		s.release(ctx, reserved)
		return nil, err
	}
	return order, nil
}

// createWithFreshID retries on order id collisions with a newly generated id.
func (s *OrderService) createWithFreshID(ctx context.Context, order *models.Order) error {
	newID := s.NewOrderID
	if newID == nil {
		newID = NewOrderID
	}

	for attempt := 1; attempt <= maxOrderIDAttempts; attempt++ {
		order.OrderID = newID()
		err := s.Repo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}
		if !repo.IsDuplicate(err) {
			return fmt.Errorf("create order: %w", err)
		}
		logging.FromContext(ctx).Warn("order_id_collision", "order_id", order.OrderID, "attempt", attempt)
	}
	return newError(ErrConflict, order.OrderID, "could not allocate a unique order id")
}

// release restores stock for reserved lines. It runs detached from cancellation so a
// disconnecting client cannot interrupt the compensation halfway.
func (s *OrderService) release(ctx context.Context, reserved []transport.OrderLine) {
	ctx = context.WithoutCancel(ctx)
	for _, line := range reserved {
		if err := s.Repo.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			logging.FromContext(ctx).Error("stock_release_failed", "product_id", line.ProductID, "quantity", line.Quantity, "error", err)
		}
	}
}

func normalizeOrderRequest(req transport.CreateOrderRequest) transport.CreateOrderRequest {
	a := &req.ShippingAddress
	a.Name = strings.TrimSpace(a.Name)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.Pincode = strings.TrimSpace(a.Pincode)

	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if req.PaymentMethod == "" {
		req.PaymentMethod = defaultPaymentMethod
	}
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	return req
}

// mergeLines folds repeated products into one line, keeping first-seen order. Quantities
// must already be positive; a merged quantity that would overflow int is rejected.
func mergeLines(in []transport.OrderLine) ([]transport.OrderLine, error) {
	idx := make(map[uuid.UUID]int, len(in))
	out := make([]transport.OrderLine, 0, len(in))
	for _, line := range in {
		if line.Quantity < 1 {
			return nil, newError(ErrInvalidInput, line.ProductID.String(), "quantity must be at least 1")
		}
		if i, ok := idx[line.ProductID]; ok {
			if out[i].Quantity > math.MaxInt-line.Quantity {
				return nil, newError(ErrInvalidInput, line.ProductID.String(), "quantity for %s is too large", line.ProductID)
			}
			out[i].Quantity += line.Quantity
			continue
		}
		idx[line.ProductID] = len(out)
		out = append(out, line)
	}
	return out, nil
}
