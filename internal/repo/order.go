package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func itemsInOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// CreateOrder inserts the order with its items. It runs in a savepoint so that a duplicate
// order_id (gorm.ErrDuplicatedKey) leaves an enclosing transaction usable for a retry.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	for i := range order.Items {
		order.Items[i].Position = i
	}
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
}

func (r *GormRepo) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.conn(ctx).Preload("Items", itemsInOrder).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders := []models.Order{}
	if err := r.conn(ctx).Preload("Items", itemsInOrder).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	q := r.conn(ctx).Preload("Items", itemsInOrder).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	orders := []models.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus writes only the fields present in patch.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, orderID string, patch models.StatusPatch) (*models.Order, error) {
	fields := map[string]any{}
	if patch.OrderStatus != nil {
		fields["order_status"] = *patch.OrderStatus
	}
	if patch.PaymentStatus != nil {
		fields["payment_status"] = *patch.PaymentStatus
	}

	var out *models.Order
	err := r.WithTx(ctx, func(ctx context.Context) error {
		if len(fields) > 0 {
			res := r.conn(ctx).Model(&models.Order{}).Where("order_id = ?", orderID).Updates(fields)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		o, err := r.GetOrder(ctx, orderID)
		if err != nil {
			return err
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
