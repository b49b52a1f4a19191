package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/shopspring/decimal"
)

func (r *GormRepo) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := r.conn(ctx).Model(&models.Product{}).Count(&n).Error
	return n, err
}

func (r *GormRepo) CountOrders(ctx context.Context, status models.OrderStatus) (int64, error) {
	q := r.conn(ctx).Model(&models.Order{})
	if status != "" {
		q = q.Where("order_status = ?", status)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// Revenue sums total_amount over orders whose payment is in the given state.
func (r *GormRepo) Revenue(ctx context.Context, payment models.PaymentStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.conn(ctx).Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("payment_status = ?", payment).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
