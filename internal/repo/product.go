package repo

import (
	"context"
	"strings"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Category string
	Search   string
	Sort     string
	Offset   int
	Limit    int
}

const (
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.conn(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var items []models.Product
	if err := r.conn(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DecrementStock takes qty units in a single conditional UPDATE, so concurrent callers
// can never drive stock below zero.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.conn(ctx).Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.conn(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrStockConflict
	}
	return nil
}

func (r *GormRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.conn(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter) (int64, []models.Product, error) {
	q := r.conn(ctx).Model(&models.Product{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	switch f.Sort {
	case SortPriceLow:
		q = q.Order("price ASC")
	case SortPriceHigh:
		q = q.Order("price DESC")
	default:
		q = q.Order("created_at DESC")
	}

	items := make([]models.Product, 0, f.Limit)
	if err := q.Order("id ASC").Offset(f.Offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) Categories(ctx context.Context) ([]string, error) {
	var cats []string
	if err := r.conn(ctx).Model(&models.Product{}).Distinct().Order("category ASC").Pluck("category", &cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.conn(ctx).Create(prod).Error
}

// UpdateProduct applies the given column values and returns the reloaded row.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Product, error) {
	var prod models.Product
	if err := r.WithTx(ctx, func(ctx context.Context) error {
		if err := r.conn(ctx).Where("id = ?", id).First(&prod).Error; err != nil {
			return err
		}
		if len(fields) > 0 {
			if err := r.conn(ctx).Model(&prod).Updates(fields).Error; err != nil {
				return err
			}
		}
		return r.conn(ctx).Where("id = ?", id).First(&prod).Error
	}); err != nil {
		return nil, err
	}
	return &prod, nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.conn(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
